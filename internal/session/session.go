// Package session runs the bot: it owns the gateway connection, feeds voice
// updates to the presence tracker, announces arrivals and departures and
// dispatches chat commands.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"fs-bot/internal/command"
	"fs-bot/internal/platform"
	"fs-bot/internal/presence"
	"fs-bot/pkg/retrylimit"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, c *command.Context, name string, args []string) error
}

type Announcer interface {
	AnnounceJoin(ctx context.Context, serverID, userID string) error
	AnnounceLeave(ctx context.Context, serverID, userID string) error
}

type Roster interface {
	DisplayName(ctx context.Context, serverID, userID string) string
	MarkVoice(ctx context.Context, userID string) error
	MarkOnline(ctx context.Context, userID, name string) error
}

type Config struct {
	ServerID       string
	VoiceChannelID string
	BotID          string
	MasterID       string
	Prefix         string
	SourceURL      string

	Retry   retrylimit.RetryConfig
	Limiter *retrylimit.AdaptiveLimiter // optional
}

// Session is constructed once and run once. Everything it holds is owned by
// the goroutine calling Run.
type Session struct {
	cfg       Config
	conn      platform.Platform
	commands  Dispatcher
	announcer Announcer
	roster    Roster
	tracker   *presence.Tracker

	base   zerolog.Logger
	log    zerolog.Logger
	state  atomic.Int32
	connID string

	// stayOut is set while the bot was told to leave voice by a command.
	stayOut atomic.Bool
}

func New(cfg Config, conn platform.Platform, commands Dispatcher, announcer Announcer, roster Roster, logger zerolog.Logger) *Session {
	base := logger.With().Str("component", "session").Logger()
	return &Session{
		cfg:       cfg,
		conn:      conn,
		commands:  commands,
		announcer: announcer,
		roster:    roster,
		tracker:   presence.NewTracker(cfg.VoiceChannelID, cfg.BotID),
		base:      base,
		log:       base,
	}
}

// State returns the current lifecycle state. Safe to call from any goroutine.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Presence returns the tracked users. Only call it while Run is not running.
func (s *Session) Presence() []string {
	return s.tracker.Users()
}

// Run connects and processes events until the master quits, ctx ends or the
// gateway is closed for good. It returns nil for the first two and the
// transport error for the last. A failed initial connect is returned as is.
func (s *Session) Run(ctx context.Context) error {
	s.setState(Connecting)
	if err := s.connect(ctx, false); err != nil {
		s.setState(Terminating)
		s.closeConn()
		s.setState(Disconnected)
		return fmt.Errorf("connect: %w", err)
	}
	s.setState(Connected)

	err := s.loop(ctx)

	s.setState(Terminating)
	s.teardown()
	s.setState(Disconnected)
	return err
}

func (s *Session) loop(ctx context.Context) error {
	for {
		ev, err := s.conn.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.log.Info().Msg("Shutting down")
				return nil
			}
			if err := s.handleReceiveError(ctx, err); err != nil {
				return err
			}
			continue
		}

		if quit := s.route(ctx, ev); quit {
			return nil
		}
	}
}

// handleReceiveError returns a non-nil error only when the loop must end.
func (s *Session) handleReceiveError(ctx context.Context, err error) error {
	var te *platform.TransportError

	switch {
	case platform.IsFatal(err):
		errors.As(err, &te)
		s.log.Error().Err(err).Int("code", te.Code).Str("reason", te.Reason).Msg("Gateway closed, quitting")
		return err

	case platform.IsRecoverable(err):
		s.log.Warn().Err(err).Msg("Connection lost, reconnecting")
		if err := s.reconnect(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Error().Err(err).Msg("Reconnect failed")
			return err
		}
		s.setState(Connected)
		s.log.Info().Msg("Reconnected successfully")
		return nil

	default:
		s.log.Warn().Err(err).Msg("Receive error, rejoining voice")
		s.joinVoice()
		return nil
	}
}

// connect opens the gateway under a fresh connection id and joins the
// observed voice channel. After a reconnect the old voice connection is
// dropped first, since it does not survive the gateway going away.
func (s *Session) connect(ctx context.Context, resumed bool) error {
	s.connID = uuid.NewString()
	s.log = s.base.With().Str("conn", s.connID).Logger()

	if err := s.conn.Connect(ctx); err != nil {
		return err
	}
	s.log.Info().Str("server", s.cfg.ServerID).Msg("Ready")
	if resumed {
		if err := s.conn.LeaveVoice(s.cfg.ServerID); err != nil {
			s.log.Warn().Err(err).Msg("Failed to drop stale voice connection")
		}
	}
	s.joinVoice()
	return nil
}

func (s *Session) reconnect(ctx context.Context) error {
	s.setState(Reconnecting)
	s.tracker.Reset()

	retry := s.cfg.Retry
	retry.Classify = func(err error) error {
		if platform.IsFatal(err) {
			return retrylimit.Fatal(err)
		}
		return err
	}
	retry.OnRetry = func(attempt int, err error, delay time.Duration) {
		s.log.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("Reconnect attempt failed")
	}

	return retrylimit.WithRetryConfig(ctx, func() error {
		return s.connect(ctx, true)
	}, s.cfg.Limiter, retry)
}

func (s *Session) joinVoice() {
	if s.stayOut.Load() {
		s.log.Debug().Msg("Staying out of voice")
		return
	}
	if err := s.conn.JoinVoice(s.cfg.ServerID, s.cfg.VoiceChannelID); err != nil {
		s.log.Warn().Err(err).Str("channel", s.cfg.VoiceChannelID).Msg("Failed to join voice channel")
	}
}

func (s *Session) teardown() {
	s.log.Info().Msg("Quitting the bot")
	if err := s.conn.LeaveVoice(s.cfg.ServerID); err != nil {
		s.log.Warn().Err(err).Msg("Failed to leave voice")
	}
	s.closeConn()
}

func (s *Session) closeConn() {
	if err := s.conn.Close(); err != nil {
		s.log.Error().Err(err).Msg("Failed to close connection")
	}
}

func (s *Session) setState(st State) {
	old := State(s.state.Swap(int32(st)))
	if old != st {
		s.log.Debug().Stringer("from", old).Stringer("to", st).Msg("State change")
	}
}
