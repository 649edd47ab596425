// Package announce posts arrival and departure notices to the status channel
// and plays the matching sounds.
package announce

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"fs-bot/internal/audio"
	"fs-bot/pkg/util"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const (
	timestampTemplate = "DD.MM.YYYY hh:mm:ss"
	goodbyeSound      = "goodbye"
)

type Messenger interface {
	SendMessage(channelID, text string) error
}

type Soundboard interface {
	Play(ctx context.Context, serverID, name string) error
}

// NameResolver never fails; it falls back to the id.
type NameResolver interface {
	DisplayName(ctx context.Context, serverID, userID string) string
}

type Options struct {
	StatusChannelID string
	Delay           time.Duration
	HelloSounds     int
	Clock           clockwork.Clock
	Rand            *rand.Rand
}

type Announcer struct {
	msg    Messenger
	sounds Soundboard
	names  NameResolver
	opts   Options
	logger zerolog.Logger

	randMu sync.Mutex
}

func New(msg Messenger, sounds Soundboard, names NameResolver, opts Options, logger zerolog.Logger) *Announcer {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if opts.HelloSounds < 1 {
		opts.HelloSounds = 1
	}
	return &Announcer{
		msg:    msg,
		sounds: sounds,
		names:  names,
		opts:   opts,
		logger: logger.With().Str("component", "announcer").Logger(),
	}
}

// AnnounceJoin waits for the configured delay so the voice connection settles,
// then posts the notice and plays a random hello sound. It only returns an
// error when ctx ends during the delay.
func (a *Announcer) AnnounceJoin(ctx context.Context, serverID, userID string) error {
	if err := a.wait(ctx); err != nil {
		return err
	}
	a.post(ctx, serverID, userID, "joined")
	a.play(ctx, serverID, a.helloSound())
	return nil
}

// AnnounceLeave posts the departure notice and plays the goodbye sound.
func (a *Announcer) AnnounceLeave(ctx context.Context, serverID, userID string) error {
	a.post(ctx, serverID, userID, "left")
	a.play(ctx, serverID, goodbyeSound)
	return nil
}

// Line renders one notice, e.g. "[09.03.2024 20:15:00] **Alice** joined."
func Line(t time.Time, name, verb string) string {
	return fmt.Sprintf("[%s] **%s** %s.", util.FormatDateTpl(t, timestampTemplate), name, verb)
}

func (a *Announcer) wait(ctx context.Context) error {
	if a.opts.Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.opts.Clock.After(a.opts.Delay):
		return nil
	}
}

func (a *Announcer) post(ctx context.Context, serverID, userID, verb string) {
	name := a.names.DisplayName(ctx, serverID, userID)
	text := Line(a.opts.Clock.Now(), name, verb)
	if err := a.msg.SendMessage(a.opts.StatusChannelID, text); err != nil {
		a.logger.Warn().Err(err).Str("channel", a.opts.StatusChannelID).Msg("Failed to send announcement")
	}
}

func (a *Announcer) play(ctx context.Context, serverID, sound string) {
	err := a.sounds.Play(ctx, serverID, sound)
	switch {
	case err == nil:
	case errors.Is(err, audio.ErrSoundNotFound):
		a.logger.Warn().Str("sound", sound).Msg("Sound file missing, skipping")
	default:
		a.logger.Warn().Err(err).Str("sound", sound).Msg("Failed to play sound")
	}
}

func (a *Announcer) helloSound() string {
	a.randMu.Lock()
	n := a.opts.Rand.IntN(a.opts.HelloSounds)
	a.randMu.Unlock()
	return fmt.Sprintf("hello%d", n)
}
