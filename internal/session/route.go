package session

import (
	"context"
	"errors"
	"sync/atomic"

	"fs-bot/internal/command"
	"fs-bot/internal/platform"
	"fs-bot/internal/presence"
)

// route handles one event and reports whether the loop should stop.
func (s *Session) route(ctx context.Context, ev platform.Event) bool {
	switch e := ev.(type) {
	case platform.SnapshotEvent:
		s.onSnapshot(e)
	case platform.VoiceStateEvent:
		s.onVoiceState(ctx, e)
	case platform.MessageEvent:
		return s.onMessage(ctx, e)
	default:
		s.log.Debug().Type("event", ev).Msg("Ignoring event")
	}
	return false
}

func (s *Session) onSnapshot(e platform.SnapshotEvent) {
	if e.ServerID != s.cfg.ServerID {
		return
	}
	if s.tracker.Sync(e.VoiceStates) {
		s.log.Info().Strs("users", s.tracker.Users()).Msg("Synced voice users")
	}
}

func (s *Session) onVoiceState(ctx context.Context, e platform.VoiceStateEvent) {
	if e.ServerID != s.cfg.ServerID {
		return
	}
	s.log.Debug().Str("user", e.UserID).Str("channel", e.ChannelID).Msg("Voice update")

	tr := s.tracker.Apply(e.VoiceState)
	switch tr.Kind {
	case presence.Joined:
		s.markVoice(ctx, tr.UserID)
		if err := s.announcer.AnnounceJoin(ctx, s.cfg.ServerID, tr.UserID); err != nil {
			s.log.Info().Err(err).Str("user", tr.UserID).Msg("Join announcement skipped")
		}
	case presence.Left:
		s.markVoice(ctx, tr.UserID)
		if err := s.announcer.AnnounceLeave(ctx, s.cfg.ServerID, tr.UserID); err != nil {
			s.log.Info().Err(err).Str("user", tr.UserID).Msg("Leave announcement skipped")
		}
	case presence.SelfMoved:
		if s.stayOut.Load() {
			s.log.Info().Msg("Left the voice channel on request")
			return
		}
		s.log.Info().Msg("Moved out of the voice channel, rejoining")
		s.joinVoice()
	default:
		return
	}
	s.log.Info().Stringer("transition", tr.Kind).Strs("users", s.tracker.Users()).Msg("Voice users changed")
}

func (s *Session) onMessage(ctx context.Context, e platform.MessageEvent) bool {
	if e.AuthorID == s.cfg.BotID {
		return false
	}
	s.log.Info().Str("author", e.AuthorName).Str("content", e.Content).Msg("Message")

	if err := s.roster.MarkOnline(ctx, e.AuthorID, e.AuthorName); err != nil {
		s.log.Warn().Err(err).Str("user", e.AuthorID).Msg("Failed to update user record")
	}

	switch e.Content {
	case s.cfg.Prefix + "code":
		s.send(e.ChannelID, "You can find my internals at "+s.cfg.SourceURL)
		return false
	case s.cfg.Prefix + "quit":
		if e.AuthorID != s.cfg.MasterID {
			s.log.Info().Str("user", e.AuthorID).Msg("Ignoring quit from non-master")
			return false
		}
		name := e.AuthorName
		if name == "" {
			name = s.roster.DisplayName(ctx, s.cfg.ServerID, e.AuthorID)
		}
		s.log.Info().Msg("Quitting")
		s.send(e.ChannelID, "Bye "+name+".")
		return true
	}

	name, args, ok := command.Parse(e.Content, s.cfg.Prefix)
	if !ok {
		return false
	}

	cc := &command.Context{
		Conn:           &commandConn{Conn: s.conn, stayOut: &s.stayOut},
		ServerID:       s.cfg.ServerID,
		VoiceChannelID: s.cfg.VoiceChannelID,
		ChannelID:      e.ChannelID,
		UserID:         e.AuthorID,
	}
	err := s.commands.Dispatch(ctx, cc, name, args)
	switch {
	case err == nil:
	case errors.Is(err, command.ErrCommandNotFound):
		s.log.Info().Str("command", name).Msg("Unknown command")
	case errors.Is(err, command.ErrPermissionDenied):
		s.log.Info().Str("command", name).Str("user", e.AuthorID).Msg("Command not permitted")
	default:
		s.log.Warn().Err(err).Str("command", name).Msg("Command failed")
	}
	return false
}

func (s *Session) markVoice(ctx context.Context, userID string) {
	if err := s.roster.MarkVoice(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("Failed to update user record")
	}
}

func (s *Session) send(channelID, text string) {
	if err := s.conn.SendMessage(channelID, text); err != nil {
		s.log.Warn().Err(err).Str("channel", channelID).Msg("Failed to send message")
	}
}

// commandConn remembers whether the last voice command asked the bot to stay
// out of voice, so the session does not undo it by rejoining.
type commandConn struct {
	command.Conn
	stayOut *atomic.Bool
}

func (c *commandConn) JoinVoice(serverID, channelID string) error {
	c.stayOut.Store(false)
	return c.Conn.JoinVoice(serverID, channelID)
}

func (c *commandConn) LeaveVoice(serverID string) error {
	c.stayOut.Store(true)
	return c.Conn.LeaveVoice(serverID)
}
