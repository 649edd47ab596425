package audio

import (
	"context"

	"github.com/rs/zerolog"
)

// Sink plays decoded audio into a server's voice connection.
type Sink interface {
	PlayWaveform(ctx context.Context, serverID string, clip *Clip) error
}

// Soundboard plays sounds from a Library through a Sink.
type Soundboard struct {
	lib  *Library
	sink Sink
	log  zerolog.Logger
}

func NewSoundboard(lib *Library, sink Sink, logger zerolog.Logger) *Soundboard {
	return &Soundboard{
		lib:  lib,
		sink: sink,
		log:  logger.With().Str("component", "soundboard").Logger(),
	}
}

// Play loads name and starts playing it on serverID.
func (s *Soundboard) Play(ctx context.Context, serverID, name string) error {
	clip, err := s.lib.Load(name)
	if err != nil {
		return err
	}
	s.log.Info().Str("file", s.lib.Path(name)).Msg("Playing file")
	return s.sink.PlayWaveform(ctx, serverID, clip)
}
