package sound

import (
	"context"
	"errors"
	"fmt"

	"fs-bot/internal/audio"
	"fs-bot/internal/command"
)

type Soundboard interface {
	Play(ctx context.Context, serverID, name string) error
}

// PlayCommand plays a sound from the sound directory in the server's voice channel.
type PlayCommand struct {
	Sounds Soundboard
}

func (c *PlayCommand) Name() string            { return "play" }
func (c *PlayCommand) Description() string     { return "Play a sound: `play <name>`" }
func (c *PlayCommand) RequirePermission() bool { return false }

func (c *PlayCommand) Run(ctx context.Context, cc *command.Context, args []string) error {
	if len(args) < 1 {
		return cc.Reply("Usage: `play <name>`")
	}

	name := args[0]
	err := c.Sounds.Play(ctx, cc.ServerID, name)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, audio.ErrSoundNotFound), errors.Is(err, audio.ErrInvalidSoundName):
		return cc.Reply(fmt.Sprintf("I don't know the sound `%s`.", name))
	default:
		return err
	}
}
