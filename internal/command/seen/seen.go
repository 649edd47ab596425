package seen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fs-bot/internal/command"
	"fs-bot/internal/storage"
	"fs-bot/pkg/util"
)

const dateTemplate = "DD.MM.YYYY hh:mm:ss"

type Lookup interface {
	Lookup(ctx context.Context, name string) (*storage.UserRecord, error)
}

// SeenCommand reports when a user was last in voice and last wrote in chat.
type SeenCommand struct {
	Users Lookup
}

func (c *SeenCommand) Name() string            { return "seen" }
func (c *SeenCommand) Description() string     { return "When was someone last around: `seen <name>`" }
func (c *SeenCommand) RequirePermission() bool { return false }

func (c *SeenCommand) Run(ctx context.Context, cc *command.Context, args []string) error {
	if len(args) < 1 {
		return cc.Reply("Usage: `seen <name>`")
	}

	name := strings.Join(args, " ")
	rec, err := c.Users.Lookup(ctx, name)
	if errors.Is(err, storage.ErrUserNotFound) {
		return cc.Reply(fmt.Sprintf("I have never seen **%s**.", name))
	}
	if err != nil {
		return err
	}

	return cc.Reply(fmt.Sprintf("**%s**: last in voice %s, last in chat %s.",
		rec.DisplayName, orNever(util.FormatDateTpl(rec.LastSeenInVoice, dateTemplate)),
		orNever(util.FormatDateTpl(rec.LastSeenOnline, dateTemplate))))
}

func orNever(s string) string {
	if s == "" {
		return "never"
	}
	return s
}
