// Package command holds the chat command contract, the registry that resolves
// typed names to commands, and the middleware that wraps them.
package command

import (
	"context"

	"fs-bot/internal/platform"
)

// Command is a named chat command.
type Command interface {
	Name() string
	Description() string
	RequirePermission() bool
	Run(ctx context.Context, c *Context, args []string) error
}

// Conn is the slice of the live connection a command may use.
type Conn interface {
	platform.Messenger
	platform.Voice
}

// Context is built fresh for every invocation and dropped afterwards.
type Context struct {
	Conn           Conn
	ServerID       string
	VoiceChannelID string
	ChannelID      string // text channel the command was typed in
	UserID         string
}

// Reply sends text back to the channel the command came from.
func (c *Context) Reply(text string) error {
	return c.Conn.SendMessage(c.ChannelID, text)
}

// Authorizer decides whether a user may run permission-gated commands.
type Authorizer interface {
	Authorized(userID string) bool
}

// MasterAuthorizer authorizes exactly one user id.
type MasterAuthorizer string

func (m MasterAuthorizer) Authorized(userID string) bool {
	return m != "" && string(m) == userID
}
