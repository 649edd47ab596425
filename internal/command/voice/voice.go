package voice

import (
	"context"

	"fs-bot/internal/command"
)

// VoiceCommand moves the bot into or out of the observed voice channel.
type VoiceCommand struct{}

func (c *VoiceCommand) Name() string            { return "voice" }
func (c *VoiceCommand) Description() string     { return "Join or leave the voice channel: `voice join|leave`" }
func (c *VoiceCommand) RequirePermission() bool { return false }

func (c *VoiceCommand) Run(ctx context.Context, cc *command.Context, args []string) error {
	if len(args) < 1 {
		return cc.Reply("Usage: `voice join|leave`")
	}

	switch args[0] {
	case "join":
		return cc.Conn.JoinVoice(cc.ServerID, cc.VoiceChannelID)
	case "leave":
		return cc.Conn.LeaveVoice(cc.ServerID)
	default:
		return cc.Reply("Usage: `voice join|leave`")
	}
}
