package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// JoinVoice connects to channelID. It does nothing when a ready connection to
// that channel already exists.
func (c *Client) JoinVoice(serverID, channelID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if vc := c.voiceConnection(serverID); vc != nil && voiceReady(vc) && vc.ChannelID == channelID {
		return nil
	}

	if _, err := c.dg.ChannelVoiceJoin(serverID, channelID, false, true); err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}
	c.logger.Info().Str("guild", serverID).Str("channel", channelID).Msg("Joined voice channel")
	return nil
}

// LeaveVoice stops playback and disconnects. Without a connection it does nothing.
func (c *Client) LeaveVoice(serverID string) error {
	_ = c.jobs.Stop(playbackJob(serverID))

	c.mu.Lock()
	defer c.mu.Unlock()

	vc := c.voiceConnection(serverID)
	if vc == nil {
		return nil
	}
	if err := vc.Disconnect(); err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	c.logger.Info().Str("guild", serverID).Msg("Left voice channel")
	return nil
}

func (c *Client) voiceConnection(serverID string) *discordgo.VoiceConnection {
	c.dg.RLock()
	defer c.dg.RUnlock()
	return c.dg.VoiceConnections[serverID]
}

func voiceReady(vc *discordgo.VoiceConnection) bool {
	vc.RLock()
	defer vc.RUnlock()
	return vc.Ready
}
