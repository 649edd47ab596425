// Package commandtest provides an in-memory connection for command tests.
package commandtest

import (
	"errors"
	"sync"

	"fs-bot/internal/command"
	"fs-bot/internal/platform"
)

type Message struct {
	ChannelID string
	Text      string
}

// Conn records what commands did with the connection.
type Conn struct {
	mu       sync.Mutex
	Sent     []Message
	Joined   []string // voice channel ids
	Left     int
	Members  map[string]string
	SendErr  error
	VoiceErr error
}

var _ command.Conn = (*Conn)(nil)

func (c *Conn) SendMessage(channelID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sent = append(c.Sent, Message{ChannelID: channelID, Text: text})
	return c.SendErr
}

func (c *Conn) Member(serverID, userID string) (*platform.Member, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.Members[userID]
	if !ok {
		return nil, errors.New("unknown member")
	}
	return &platform.Member{UserID: userID, DisplayName: name}, nil
}

func (c *Conn) JoinVoice(serverID, channelID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Joined = append(c.Joined, channelID)
	return c.VoiceErr
}

func (c *Conn) LeaveVoice(serverID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Left++
	return c.VoiceErr
}

// Texts returns the sent message bodies in order.
func (c *Conn) Texts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.Sent))
	for i, m := range c.Sent {
		out[i] = m.Text
	}
	return out
}

// NewContext returns a command context bound to conn.
func NewContext(conn *Conn, userID string) *command.Context {
	return &command.Context{
		Conn:           conn,
		ServerID:       "server",
		VoiceChannelID: "voice",
		ChannelID:      "text",
		UserID:         userID,
	}
}
