// Package discord connects the bot to Discord through discordgo. Gateway
// callbacks are queued and handed out one at a time by Receive.
package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"fs-bot/internal/platform"
	"fs-bot/pkg/jobmgr"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Client implements platform.Platform and audio.Sink.
type Client struct {
	dg     *discordgo.Session
	queue  *eventQueue
	jobs   *jobmgr.Manager
	logger zerolog.Logger

	mu      sync.Mutex // serialises Connect, Close and voice joins
	open    bool
	closing atomic.Bool
}

var _ platform.Platform = (*Client)(nil)

func New(token string, logger zerolog.Logger) (*Client, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	logger = logger.With().Str("component", "discord").Logger()
	c := &Client{
		dg:     dg,
		queue:  newEventQueue(),
		logger: logger,
	}
	c.jobs = jobmgr.NewManager(func(status string) {
		logger.Debug().Str("job", status).Msg("Playback job")
	})

	// The session loop owns reconnects; handlers must run in gateway order.
	dg.ShouldReconnectOnError = false
	dg.SyncEvents = true
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	dg.AddHandler(c.onGuildCreate)
	dg.AddHandler(c.onVoiceStateUpdate)
	dg.AddHandler(c.onMessageCreate)
	dg.AddHandler(c.onDisconnect)

	return c, nil
}

// Connect opens the gateway, closing any previous connection first. Events
// still queued from the old connection are dropped.
func (c *Client) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		c.closeLocked()
	}
	c.queue.reset()

	if err := c.dg.Open(); err != nil {
		return classifyOpenError(err)
	}
	c.open = true
	if u := c.dg.State.User; u != nil {
		c.logger.Info().Str("user", u.Username).Msg("Gateway connected")
	}
	return nil
}

// Receive returns the next gateway event or transport error.
func (c *Client) Receive(ctx context.Context) (platform.Event, error) {
	return c.queue.pop(ctx)
}

// Close stops playback, leaves voice and closes the gateway. It is safe to
// call more than once.
func (c *Client) Close() error {
	c.jobs.StopAll()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return nil
	}
	return c.closeLocked()
}

func (c *Client) closeLocked() error {
	c.closing.Store(true)
	defer c.closing.Store(false)

	c.open = false
	if err := c.dg.Close(); err != nil {
		return fmt.Errorf("close gateway: %w", err)
	}
	return nil
}

func (c *Client) SendMessage(channelID, text string) error {
	if _, err := c.dg.ChannelMessageSend(channelID, text); err != nil {
		return fmt.Errorf("send to %s: %w", channelID, err)
	}
	return nil
}

// Member looks the member up in the state cache, then over REST.
func (c *Client) Member(serverID, userID string) (*platform.Member, error) {
	m, err := c.dg.State.Member(serverID, userID)
	if err != nil {
		m, err = c.dg.GuildMember(serverID, userID)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", userID, err)
		}
	}
	return &platform.Member{UserID: userID, DisplayName: displayName(m, m.User)}, nil
}

// Gateway close codes after which Discord will not accept the same session
// configuration again. Every other close, including an abnormal 1006 from a
// dropped socket, can be retried.
var fatalCloseCodes = map[int]bool{
	4004: true, // authentication failed
	4010: true, // invalid shard
	4011: true, // sharding required
	4012: true, // invalid API version
	4013: true, // invalid intents
	4014: true, // disallowed intents
}

// classifyOpenError marks the non-resumable close codes as fatal and
// everything else, close frames included, as worth a retry.
func classifyOpenError(err error) error {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return &platform.TransportError{Fatal: fatalCloseCodes[ce.Code], Code: ce.Code, Reason: ce.Text, Err: err}
	}
	return &platform.TransportError{Err: err}
}

// displayName prefers the server nickname, then the global name, then the username.
func displayName(m *discordgo.Member, u *discordgo.User) string {
	if m != nil && m.Nick != "" {
		return m.Nick
	}
	if u == nil {
		return ""
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
