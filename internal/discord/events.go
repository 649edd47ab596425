package discord

import (
	"context"
	"sync"

	"fs-bot/internal/platform"

	"github.com/bwmarrin/discordgo"
)

type queued struct {
	ev  platform.Event
	err error
}

// eventQueue is an unbounded FIFO between discordgo handlers and Receive.
type eventQueue struct {
	mu     sync.Mutex
	items  []queued
	notify chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{notify: make(chan struct{}, 1)}
}

func (q *eventQueue) push(item queued) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *eventQueue) pop(ctx context.Context) (platform.Event, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items[0] = queued{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return item.ev, item.err
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		}
	}
}

func (q *eventQueue) reset() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}

func (c *Client) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	c.logger.Info().Str("guild", g.ID).Str("name", g.Name).Msg("Guild available")
	c.queue.push(queued{ev: snapshotFrom(g.Guild)})
}

func (c *Client) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	c.queue.push(queued{ev: platform.VoiceStateEvent{
		ServerID:   v.GuildID,
		VoiceState: voiceStateFrom(v.VoiceState),
	}})
}

func (c *Client) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}
	c.queue.push(queued{ev: messageFrom(m.Message)})
}

// onDisconnect fires for every socket close, including our own.
func (c *Client) onDisconnect(s *discordgo.Session, _ *discordgo.Disconnect) {
	if c.closing.Load() {
		return
	}
	c.logger.Warn().Msg("Gateway disconnected")
	c.queue.push(queued{err: &platform.TransportError{Reason: "gateway disconnected"}})
}

func snapshotFrom(g *discordgo.Guild) platform.SnapshotEvent {
	states := make([]platform.VoiceState, 0, len(g.VoiceStates))
	for _, vs := range g.VoiceStates {
		states = append(states, voiceStateFrom(vs))
	}
	return platform.SnapshotEvent{ServerID: g.ID, VoiceStates: states}
}

func voiceStateFrom(vs *discordgo.VoiceState) platform.VoiceState {
	if vs == nil {
		return platform.VoiceState{}
	}
	return platform.VoiceState{UserID: vs.UserID, ChannelID: vs.ChannelID}
}

func messageFrom(m *discordgo.Message) platform.MessageEvent {
	return platform.MessageEvent{
		ServerID:   m.GuildID,
		ChannelID:  m.ChannelID,
		AuthorID:   m.Author.ID,
		AuthorName: displayName(m.Member, m.Author),
		Content:    m.Content,
	}
}
