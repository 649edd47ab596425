// Package console is a platform that reads chat lines from a terminal, for
// trying the bot without Discord.
//
// Plain lines are chat messages from the configured user. A few lines starting
// with "/" simulate gateway events:
//
//	/join <user>           user enters the observed voice channel
//	/move <user> <channel> user moves to another voice channel
//	/leave <user>          user disconnects from voice
//	/as <user> <text>      chat message from another user
//	/drop                  connection lost (reconnects)
//	/close <code> <reason> gateway closed for good
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"fs-bot/internal/audio"
	"fs-bot/internal/platform"
)

const ChannelID = "console"

type Options struct {
	ServerID       string
	VoiceChannelID string
	UserID         string // author of plain lines
	// Present is who is in the voice channel when the snapshot is taken.
	Present        []string
}

// Console implements platform.Platform and audio.Sink.
type Console struct {
	opts  Options
	in    io.Reader
	out   io.Writer
	outMu sync.Mutex

	lines    chan string
	done     chan struct{}
	readOnce sync.Once

	mu      sync.Mutex
	pending []platform.Event
	voice   string // joined voice channel, "" if none
}

var (
	_ platform.Platform = (*Console)(nil)
	_ audio.Sink        = (*Console)(nil)
)

func New(in io.Reader, out io.Writer, opts Options) *Console {
	return &Console{
		opts:  opts,
		in:    in,
		out:   out,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
}

// Done is closed once the input is exhausted.
func (c *Console) Done() <-chan struct{} {
	return c.done
}

// Connect queues a fresh snapshot and starts reading input on first use.
func (c *Console) Connect(ctx context.Context) error {
	c.readOnce.Do(func() { go c.read() })

	states := make([]platform.VoiceState, 0, len(c.opts.Present))
	for _, id := range c.opts.Present {
		states = append(states, platform.VoiceState{UserID: id, ChannelID: c.opts.VoiceChannelID})
	}

	c.mu.Lock()
	c.pending = []platform.Event{platform.SnapshotEvent{ServerID: c.opts.ServerID, VoiceStates: states}}
	c.mu.Unlock()

	c.printf("* connected")
	return ctx.Err()
}

func (c *Console) Receive(ctx context.Context) (platform.Event, error) {
	c.mu.Lock()
	if len(c.pending) > 0 {
		ev := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()
		return ev, nil
	}
	c.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case line, ok := <-c.lines:
			if !ok {
				<-ctx.Done()
				return nil, ctx.Err()
			}
			ev, err := c.parseLine(line)
			if ev == nil && err == nil {
				continue
			}
			return ev, err
		}
	}
}

func (c *Console) Close() error {
	c.printf("* disconnected")
	return nil
}

func (c *Console) SendMessage(channelID, text string) error {
	c.printf("[#%s] %s", channelID, text)
	return nil
}

func (c *Console) Member(serverID, userID string) (*platform.Member, error) {
	return &platform.Member{UserID: userID, DisplayName: userID}, nil
}

func (c *Console) JoinVoice(serverID, channelID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.voice == channelID {
		return nil
	}
	c.voice = channelID
	c.printf("* joined voice %s", channelID)
	return nil
}

func (c *Console) LeaveVoice(serverID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.voice == "" {
		return nil
	}
	c.voice = ""
	c.printf("* left voice")
	return nil
}

func (c *Console) PlayWaveform(ctx context.Context, serverID string, clip *audio.Clip) error {
	c.mu.Lock()
	joined := c.voice != ""
	c.mu.Unlock()
	if !joined {
		return platform.ErrNotInVoice
	}

	frames := len(clip.Frames()) / audio.Channels
	length := time.Duration(frames) * time.Second / audio.SampleRate
	c.printf("* playing %s (%s)", clip.Name, length.Round(time.Millisecond))
	return nil
}

func (c *Console) read() {
	defer close(c.done)
	defer close(c.lines)

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		c.lines <- scanner.Text()
	}
}

// parseLine turns one input line into an event. Blank lines yield nothing.
func (c *Console) parseLine(line string) (platform.Event, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	if !strings.HasPrefix(line, "/") {
		return c.message(c.opts.UserID, line), nil
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/join":
		if len(fields) == 2 {
			return c.voiceState(fields[1], c.opts.VoiceChannelID), nil
		}
	case "/move":
		if len(fields) == 3 {
			return c.voiceState(fields[1], fields[2]), nil
		}
	case "/leave":
		if len(fields) == 2 {
			return c.voiceState(fields[1], ""), nil
		}
	case "/as":
		if len(fields) >= 3 {
			rest := strings.TrimSpace(strings.TrimPrefix(line, "/as"))
			user, text, _ := strings.Cut(rest, " ")
			return c.message(user, strings.TrimSpace(text)), nil
		}
	case "/drop":
		return nil, &platform.TransportError{Reason: "connection dropped"}
	case "/close":
		if len(fields) >= 2 {
			code, err := strconv.Atoi(fields[1])
			if err == nil {
				return nil, &platform.TransportError{Fatal: true, Code: code, Reason: strings.Join(fields[2:], " ")}
			}
		}
	}

	c.printf("? unknown console command: %s", line)
	return nil, nil
}

func (c *Console) message(userID, text string) platform.MessageEvent {
	return platform.MessageEvent{
		ServerID:   c.opts.ServerID,
		ChannelID:  ChannelID,
		AuthorID:   userID,
		AuthorName: userID,
		Content:    text,
	}
}

func (c *Console) voiceState(userID, channelID string) platform.VoiceStateEvent {
	return platform.VoiceStateEvent{
		ServerID:   c.opts.ServerID,
		VoiceState: platform.VoiceState{UserID: userID, ChannelID: channelID},
	}
}

func (c *Console) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format+"\n", args...)
}
