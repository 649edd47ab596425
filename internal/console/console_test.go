package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"fs-bot/internal/audio"
	"fs-bot/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(input string) (*Console, *bytes.Buffer) {
	out := &bytes.Buffer{}
	c := New(strings.NewReader(input), out, Options{
		ServerID:       "s",
		VoiceChannelID: "v",
		UserID:         "me",
		Present:        []string{"alice"},
	})
	return c, out
}

func TestConsole_EventsFromInput(t *testing.T) {
	c, _ := newTestConsole("!code\n\n/join bob\n/move bob afk\n/as carol  hi there\n/leave bob\n/bogus\n/drop\n/close 4004 Authentication failed.\n")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, c.Connect(ctx))

	next := func() (platform.Event, error) {
		t.Helper()
		return c.Receive(ctx)
	}

	ev, err := next()
	require.NoError(t, err)
	assert.Equal(t, platform.SnapshotEvent{ServerID: "s", VoiceStates: []platform.VoiceState{{UserID: "alice", ChannelID: "v"}}}, ev)

	ev, err = next()
	require.NoError(t, err)
	assert.Equal(t, platform.MessageEvent{ServerID: "s", ChannelID: ChannelID, AuthorID: "me", AuthorName: "me", Content: "!code"}, ev)

	ev, err = next()
	require.NoError(t, err)
	assert.Equal(t, platform.VoiceStateEvent{ServerID: "s", VoiceState: platform.VoiceState{UserID: "bob", ChannelID: "v"}}, ev)

	ev, err = next()
	require.NoError(t, err)
	assert.Equal(t, "afk", ev.(platform.VoiceStateEvent).ChannelID)

	ev, err = next()
	require.NoError(t, err)
	msg := ev.(platform.MessageEvent)
	assert.Equal(t, "carol", msg.AuthorID)
	assert.Equal(t, "hi there", msg.Content)

	ev, err = next()
	require.NoError(t, err)
	assert.Equal(t, "", ev.(platform.VoiceStateEvent).ChannelID)

	_, err = next()
	assert.True(t, platform.IsRecoverable(err))

	_, err = next()
	require.True(t, platform.IsFatal(err))
	var te *platform.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 4004, te.Code)
	assert.Equal(t, "Authentication failed.", te.Reason)

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("console did not report end of input")
	}
}

func TestConsole_ReceiveBlocksAfterEOF(t *testing.T) {
	c, _ := newTestConsole("")
	require.NoError(t, c.Connect(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Receive(ctx) // snapshot
	require.NoError(t, err)
	_, err = c.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConsole_VoiceAndPlayback(t *testing.T) {
	c, out := newTestConsole("")
	clip := &audio.Clip{Name: "hello0", Samples: make([]int16, 48000*2), Stereo: true, SampleRate: 48000}

	assert.ErrorIs(t, c.PlayWaveform(context.Background(), "s", clip), platform.ErrNotInVoice)
	require.NoError(t, c.LeaveVoice("s"))

	require.NoError(t, c.JoinVoice("s", "v"))
	require.NoError(t, c.JoinVoice("s", "v"))
	require.NoError(t, c.PlayWaveform(context.Background(), "s", clip))
	require.NoError(t, c.SendMessage("status", "hi"))
	require.NoError(t, c.LeaveVoice("s"))

	assert.Equal(t, "* joined voice v\n* playing hello0 (1s)\n[#status] hi\n* left voice\n", out.String())
}
