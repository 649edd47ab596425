package announce

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"fs-bot/internal/audio"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct{ channel, text string }

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (f *fakeMessenger) SendMessage(channelID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{channelID, text})
	return f.err
}

func (f *fakeMessenger) messages() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.sent...)
}

type fakeSounds struct {
	mu     sync.Mutex
	played []string
	err    error
}

func (f *fakeSounds) Play(ctx context.Context, serverID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, name)
	return f.err
}

type names map[string]string

func (n names) DisplayName(ctx context.Context, serverID, userID string) string {
	if name, ok := n[userID]; ok {
		return name
	}
	return userID
}

var start = time.Date(2024, 3, 9, 20, 15, 0, 0, time.UTC)

func newTestAnnouncer(msg *fakeMessenger, sounds *fakeSounds) (*Announcer, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(start)
	a := New(msg, sounds, names{"1": "Alice"}, Options{
		StatusChannelID: "status",
		Delay:           500 * time.Millisecond,
		HelloSounds:     7,
		Clock:           clock,
		Rand:            rand.New(rand.NewPCG(1, 2)),
	}, zerolog.Nop())
	return a, clock
}

func TestLine(t *testing.T) {
	assert.Equal(t, "[09.03.2024 20:15:00] **Alice** joined.", Line(start, "Alice", "joined"))
}

func TestAnnounceJoin_WaitsForDelay(t *testing.T) {
	msg, sounds := &fakeMessenger{}, &fakeSounds{}
	a, clock := newTestAnnouncer(msg, sounds)

	done := make(chan error, 1)
	go func() { done <- a.AnnounceJoin(context.Background(), "g", "1") }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Empty(t, msg.messages())

	clock.Advance(500 * time.Millisecond)
	require.NoError(t, <-done)

	require.Len(t, msg.messages(), 1)
	assert.Equal(t, sent{"status", "[09.03.2024 20:15:00] **Alice** joined."}, msg.messages()[0])

	require.Len(t, sounds.played, 1)
	assert.True(t, strings.HasPrefix(sounds.played[0], "hello"))
	n, err := strconv.Atoi(strings.TrimPrefix(sounds.played[0], "hello"))
	require.NoError(t, err)
	assert.True(t, n >= 0 && n < 7)
}

func TestAnnounceJoin_CancelledDuringDelay(t *testing.T) {
	msg, sounds := &fakeMessenger{}, &fakeSounds{}
	a, clock := newTestAnnouncer(msg, sounds)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.AnnounceJoin(ctx, "g", "1") }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Empty(t, msg.messages())
	assert.Empty(t, sounds.played)
}

func TestAnnounceLeave(t *testing.T) {
	msg, sounds := &fakeMessenger{}, &fakeSounds{}
	a, _ := newTestAnnouncer(msg, sounds)

	require.NoError(t, a.AnnounceLeave(context.Background(), "g", "42"))

	assert.Equal(t, []sent{{"status", "[09.03.2024 20:15:00] **42** left."}}, msg.messages())
	assert.Equal(t, []string{"goodbye"}, sounds.played)
}

func TestAnnounce_FailuresAreSwallowed(t *testing.T) {
	msg := &fakeMessenger{err: errors.New("rate limited")}
	sounds := &fakeSounds{err: fmt.Errorf("load goodbye: %w", audio.ErrSoundNotFound)}
	a, _ := newTestAnnouncer(msg, sounds)

	assert.NoError(t, a.AnnounceLeave(context.Background(), "g", "1"))
	assert.Len(t, msg.messages(), 1)
	assert.Equal(t, []string{"goodbye"}, sounds.played)
}

func TestHelloSoundsStayInRange(t *testing.T) {
	a := New(&fakeMessenger{}, &fakeSounds{}, names{}, Options{HelloSounds: 3, Rand: rand.New(rand.NewPCG(7, 7))}, zerolog.Nop())

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[a.helloSound()] = true
	}
	assert.Equal(t, map[string]bool{"hello0": true, "hello1": true, "hello2": true}, seen)
}
