package session

import (
	"context"
	"errors"
	"sync"

	"fs-bot/internal/platform"
)

// step is one scripted Receive result.
type step struct {
	ev  platform.Event
	err error
}

type sentMessage struct {
	channel, text string
}

// fakePlatform replays a script. Once the script runs out Receive blocks
// until ctx ends.
type fakePlatform struct {
	mu          sync.Mutex
	script      []step
	connectErrs []error
	connects    int
	joins       []string
	leaves      int
	voiceOps    []string // "join" and "leave" in call order
	closed      int
	sent        []sentMessage
	members     map[string]string
}

func (f *fakePlatform) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	if len(f.connectErrs) > 0 {
		err := f.connectErrs[0]
		f.connectErrs = f.connectErrs[1:]
		return err
	}
	return nil
}

func (f *fakePlatform) Receive(ctx context.Context) (platform.Event, error) {
	f.mu.Lock()
	if len(f.script) > 0 {
		s := f.script[0]
		f.script = f.script[1:]
		f.mu.Unlock()
		return s.ev, s.err
	}
	f.mu.Unlock()

	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakePlatform) SendMessage(channelID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{channelID, text})
	return nil
}

func (f *fakePlatform) Member(serverID, userID string) (*platform.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name, ok := f.members[userID]; ok {
		return &platform.Member{UserID: userID, DisplayName: name}, nil
	}
	return nil, errors.New("unknown member")
}

func (f *fakePlatform) JoinVoice(serverID, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins = append(f.joins, channelID)
	f.voiceOps = append(f.voiceOps, "join")
	return nil
}

func (f *fakePlatform) LeaveVoice(serverID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaves++
	f.voiceOps = append(f.voiceOps, "leave")
	return nil
}

func (f *fakePlatform) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

type announcement struct {
	kind, userID string
}

type fakeAnnouncer struct {
	calls []announcement
}

func (f *fakeAnnouncer) AnnounceJoin(ctx context.Context, serverID, userID string) error {
	f.calls = append(f.calls, announcement{"join", userID})
	return nil
}

func (f *fakeAnnouncer) AnnounceLeave(ctx context.Context, serverID, userID string) error {
	f.calls = append(f.calls, announcement{"leave", userID})
	return nil
}

type fakeRoster struct {
	voice  []string
	online []string
}

func (f *fakeRoster) DisplayName(ctx context.Context, serverID, userID string) string {
	return "name-" + userID
}

func (f *fakeRoster) MarkVoice(ctx context.Context, userID string) error {
	f.voice = append(f.voice, userID)
	return nil
}

func (f *fakeRoster) MarkOnline(ctx context.Context, userID, name string) error {
	f.online = append(f.online, userID)
	return nil
}
