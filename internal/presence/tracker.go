// Package presence tracks which users are in the observed voice channel and
// turns raw voice state updates into membership transitions.
package presence

import (
	"sort"

	"fs-bot/internal/platform"
)

// Kind is the type of a membership transition.
type Kind int

const (
	None Kind = iota
	Joined
	Left
	SelfMoved
)

func (k Kind) String() string {
	switch k {
	case Joined:
		return "joined"
	case Left:
		return "left"
	case SelfMoved:
		return "self-moved"
	default:
		return "none"
	}
}

// Transition is the result of applying one voice state update.
type Transition struct {
	Kind   Kind
	UserID string
}

// Tracker holds the presence set for one voice channel. It is not safe for
// concurrent use; the session loop owns it.
type Tracker struct {
	channelID string
	selfID    string
	present   map[string]struct{}
	synced    bool
}

// NewTracker tracks channelID. selfID is the bot's own user id.
func NewTracker(channelID, selfID string) *Tracker {
	return &Tracker{
		channelID: channelID,
		selfID:    selfID,
		present:   make(map[string]struct{}),
	}
}

// Synced reports whether the tracker has been seeded from a snapshot.
func (t *Tracker) Synced() bool { return t.synced }

// Sync seeds the presence set from a full snapshot. It only runs once; later
// calls return false and change nothing until Reset.
func (t *Tracker) Sync(states []platform.VoiceState) bool {
	if t.synced {
		return false
	}
	for _, vs := range states {
		if vs.ChannelID == t.channelID {
			t.present[vs.UserID] = struct{}{}
		}
	}
	t.synced = true
	return true
}

// Reset forgets everything, so the next snapshot reseeds the set.
func (t *Tracker) Reset() {
	clear(t.present)
	t.synced = false
}

// Apply feeds one voice state update. Only crossings of the observed channel
// boundary produce a transition; updates before the first Sync are ignored.
func (t *Tracker) Apply(vs platform.VoiceState) Transition {
	if !t.synced {
		return Transition{Kind: None, UserID: vs.UserID}
	}

	_, isPresent := t.present[vs.UserID]
	inChannel := vs.ChannelID == t.channelID
	isSelf := vs.UserID == t.selfID

	switch {
	case inChannel && !isPresent:
		t.present[vs.UserID] = struct{}{}
		if isSelf {
			return Transition{Kind: None, UserID: vs.UserID}
		}
		return Transition{Kind: Joined, UserID: vs.UserID}

	case !inChannel && isPresent:
		// The bot stays in the set; the session rejoins instead.
		if isSelf {
			return Transition{Kind: SelfMoved, UserID: vs.UserID}
		}
		delete(t.present, vs.UserID)
		return Transition{Kind: Left, UserID: vs.UserID}
	}

	return Transition{Kind: None, UserID: vs.UserID}
}

// Contains reports whether userID is in the presence set.
func (t *Tracker) Contains(userID string) bool {
	_, ok := t.present[userID]
	return ok
}

// Users returns the presence set, sorted.
func (t *Tracker) Users() []string {
	users := make([]string, 0, len(t.present))
	for id := range t.present {
		users = append(users, id)
	}
	sort.Strings(users)
	return users
}
