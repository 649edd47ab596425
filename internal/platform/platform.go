// Package platform describes what the session needs from the messaging
// platform: a gateway that yields events one at a time, message sending,
// member lookup and voice membership.
package platform

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotInVoice is returned when audio is requested for a server the bot has
// no ready voice connection on.
var ErrNotInVoice = errors.New("not connected to voice")

// Platform is the gateway connection plus the REST calls the bot uses.
type Platform interface {
	Messenger
	Voice

	// Connect opens (or reopens) the gateway connection.
	Connect(ctx context.Context) error
	// Receive blocks until the next event or transport error.
	Receive(ctx context.Context) (Event, error)
	// Close logs out and closes the gateway connection.
	Close() error
}

// Messenger sends text and resolves members.
type Messenger interface {
	SendMessage(channelID, text string) error
	Member(serverID, userID string) (*Member, error)
}

// Voice joins and leaves voice channels. Both calls are idempotent.
type Voice interface {
	JoinVoice(serverID, channelID string) error
	LeaveVoice(serverID string) error
}

// Member is the subset of member info the bot displays.
type Member struct {
	UserID      string
	DisplayName string
}

// Event is one item received from the gateway.
type Event interface {
	isEvent()
}

// VoiceState is a user's voice channel membership. An empty ChannelID means
// the user is not in any voice channel.
type VoiceState struct {
	UserID    string
	ChannelID string
}

// SnapshotEvent carries the full voice state of a server right after connecting.
type SnapshotEvent struct {
	ServerID    string
	VoiceStates []VoiceState
}

// VoiceStateEvent is an incremental voice state change for one user.
type VoiceStateEvent struct {
	ServerID string
	VoiceState
}

// MessageEvent is a chat message.
type MessageEvent struct {
	ServerID   string
	ChannelID  string
	AuthorID   string
	AuthorName string
	Content    string
}

func (SnapshotEvent) isEvent()   {}
func (VoiceStateEvent) isEvent() {}
func (MessageEvent) isEvent()    {}

// TransportError is a gateway failure. Fatal errors are explicit closes from
// the remote side and end the session; everything else is worth a reconnect.
type TransportError struct {
	Fatal  bool
	Code   int
	Reason string
	Err    error
}

func (e *TransportError) Error() string {
	kind := "recoverable"
	if e.Fatal {
		kind = "fatal"
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s transport error (code %d): %s", kind, e.Code, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s transport error: %v", kind, e.Err)
	}
	return kind + " transport error: " + e.Reason
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsFatal reports whether err is a fatal TransportError.
func IsFatal(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Fatal
}

// IsRecoverable reports whether err is a non-fatal TransportError.
func IsRecoverable(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && !te.Fatal
}
