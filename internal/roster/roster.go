// Package roster keeps user records in step with what the bot observes and
// resolves the names it prints.
package roster

import (
	"context"
	"errors"
	"fmt"

	"fs-bot/internal/platform"
	"fs-bot/internal/storage"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// MemberLookup resolves a member on the platform.
type MemberLookup interface {
	Member(serverID, userID string) (*platform.Member, error)
}

type Roster struct {
	store   storage.UserStore
	members MemberLookup
	clock   clockwork.Clock
	logger  zerolog.Logger
}

func New(store storage.UserStore, members MemberLookup, clock clockwork.Clock, logger zerolog.Logger) *Roster {
	return &Roster{
		store:   store,
		members: members,
		clock:   clock,
		logger:  logger.With().Str("component", "roster").Logger(),
	}
}

// DisplayName returns the member's current name, then the last stored name,
// then the raw id. It never fails.
func (r *Roster) DisplayName(ctx context.Context, serverID, userID string) string {
	if m, err := r.members.Member(serverID, userID); err == nil && m.DisplayName != "" {
		if err := r.upsert(ctx, userID, func(rec *storage.UserRecord) { rec.DisplayName = m.DisplayName }); err != nil {
			r.logger.Warn().Err(err).Str("user", userID).Msg("Failed to store display name")
		}
		return m.DisplayName
	} else if err != nil {
		r.logger.Debug().Err(err).Str("user", userID).Msg("Member lookup failed")
	}

	rec, err := r.store.FindByID(ctx, userID)
	if err == nil && rec.DisplayName != "" {
		return rec.DisplayName
	}
	return userID
}

// MarkVoice records that the user was just seen in the observed voice channel.
func (r *Roster) MarkVoice(ctx context.Context, userID string) error {
	now := r.clock.Now()
	return r.upsert(ctx, userID, func(rec *storage.UserRecord) { rec.LastSeenInVoice = now })
}

// MarkOnline records chat activity. An empty name leaves the stored name alone.
func (r *Roster) MarkOnline(ctx context.Context, userID, name string) error {
	now := r.clock.Now()
	return r.upsert(ctx, userID, func(rec *storage.UserRecord) {
		rec.LastSeenOnline = now
		if name != "" {
			rec.DisplayName = name
		}
	})
}

// Lookup finds a stored user by display name.
func (r *Roster) Lookup(ctx context.Context, name string) (*storage.UserRecord, error) {
	return r.store.FindByName(ctx, name)
}

func (r *Roster) upsert(ctx context.Context, userID string, mutate func(*storage.UserRecord)) error {
	rec, err := r.store.FindByID(ctx, userID)
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		fresh := storage.UserRecord{ID: userID, CreatedAt: r.clock.Now()}
		mutate(&fresh)
		err = r.store.Insert(ctx, fresh)
		if !errors.Is(err, storage.ErrUserExists) {
			return err
		}
		// Lost a race with another writer; fall back to an update.
		if rec, err = r.store.FindByID(ctx, userID); err != nil {
			return fmt.Errorf("reload %s: %w", userID, err)
		}
	case err != nil:
		return err
	}

	mutate(rec)
	return r.store.Update(ctx, *rec)
}
