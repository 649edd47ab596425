// /internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"fs-bot/datastore"

	"github.com/rs/zerolog"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// UserRecord is what the bot remembers about a member.
type UserRecord struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"display_name"`
	LastSeenInVoice time.Time `json:"last_seen_in_voice"`
	LastSeenOnline  time.Time `json:"last_seen_online"`
	CreatedAt       time.Time `json:"created_at"`
}

// UserStore persists user records. Implementations are safe for concurrent use.
type UserStore interface {
	CreateSchemaIfAbsent(ctx context.Context) error
	Insert(ctx context.Context, rec UserRecord) error
	FindByID(ctx context.Context, id string) (*UserRecord, error)
	FindByName(ctx context.Context, name string) (*UserRecord, error)
	Update(ctx context.Context, rec UserRecord) error
	Close() error
}

// Storage is the JSON file backed UserStore.
type Storage struct {
	ds *datastore.DataStore

	// writeMu serialises read-modify-write sequences on user keys.
	writeMu sync.Mutex
}

var _ UserStore = (*Storage)(nil)

func New(filePath string, logger zerolog.Logger) (*Storage, error) {
	cfg := datastore.DefaultConfig(filePath)
	cfg.Logger = logger.With().Str("component", "datastore").Logger()

	ds, err := datastore.NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}
