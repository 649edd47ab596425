// Package postgres is the PostgreSQL UserStore, used when DATABASE_URL is set.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fs-bot/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const selectUser = `SELECT id, display_name, last_seen_in_voice, last_seen_online, created_at FROM users`

type Store struct {
	pool *pgxpool.Pool
}

var _ storage.UserStore = (*Store)(nil)

// Open connects a pool and verifies it with a ping.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) CreateSchemaIfAbsent(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id                 TEXT PRIMARY KEY,
			display_name       TEXT NOT NULL DEFAULT '',
			last_seen_in_voice TIMESTAMPTZ,
			last_seen_online   TIMESTAMPTZ,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS users_display_name_idx ON users(lower(display_name))`)
	return err
}

func (s *Store) Insert(ctx context.Context, rec storage.UserRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, display_name, last_seen_in_voice, last_seen_online, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.DisplayName, nullTime(rec.LastSeenInVoice), nullTime(rec.LastSeenOnline), created.Truncate(time.Microsecond))

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("insert %s: %w", rec.ID, storage.ErrUserExists)
	}
	if err != nil {
		return fmt.Errorf("insert %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*storage.UserRecord, error) {
	rec, err := s.scanOne(ctx, selectUser+` WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", id, err)
	}
	return rec, nil
}

func (s *Store) FindByName(ctx context.Context, name string) (*storage.UserRecord, error) {
	rec, err := s.scanOne(ctx, selectUser+` WHERE lower(display_name) = lower($1) ORDER BY id LIMIT 1`, name)
	if err != nil {
		return nil, fmt.Errorf("find name %q: %w", name, err)
	}
	return rec, nil
}

// Update overwrites the mutable columns; created_at is never changed.
func (s *Store) Update(ctx context.Context, rec storage.UserRecord) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET display_name = $2, last_seen_in_voice = $3, last_seen_online = $4
		WHERE id = $1`,
		rec.ID, rec.DisplayName, nullTime(rec.LastSeenInVoice), nullTime(rec.LastSeenOnline))
	if err != nil {
		return fmt.Errorf("update %s: %w", rec.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update %s: %w", rec.ID, storage.ErrUserNotFound)
	}
	return nil
}

func (s *Store) scanOne(ctx context.Context, query string, args ...any) (*storage.UserRecord, error) {
	var (
		rec         storage.UserRecord
		voice, chat *time.Time
	)
	err := s.pool.QueryRow(ctx, query, args...).Scan(&rec.ID, &rec.DisplayName, &voice, &chat, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if voice != nil {
		rec.LastSeenInVoice = *voice
	}
	if chat != nil {
		rec.LastSeenOnline = *chat
	}
	return &rec, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.Truncate(time.Microsecond)
	return &t
}
