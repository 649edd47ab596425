package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const userKeyPrefix = "user:"

func userKey(id string) string {
	return userKeyPrefix + id
}

// CreateSchemaIfAbsent is a no-op for the file store; the file is created on open.
func (s *Storage) CreateSchemaIfAbsent(ctx context.Context) error {
	return ctx.Err()
}

func (s *Storage) Insert(ctx context.Context, rec UserRecord) error {
	if rec.ID == "" {
		return errors.New("user id is required")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var existing UserRecord
	found, err := s.ds.Get(userKey(rec.ID), &existing)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("insert %s: %w", rec.ID, ErrUserExists)
	}
	return s.ds.Put(userKey(rec.ID), rec)
}

func (s *Storage) FindByID(ctx context.Context, id string) (*UserRecord, error) {
	var rec UserRecord
	found, err := s.ds.Get(userKey(id), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("find %s: %w", id, ErrUserNotFound)
	}
	return &rec, nil
}

// FindByName matches display names case-insensitively. Ties go to the first key in sorted order.
func (s *Storage) FindByName(ctx context.Context, name string) (*UserRecord, error) {
	for _, key := range s.ds.Keys(userKeyPrefix) {
		var rec UserRecord
		found, err := s.ds.Get(key, &rec)
		if err != nil {
			return nil, err
		}
		if found && strings.EqualFold(rec.DisplayName, name) {
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("find name %q: %w", name, ErrUserNotFound)
}

func (s *Storage) Update(ctx context.Context, rec UserRecord) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var existing UserRecord
	found, err := s.ds.Get(userKey(rec.ID), &existing)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("update %s: %w", rec.ID, ErrUserNotFound)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = existing.CreatedAt
	}
	return s.ds.Put(userKey(rec.ID), rec)
}
