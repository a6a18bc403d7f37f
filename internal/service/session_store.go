package service

import (
	"context"
	"fmt"
	"time"

	"thesis-manager/internal/cache"
	"thesis-manager/internal/model"
)

type SessionKind string

const (
	SessionAdmin SessionKind = "admin"
	SessionUser  SessionKind = "user"
)

// SessionKey is the cache key holding the session record of one principal.
// Admin and user sessions never share a key.
func SessionKey(kind SessionKind, principalID string) string {
	return fmt.Sprintf("cache:auth/%s/%s", kind, principalID)
}

func OTPKey(email string) string {
	return "cache:otp/" + normalizeEmail(email)
}

type SessionStore struct {
	cache cache.Cache[model.SessionRecord]
	ttl   time.Duration
}

func NewSessionStore(c cache.Cache[model.SessionRecord], ttl time.Duration) *SessionStore {
	return &SessionStore{cache: c, ttl: ttl}
}

// Save overwrites the session record and resets its TTL.
func (s *SessionStore) Save(ctx context.Context, kind SessionKind, principalID string, record model.SessionRecord) error {
	if err := s.cache.Set(ctx, SessionKey(kind, principalID), &record, s.ttl); err != nil {
		return fmt.Errorf("save %s session: %w", kind, err)
	}
	return nil
}

// Load returns model.ErrSessionNotFound when no record exists.
func (s *SessionStore) Load(ctx context.Context, kind SessionKind, principalID string) (model.SessionRecord, error) {
	record, err := s.cache.Get(ctx, SessionKey(kind, principalID))
	if err != nil {
		return model.SessionRecord{}, fmt.Errorf("load %s session: %w", kind, err)
	}
	if record == nil {
		return model.SessionRecord{}, model.ErrSessionNotFound
	}
	return *record, nil
}

func (s *SessionStore) Delete(ctx context.Context, kind SessionKind, principalID string) error {
	if err := s.cache.Delete(ctx, SessionKey(kind, principalID)); err != nil {
		return fmt.Errorf("delete %s session: %w", kind, err)
	}
	return nil
}
