package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/exam-studio/internal/cache"
	"github.com/SAP-F-2025/exam-studio/internal/exam"
)

// DefaultTTL is how long an untouched in-progress session survives.
const DefaultTTL = 2 * time.Hour

const keyPrefix = "exam_session:"

// ErrNotFound means the session never existed, was abandoned or expired.
var ErrNotFound = errors.New("exam session not found")

// Store keeps active exam sessions. Every Save refreshes the TTL, so a session
// expires only after TTL of inactivity.
type Store interface {
	Get(ctx context.Context, id string) (*exam.Session, error)
	Save(ctx context.Context, session *exam.Session) error
	Delete(ctx context.Context, id string) error
}

type cacheStore struct {
	cache cache.CacheService
	ttl   time.Duration
}

func NewStore(c cache.CacheService, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &cacheStore{cache: c, ttl: ttl}
}

func (s *cacheStore) Get(ctx context.Context, id string) (*exam.Session, error) {
	var session exam.Session
	if err := s.cache.Get(ctx, key(id), &session); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return &session, nil
}

func (s *cacheStore) Save(ctx context.Context, session *exam.Session) error {
	if err := s.cache.Set(ctx, key(session.ID), session, s.ttl); err != nil {
		return fmt.Errorf("failed to store session %s: %w", session.ID, err)
	}
	return nil
}

func (s *cacheStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, key(id))
}

func key(id string) string {
	return keyPrefix + id
}
