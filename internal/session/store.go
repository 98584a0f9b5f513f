package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"portfolio-builder/internal/common/config"
	"portfolio-builder/internal/common/database"
	"portfolio-builder/internal/models"
)

// ErrNotFound is returned when no snapshot exists for a session.
var ErrNotFound = errors.New("session state not found")

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Store keeps the latest SubmissionState of each browser session.
type Store interface {
	Save(ctx context.Context, sessionID string, state models.SubmissionState) error
	Load(ctx context.Context, sessionID string) (models.SubmissionState, error)
	Delete(ctx context.Context, sessionID string) error
	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// NewStore builds the store selected by cfg.Store.
func NewStore(ctx context.Context, cfg config.SessionConfig) (Store, error) {
	ttl := config.GetDuration(cfg.TTL)
	switch cfg.Store {
	case "", StoreMemory:
		return NewMemoryStore(ttl), nil
	case StoreRedis:
		client, err := database.NewRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		return NewRedisStore(client, ttl), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}

type memoryEntry struct {
	state     models.SubmissionState
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Entries expire lazily.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, state models.SubmissionState) error {
	entry := memoryEntry{state: state}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.entries[sessionID] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (models.SubmissionState, error) {
	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()

	if !ok {
		return models.SubmissionState{}, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		_ = s.Delete(context.Background(), sessionID)
		return models.SubmissionState{}, ErrNotFound
	}
	return entry.state, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// RedisStore keeps snapshots in Redis so they survive a restart of the web
// process for as long as the TTL allows.
type RedisStore struct {
	client *database.RedisClient
	ttl    time.Duration
}

func NewRedisStore(client *database.RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string {
	return s.client.Key("session", sessionID, "state")
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, state models.SubmissionState) error {
	return s.client.SetJSON(ctx, s.key(sessionID), state, s.ttl)
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (models.SubmissionState, error) {
	var state models.SubmissionState
	err := s.client.GetJSON(ctx, s.key(sessionID), &state)
	if errors.Is(err, database.ErrNotFound) {
		return models.SubmissionState{}, ErrNotFound
	}
	return state, err
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID))
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
