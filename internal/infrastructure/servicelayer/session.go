package servicelayer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore caches the B1SESSION cookie between requests. The Service
// Layer holds a per-user login quota, so every process that talks to SAP
// should reuse one session instead of logging in per call.
type SessionStore interface {
	// Get returns the cached session ID, or "" when none is cached
	Get(ctx context.Context) (string, error)
	// Set caches a session ID with a TTL shorter than the B1 session timeout
	Set(ctx context.Context, sessionID string, ttl time.Duration) error
	// Clear drops the cached session after SAP reports it expired
	Clear(ctx context.Context) error
}

// ---------------------------------------------------------------------------
// In-Memory Store
// ---------------------------------------------------------------------------

// MemorySessionStore keeps the session in process memory. Suitable for
// single-instance deployments and tests.
type MemorySessionStore struct {
	mu        sync.RWMutex
	sessionID string
	expiresAt time.Time
}

// NewMemorySessionStore creates an empty in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

// Get returns the cached session if it has not expired
func (s *MemorySessionStore) Get(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sessionID == "" || time.Now().After(s.expiresAt) {
		return "", nil
	}
	return s.sessionID, nil
}

// Set caches a session with its TTL
func (s *MemorySessionStore) Set(_ context.Context, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = sessionID
	s.expiresAt = time.Now().Add(ttl)
	return nil
}

// Clear drops the cached session
func (s *MemorySessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = ""
	s.expiresAt = time.Time{}
	return nil
}

// ---------------------------------------------------------------------------
// Redis Store
// ---------------------------------------------------------------------------

const redisSessionKey = "sap:b1session"

// RedisSessionStore shares the session across API and worker processes
type RedisSessionStore struct {
	client *redis.Client
	key    string
}

// NewRedisSessionStore creates a session store on an existing Redis client.
// The caller retains ownership of the client.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		key:    redisSessionKey,
	}
}

// Get returns the cached session ID, or "" when the key is missing
func (s *RedisSessionStore) Get(ctx context.Context) (string, error) {
	sessionID, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cached session: %w", err)
	}
	return sessionID, nil
}

// Set caches a session ID with the given TTL
func (s *RedisSessionStore) Set(ctx context.Context, sessionID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key, sessionID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache session: %w", err)
	}
	return nil
}

// Clear drops the cached session
func (s *RedisSessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear cached session: %w", err)
	}
	return nil
}

// Interface guards
var (
	_ SessionStore = (*MemorySessionStore)(nil)
	_ SessionStore = (*RedisSessionStore)(nil)
)
