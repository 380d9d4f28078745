// Package registry guards the one-active-match-per-player invariant.
// The memory implementation covers a single server instance; the redis
// implementation extends the guarantee across instances.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrAlreadyInMatch is returned when a player tries to start a second match.
var ErrAlreadyInMatch = fmt.Errorf("player already has an active match")

// MemoryRegistry is the in-process lock table.
type MemoryRegistry struct {
	mu     sync.Mutex
	active map[string]string // userID -> matchID
}

// NewMemoryRegistry creates an empty in-process registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{active: make(map[string]string)}
}

// Acquire claims a player for a match. A player with an active match is
// rejected, not queued.
func (r *MemoryRegistry) Acquire(ctx context.Context, userID, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.active[userID]; ok {
		return fmt.Errorf("%w (match %s)", ErrAlreadyInMatch, existing)
	}
	r.active[userID] = matchID
	return nil
}

// Release frees a player's claim.
func (r *MemoryRegistry) Release(ctx context.Context, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, userID)
}

// MatchOf returns the match a player is claimed by.
func (r *MemoryRegistry) MatchOf(userID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matchID, ok := r.active[userID]
	return matchID, ok
}

// RedisRegistry claims players via SET NX with a TTL safety net, so a
// crashed instance cannot strand its players forever.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRegistry creates a redis-backed registry. The TTL bounds how long
// a stale claim can survive an instance crash.
func NewRedisRegistry(client *redis.Client, ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisRegistry{client: client, ttl: ttl}
}

func (r *RedisRegistry) key(userID string) string {
	return "shoukan:active:" + userID
}

// Acquire claims a player for a match across all instances.
func (r *RedisRegistry) Acquire(ctx context.Context, userID, matchID string) error {
	ok, err := r.client.SetNX(ctx, r.key(userID), matchID, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("registry acquire %s: %w", userID, err)
	}
	if !ok {
		return ErrAlreadyInMatch
	}
	return nil
}

// Release frees a player's claim.
func (r *RedisRegistry) Release(ctx context.Context, userID string) {
	r.client.Del(ctx, r.key(userID))
}
