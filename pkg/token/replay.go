package token

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayGuard records consumed token ids so a token can be accepted exactly
// once. Entries only need to live as long as the token itself - an expired
// token fails verification before the guard is consulted.
type ReplayGuard interface {
	// MarkUsed records the token id and reports whether this was its first
	// use. The entry may be dropped after ttl.
	MarkUsed(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
}

// MemoryGuard is a ReplayGuard backed by a map. Suitable for tests and
// single-process deployments; it does not survive restarts.
type MemoryGuard struct {
	clock Clock

	mu   sync.Mutex
	used map[string]time.Time
}

// NewMemoryGuard creates an in-memory replay guard. A nil clock defaults to
// the system clock.
func NewMemoryGuard(clock Clock) *MemoryGuard {
	if clock == nil {
		clock = SystemClock{}
	}
	return &MemoryGuard{
		clock: clock,
		used:  make(map[string]time.Time),
	}
}

func (g *MemoryGuard) MarkUsed(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	now := g.clock.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	// Purge expired entries so the map tracks only live tokens.
	for id, deadline := range g.used {
		if now.After(deadline) {
			delete(g.used, id)
		}
	}

	if _, seen := g.used[tokenID]; seen {
		return false, nil
	}

	g.used[tokenID] = now.Add(ttl)
	return true, nil
}

// redisGuardKeyPrefix namespaces guard entries in a shared Redis keyspace.
const redisGuardKeyPrefix = "token:used:"

// RedisGuard is a ReplayGuard backed by Redis SETNX with a token-lifetime
// TTL, giving single-use semantics across processes.
type RedisGuard struct {
	client redis.UniversalClient
}

// NewRedisGuard creates a Redis-backed replay guard.
func NewRedisGuard(client redis.UniversalClient) *RedisGuard {
	return &RedisGuard{client: client}
}

func (g *RedisGuard) MarkUsed(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	// Redis rejects non-positive expirations; clamp so a token consumed at
	// the very edge of its window still burns.
	if ttl <= 0 {
		ttl = time.Second
	}

	first, err := g.client.SetNX(ctx, redisGuardKeyPrefix+tokenID, 1, ttl).Result()
	if err != nil {
		return false, err
	}
	return first, nil
}
