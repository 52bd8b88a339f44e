package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"virtual-wallet-service/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// ReplayCache implements ports.ReplayCache using Redis. It fronts the
// transactional idempotency store: entries are written only after the
// database transaction commits, so a cache hit is always a committed record.
type ReplayCache struct {
	client *goredis.Client
	prefix string
}

// NewReplayCache creates a new Redis-backed replay cache.
func NewReplayCache(client *goredis.Client) *ReplayCache {
	return &ReplayCache{
		client: client,
		prefix: "replay:",
	}
}

// Get retrieves a cached idempotency record.
// Returns nil, nil if the key does not exist.
func (c *ReplayCache) Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis replay get: %w", err)
	}

	rec := &domain.IdempotencyRecord{}
	if err := json.Unmarshal(val, rec); err != nil {
		return nil, fmt.Errorf("redis replay decode: %w", err)
	}
	return rec, nil
}

// Set stores a committed idempotency record with TTL.
func (c *ReplayCache) Set(ctx context.Context, key string, rec *domain.IdempotencyRecord, ttl time.Duration) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis replay encode: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis replay set: %w", err)
	}
	return nil
}
