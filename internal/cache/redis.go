package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// resultKeyPrefix namespaces verdict entries away from the vector
// reference keys sharing the same Redis instance.
const resultKeyPrefix = "result:"

// ErrMiss is returned by a Shared tier when the key is absent, so the
// tiered cache can distinguish a clean miss from a backend failure.
var ErrMiss = errors.New("cache: miss")

// Shared is the L2 contract: a remote key/value store with per-key TTL.
// It exists as an interface so tiered-cache tests can fake the backend
// without a live Redis.
type Shared interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisShared is the production L2 tier, JSON-serialized entries under
// "result:<fingerprint>" keys.
type RedisShared struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisShared wraps an existing client (the same connection the vector
// reference store uses). Non-positive ttl falls back to DefaultL2TTL.
func NewRedisShared(client *redis.Client, ttl time.Duration) *RedisShared {
	if ttl <= 0 {
		ttl = DefaultL2TTL
	}
	return &RedisShared{client: client, ttl: ttl}
}

func (s *RedisShared) Get(ctx context.Context, key string) (Entry, error) {
	raw, err := s.client.Get(ctx, resultKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, ErrMiss
		}
		return Entry{}, fmt.Errorf("cache.RedisShared.Get: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, fmt.Errorf("cache.RedisShared.Get: decode: %w", err)
	}
	return entry, nil
}

func (s *RedisShared) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache.RedisShared.Set: encode: %w", err)
	}
	if err := s.client.Set(ctx, resultKeyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache.RedisShared.Set: %w", err)
	}
	return nil
}

func (s *RedisShared) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, resultKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("cache.RedisShared.Delete: %w", err)
	}
	return nil
}
