package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/fasterr/marketplace/internal/infrastructure/redis"
)

// RedisStore backs the durable store with Redis. A write rejected by the
// server's maxmemory policy surfaces as ErrCapacityExceeded so callers keep
// the same "storage full" semantics as the file store.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already-connected client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get retrieves the value for key
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, ok, err := s.client.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return val, ok, nil
}

// Set persists value under key
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value); err != nil {
		if strings.Contains(strings.ToUpper(err.Error()), "OOM") {
			return ErrCapacityExceeded
		}
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

// Remove deletes the key
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}
