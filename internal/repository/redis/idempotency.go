package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/TravelGo/pkg/database"
)

// IdempotencyStore implements kafka.IdempotencyStore with Redis so that
// every replica in a consumer group shares the processed set.
type IdempotencyStore struct {
	client redis.Cmdable
	keys   database.RedisConfig
	group  string
	ttl    time.Duration
}

// NewIdempotencyStore creates a store scoped to one consumer group.
func NewIdempotencyStore(client redis.Cmdable, keys database.RedisConfig, group string, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, keys: keys, group: group, ttl: ttl}
}

func (s *IdempotencyStore) key(eventID string) string {
	return s.keys.Key("processed", s.group, eventID)
}

func (s *IdempotencyStore) Contains(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists processed event: %w", err)
	}
	return n > 0, nil
}

func (s *IdempotencyStore) Add(ctx context.Context, eventID string) error {
	if err := s.client.SetNX(ctx, s.key(eventID), 1, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis setnx processed event: %w", err)
	}
	return nil
}
