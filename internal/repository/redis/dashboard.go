package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/TravelGo/internal/dashboard"
	"github.com/utafrali/TravelGo/pkg/database"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// DashboardCache implements repository.DashboardCache using Redis.
type DashboardCache struct {
	client redis.Cmdable
	keys   database.RedisConfig
	ttl    time.Duration
}

// NewDashboardCache creates a cache whose entries live for ttl.
func NewDashboardCache(client redis.Cmdable, keys database.RedisConfig, ttl time.Duration) *DashboardCache {
	return &DashboardCache{client: client, keys: keys, ttl: ttl}
}

func (c *DashboardCache) key(sellerID string) string {
	return c.keys.Key("dashboard", sellerID)
}

// Get returns the cached summary of a seller.
func (c *DashboardCache) Get(ctx context.Context, sellerID string) (*dashboard.Summary, error) {
	data, err := c.client.Get(ctx, c.key(sellerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("dashboard summary", sellerID)
		}
		return nil, fmt.Errorf("redis get dashboard: %w", err)
	}

	var s dashboard.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal dashboard: %w", err)
	}
	return &s, nil
}

// Set caches a seller's summary.
func (c *DashboardCache) Set(ctx context.Context, sellerID string, s *dashboard.Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal dashboard: %w", err)
	}
	if err := c.client.Set(ctx, c.key(sellerID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set dashboard: %w", err)
	}
	return nil
}

// Invalidate drops a seller's cached summary.
func (c *DashboardCache) Invalidate(ctx context.Context, sellerID string) error {
	if err := c.client.Del(ctx, c.key(sellerID)).Err(); err != nil {
		return fmt.Errorf("redis del dashboard: %w", err)
	}
	return nil
}
