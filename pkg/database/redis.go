package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	// KeyPrefix namespaces every key written through Key.
	KeyPrefix string
}

// DefaultRedisConfig returns local development defaults.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:      "localhost",
		Port:      6379,
		KeyPrefix: "travelgo",
	}
}

// Addr returns the Redis address string.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Key joins the configured prefix and parts with ':'.
func (c RedisConfig) Key(parts ...string) string {
	if c.KeyPrefix == "" {
		return strings.Join(parts, ":")
	}
	return c.KeyPrefix + ":" + strings.Join(parts, ":")
}

// NewRedisClient creates a Redis client and pings it, retrying transient
// startup failures like NewPostgresPool. logger may be nil.
func NewRedisClient(ctx context.Context, cfg RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	always := func(error) bool { return true }
	err := withRetry(ctx, "redis ping", logger, always, func() error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
