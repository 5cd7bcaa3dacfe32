package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/TravelGo/internal/authz"
	"github.com/utafrali/TravelGo/pkg/database"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// SessionStore implements repository.SessionRepository using Redis. Each
// session is one JSON value that expires with the session.
type SessionStore struct {
	client redis.Cmdable
	keys   database.RedisConfig
}

// NewSessionStore creates a Redis-backed session store. keys supplies the
// key prefix.
func NewSessionStore(client redis.Cmdable, keys database.RedisConfig) *SessionStore {
	return &SessionStore{client: client, keys: keys}
}

type sessionValue struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *SessionStore) key(id string) string {
	return s.keys.Key("session", id)
}

// Save stores a session for ttl.
func (s *SessionStore) Save(ctx context.Context, sess *authz.Session, ttl time.Duration) error {
	data, err := json.Marshal(sessionValue{
		ID:        sess.ID,
		UserID:    sess.UserID,
		Email:     sess.Email,
		Role:      sess.Role,
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Get loads a session.
func (s *SessionStore) Get(ctx context.Context, id string) (*authz.Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("session", id)
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var v sessionValue
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &authz.Session{
		ID:        v.ID,
		UserID:    v.UserID,
		Email:     v.Email,
		Role:      v.Role,
		ExpiresAt: v.ExpiresAt,
	}, nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
