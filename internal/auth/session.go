package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/utafrali/TravelGo/internal/authz"
	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/internal/repository"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
	"github.com/utafrali/TravelGo/pkg/middleware"
)

// Sessions creates, resolves and revokes sessions.
type Sessions struct {
	tokens   *TokenManager
	store    repository.SessionRepository
	profiles repository.ProfileRepository
}

// NewSessions creates a session manager.
func NewSessions(tokens *TokenManager, store repository.SessionRepository) *Sessions {
	return &Sessions{tokens: tokens, store: store}
}

// WithProfiles makes Resolve read the role from the profile store on every
// request, so role changes apply to live sessions. Without it the role
// captured at sign-in holds until the session ends.
func (s *Sessions) WithProfiles(profiles repository.ProfileRepository) *Sessions {
	s.profiles = profiles
	return s
}

// Create starts a session for profile and returns its token.
func (s *Sessions) Create(ctx context.Context, profile *domain.Profile) (string, *authz.Session, error) {
	id := uuid.New().String()
	token, expires, err := s.tokens.Issue(id, profile.ID, profile.Email, profile.Role)
	if err != nil {
		return "", nil, err
	}

	sess := &authz.Session{
		ID:        id,
		UserID:    profile.ID,
		Email:     profile.Email,
		Role:      profile.Role,
		ExpiresAt: expires,
	}
	if err := s.store.Save(ctx, sess, s.tokens.TTL()); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}
	return token, sess, nil
}

// Resolve returns the live session a token refers to. The stored session is
// authoritative: a token whose session was revoked or expired resolves to
// Unauthorized even when its signature is still valid.
func (s *Sessions) Resolve(ctx context.Context, token string) (*authz.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnauthorized, err.Error())
	}

	sess, err := s.store.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("session expired")
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.UserID != claims.UserID {
		return nil, apperrors.Unauthorized("session mismatch")
	}

	if s.profiles != nil {
		profile, err := s.profiles.GetByID(ctx, sess.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.Unauthorized("profile no longer exists")
			}
			return nil, fmt.Errorf("load profile: %w", err)
		}
		sess.Role = profile.Role
	}
	return sess, nil
}

// Revoke deletes the session behind token. Unknown, expired or malformed
// tokens are not an error.
func (s *Sessions) Revoke(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.store.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Resolver adapts Resolve for middleware.Authenticate.
func (s *Sessions) Resolver() middleware.SessionResolver {
	return func(ctx context.Context, token string) (*middleware.Identity, error) {
		sess, err := s.Resolve(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Identity{
			SessionID: sess.ID,
			UserID:    sess.UserID,
			Email:     sess.Email,
			Role:      sess.Role,
			ExpiresAt: sess.ExpiresAt,
		}, nil
	}
}

// FromIdentity converts the identity attached by middleware into the
// session value the authorization checks take. nil stays nil.
func FromIdentity(id *middleware.Identity) *authz.Session {
	if id == nil {
		return nil
	}
	return &authz.Session{
		ID:        id.SessionID,
		UserID:    id.UserID,
		Email:     id.Email,
		Role:      id.Role,
		ExpiresAt: id.ExpiresAt,
	}
}
