package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/utafrali/TravelGo/internal/authz"
	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/internal/identity"
	"github.com/utafrali/TravelGo/internal/repository"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// IdentityProvider authenticates credentials. *identity.Client satisfies it.
type IdentityProvider interface {
	SignUp(ctx context.Context, in identity.SignUpInput) (*identity.User, error)
	SignIn(ctx context.Context, email, password string) (*identity.User, error)
}

// SessionManager issues and revokes sessions. *auth.Sessions satisfies it.
type SessionManager interface {
	Create(ctx context.Context, profile *domain.Profile) (string, *authz.Session, error)
	Revoke(ctx context.Context, token string) error
}

// AuthService signs users up, in and out.
type AuthService struct {
	identity IdentityProvider
	profiles repository.ProfileRepository
	sessions SessionManager
	logger   *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(identity IdentityProvider, profiles repository.ProfileRepository, sessions SessionManager, logger *slog.Logger) *AuthService {
	return &AuthService{identity: identity, profiles: profiles, sessions: sessions, logger: logger}
}

// SignUpInput holds the parameters for creating an account.
type SignUpInput struct {
	Email       string
	Password    string
	Role        string
	CompanyName *string
	PhoneNumber *string
}

// AuthResult is returned by sign-up and sign-in.
type AuthResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   *domain.Profile `json:"profile"`
}

// SignUp creates the account at the identity provider, stores its profile
// and starts a session.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if !domain.IsValidRole(in.Role) {
		e := apperrors.Validation("invalid sign up")
		e.Fields = map[string]string{"role": "must be one of: user seller"}
		return nil, e
	}

	metadata := map[string]string{"role": in.Role}
	if in.CompanyName != nil {
		metadata["company_name"] = *in.CompanyName
	}
	if in.PhoneNumber != nil {
		metadata["phone_number"] = *in.PhoneNumber
	}
	user, err := s.identity.SignUp(ctx, identity.SignUpInput{
		Email:    in.Email,
		Password: in.Password,
		Metadata: metadata,
	})
	if err != nil {
		return nil, upstream("identity sign up", err)
	}

	profile := newProfile(user, in.Role)
	profile.CompanyName = in.CompanyName
	profile.PhoneNumber = in.PhoneNumber
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, upstream("upsert profile", err)
	}

	s.logger.InfoContext(ctx, "user signed up",
		slog.String("user_id", profile.ID),
		slog.String("role", profile.Role),
	)
	return s.startSession(ctx, profile)
}

// SignIn checks credentials with the identity provider and starts a
// session. A user without a profile gets a default buyer profile.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.identity.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, upstream("identity sign in", err)
	}

	profile, err := s.profiles.GetByID(ctx, user.ID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNotFound):
		profile = newProfile(user, domain.RoleUser)
		if err := s.profiles.Upsert(ctx, profile); err != nil {
			return nil, upstream("upsert profile", err)
		}
		s.logger.InfoContext(ctx, "created missing profile on sign in",
			slog.String("user_id", profile.ID),
		)
	default:
		return nil, upstream("get profile", err)
	}

	return s.startSession(ctx, profile)
}

func (s *AuthService) startSession(ctx context.Context, profile *domain.Profile) (*AuthResult, error) {
	token, sess, err := s.sessions.Create(ctx, profile)
	if err != nil {
		return nil, upstream("create session", err)
	}
	return &AuthResult{Token: token, ExpiresAt: sess.ExpiresAt, Profile: profile}, nil
}

// SignOut revokes the session behind token. Signing out twice is not an
// error.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return upstream("revoke session", err)
	}
	return nil
}

// Me returns the profile of the session user.
func (s *AuthService) Me(ctx context.Context, sess *authz.Session) (*domain.Profile, error) {
	if err := authz.RequireAuthenticated(sess); err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, upstream("get profile", err)
	}
	return profile, nil
}

func newProfile(user *identity.User, role string) *domain.Profile {
	return &domain.Profile{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Email,
		UserName: domain.DefaultUserName(user.Email),
		Role:     role,
	}
}
