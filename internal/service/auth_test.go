package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/TravelGo/internal/authz"
	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/internal/identity"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

type authFixture struct {
	identity *mockIdentityProvider
	profiles *mockProfileRepository
	sessions *mockSessionManager
	svc      *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		identity: new(mockIdentityProvider),
		profiles: new(mockProfileRepository),
		sessions: new(mockSessionManager),
	}
	f.svc = NewAuthService(f.identity, f.profiles, f.sessions, testLogger())
	return f
}

func TestAuthSignUp_Seller(t *testing.T) {
	f := newAuthFixture()
	expires := time.Now().Add(time.Hour)
	company := "Sunny Trips"

	f.identity.On("SignUp", mock.Anything, identity.SignUpInput{
		Email:    "trips@example.com",
		Password: "s3cret!",
		Metadata: map[string]string{"role": "seller", "company_name": company},
	}).Return(&identity.User{ID: "u-1", Email: "trips@example.com"}, nil)
	f.profiles.On("Upsert", mock.Anything, mock.MatchedBy(func(p *domain.Profile) bool {
		return p.ID == "u-1" && p.Role == domain.RoleSeller && p.UserName == "trips" &&
			p.Name == "trips@example.com" && p.CompanyName != nil && *p.CompanyName == company
	})).Return(nil)
	f.sessions.On("Create", mock.Anything, mock.AnythingOfType("*domain.Profile")).
		Return("tok", &authz.Session{ID: "s-1", UserID: "u-1", ExpiresAt: expires}, nil)

	res, err := f.svc.SignUp(context.Background(), SignUpInput{
		Email:       " trips@example.com ",
		Password:    "s3cret!",
		Role:        domain.RoleSeller,
		CompanyName: &company,
	})
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, expires, res.ExpiresAt)
	assert.Equal(t, domain.RoleSeller, res.Profile.Role)
	f.profiles.AssertExpectations(t)
}

func TestAuthSignUp_InvalidRole(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.SignUp(context.Background(), SignUpInput{Email: "a@example.com", Password: "x", Role: "admin"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	f.identity.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything)
}

func TestAuthSignUp_ProviderConflictPassesThrough(t *testing.T) {
	f := newAuthFixture()
	f.identity.On("SignUp", mock.Anything, mock.Anything).Return(nil, apperrors.Conflict("user already registered"))

	_, err := f.svc.SignUp(context.Background(), SignUpInput{Email: "a@example.com", Password: "x"})
	assert.Equal(t, 409, apperrors.HTTPStatus(err))
}

func TestAuthSignIn_ExistingProfile(t *testing.T) {
	f := newAuthFixture()
	profile := &domain.Profile{ID: "u-1", Email: "asha@example.com", Role: domain.RoleUser}
	f.identity.On("SignIn", mock.Anything, "asha@example.com", "pw").Return(&identity.User{ID: "u-1", Email: "asha@example.com"}, nil)
	f.profiles.On("GetByID", mock.Anything, "u-1").Return(profile, nil)
	f.sessions.On("Create", mock.Anything, profile).Return("tok", &authz.Session{ID: "s-1"}, nil)

	res, err := f.svc.SignIn(context.Background(), "asha@example.com", "pw")
	require.NoError(t, err)
	assert.Same(t, profile, res.Profile)
	f.profiles.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAuthSignIn_MissingProfileCreatesDefault(t *testing.T) {
	f := newAuthFixture()
	f.identity.On("SignIn", mock.Anything, "ravi@example.com", "pw").Return(&identity.User{ID: "u-2", Email: "ravi@example.com"}, nil)
	f.profiles.On("GetByID", mock.Anything, "u-2").Return(nil, apperrors.NotFound("profile", "u-2"))
	f.profiles.On("Upsert", mock.Anything, mock.MatchedBy(func(p *domain.Profile) bool {
		return p.Role == domain.RoleUser && p.UserName == "ravi"
	})).Return(nil)
	f.sessions.On("Create", mock.Anything, mock.Anything).Return("tok", &authz.Session{ID: "s-2"}, nil)

	res, err := f.svc.SignIn(context.Background(), "ravi@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u-2", res.Profile.ID)
}

func TestAuthSignIn_BadCredentials(t *testing.T) {
	f := newAuthFixture()
	f.identity.On("SignIn", mock.Anything, mock.Anything, mock.Anything).Return(nil, apperrors.Unauthorized("invalid login credentials"))

	_, err := f.svc.SignIn(context.Background(), "x@example.com", "bad")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	f.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthSignOut(t *testing.T) {
	f := newAuthFixture()
	f.sessions.On("Revoke", mock.Anything, "tok").Return(nil)

	require.NoError(t, f.svc.SignOut(context.Background(), "tok"))
	require.NoError(t, f.svc.SignOut(context.Background(), ""))
	f.sessions.AssertNumberOfCalls(t, "Revoke", 1)
}

func TestAuthMe(t *testing.T) {
	f := newAuthFixture()
	profile := &domain.Profile{ID: "buyer-1"}
	f.profiles.On("GetByID", mock.Anything, "buyer-1").Return(profile, nil)

	got, err := f.svc.Me(context.Background(), buyerSession())
	require.NoError(t, err)
	assert.Same(t, profile, got)

	_, err = f.svc.Me(context.Background(), nil)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}
