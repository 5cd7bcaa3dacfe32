package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/mock"

	"github.com/utafrali/TravelGo/internal/authz"
	"github.com/utafrali/TravelGo/internal/dashboard"
	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/internal/identity"
	"github.com/utafrali/TravelGo/internal/pricing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func buyerSession() *authz.Session {
	return &authz.Session{ID: "sess-1", UserID: "buyer-1", Email: "asha@example.com", Role: domain.RoleUser, ExpiresAt: time.Now().Add(time.Hour)}
}

func sellerSession() *authz.Session {
	return &authz.Session{ID: "sess-2", UserID: "seller-1", Email: "trips@example.com", Role: domain.RoleSeller, ExpiresAt: time.Now().Add(time.Hour)}
}

func ptr[T any](v T) *T { return &v }

// --- Mock Package Repository ---

type mockPackageRepository struct {
	mock.Mock
}

func (m *mockPackageRepository) ListApproved(ctx context.Context) ([]domain.Package, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Package), args.Error(1)
}

func (m *mockPackageRepository) GetByID(ctx context.Context, id string) (*domain.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Package), args.Error(1)
}

func (m *mockPackageRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Package, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Package), args.Error(1)
}

func (m *mockPackageRepository) GetFeatures(ctx context.Context, packageID string) (*domain.PackageFeatures, error) {
	args := m.Called(ctx, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PackageFeatures), args.Error(1)
}

// --- Mock Booking Repository ---

type mockBookingRepository struct {
	mock.Mock
}

func (m *mockBookingRepository) Create(ctx context.Context, b *domain.Booking) (bool, error) {
	args := m.Called(ctx, b)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookingRepository) GetByID(ctx context.Context, id string) (*domain.BookingRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRecord), args.Error(1)
}

func (m *mockBookingRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.BookingRecord, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingRecord), args.Error(1)
}

func (m *mockBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.BookingRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingRecord), args.Error(1)
}

// --- Mock Review Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, r *domain.Review) (bool, error) {
	args := m.Called(ctx, r)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepository) ListByPackage(ctx context.Context, packageID string) ([]domain.Review, error) {
	args := m.Called(ctx, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Ratings(ctx context.Context, packageID string) ([]int, error) {
	args := m.Called(ctx, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

// --- Mock Profile Repository ---

type mockProfileRepository struct {
	mock.Mock
}

func (m *mockProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *mockProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// --- Mock Dashboard Cache ---

type mockDashboardCache struct {
	mock.Mock
}

func (m *mockDashboardCache) Get(ctx context.Context, sellerID string) (*dashboard.Summary, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dashboard.Summary), args.Error(1)
}

func (m *mockDashboardCache) Set(ctx context.Context, sellerID string, s *dashboard.Summary) error {
	args := m.Called(ctx, sellerID, s)
	return args.Error(0)
}

func (m *mockDashboardCache) Invalidate(ctx context.Context, sellerID string) error {
	args := m.Called(ctx, sellerID)
	return args.Error(0)
}

// --- Mock Event Publisher ---

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishBookingCreated(ctx context.Context, b *domain.Booking, sellerID string, quote pricing.Quote) error {
	args := m.Called(ctx, b, sellerID, quote)
	return args.Error(0)
}

func (m *mockEventPublisher) PublishReviewCreated(ctx context.Context, r *domain.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// --- Mock Identity Provider ---

type mockIdentityProvider struct {
	mock.Mock
}

func (m *mockIdentityProvider) SignUp(ctx context.Context, in identity.SignUpInput) (*identity.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockIdentityProvider) SignIn(ctx context.Context, email, password string) (*identity.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

// --- Mock Session Manager ---

type mockSessionManager struct {
	mock.Mock
}

func (m *mockSessionManager) Create(ctx context.Context, profile *domain.Profile) (string, *authz.Session, error) {
	args := m.Called(ctx, profile)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*authz.Session), args.Error(2)
}

func (m *mockSessionManager) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
