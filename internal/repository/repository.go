// Package repository defines the persistence interfaces used by the service
// layer. Implementations live in the postgres and redis subpackages.
package repository

import (
	"context"
	"time"

	"github.com/utafrali/TravelGo/internal/authz"
	"github.com/utafrali/TravelGo/internal/dashboard"
	"github.com/utafrali/TravelGo/internal/domain"
)

// PackageRepository reads the package catalog.
type PackageRepository interface {
	// ListApproved returns every approved package, newest first.
	ListApproved(ctx context.Context) ([]domain.Package, error)

	// GetByID returns a package regardless of approval. Callers gate
	// visibility with authz.CanPreview.
	GetByID(ctx context.Context, id string) (*domain.Package, error)

	// ListBySeller returns all of a seller's packages, approved or not.
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Package, error)

	// GetFeatures returns the feature flags of a package, or ErrNotFound.
	GetFeatures(ctx context.Context, packageID string) (*domain.PackageFeatures, error)
}

// BookingRepository persists bookings.
type BookingRepository interface {
	// Create inserts b unless a booking with the same idempotency key
	// exists. On replay b is overwritten with the stored booking and
	// created is false.
	Create(ctx context.Context, b *domain.Booking) (created bool, err error)

	// GetByID returns a booking joined with its package and buyer.
	GetByID(ctx context.Context, id string) (*domain.BookingRecord, error)

	// ListBySeller returns the bookings on a seller's packages, newest first.
	ListBySeller(ctx context.Context, sellerID string) ([]domain.BookingRecord, error)

	// ListByUser returns a buyer's bookings, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.BookingRecord, error)
}

// ReviewRepository persists reviews.
type ReviewRepository interface {
	// Create inserts r unless a review with the same idempotency key
	// exists, with the same replay contract as BookingRepository.Create.
	Create(ctx context.Context, r *domain.Review) (created bool, err error)

	// ListByPackage returns a package's reviews with their authors, newest first.
	ListByPackage(ctx context.Context, packageID string) ([]domain.Review, error)

	// Ratings returns every rating given to a package.
	Ratings(ctx context.Context, packageID string) ([]int, error)
}

// ProfileRepository persists marketplace profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Upsert(ctx context.Context, p *domain.Profile) error
}

// SessionRepository stores live sessions. Get returns ErrNotFound for an
// unknown or expired session.
type SessionRepository interface {
	Save(ctx context.Context, s *authz.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*authz.Session, error)
	Delete(ctx context.Context, id string) error
}

// DashboardCache caches computed seller summaries. Get returns ErrNotFound
// on a miss.
type DashboardCache interface {
	Get(ctx context.Context, sellerID string) (*dashboard.Summary, error)
	Set(ctx context.Context, sellerID string, s *dashboard.Summary) error
	Invalidate(ctx context.Context, sellerID string) error
}
