package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/utafrali/TravelGo/internal/authz"
	"github.com/utafrali/TravelGo/internal/dashboard"
	"github.com/utafrali/TravelGo/internal/repository"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// DashboardService computes the seller dashboard, read through a cache that
// the booking consumer invalidates.
type DashboardService struct {
	packages repository.PackageRepository
	bookings repository.BookingRepository
	cache    repository.DashboardCache
	opts     dashboard.Options
	logger   *slog.Logger
}

// NewDashboardService creates a new dashboard service. cache may be nil.
func NewDashboardService(
	packages repository.PackageRepository,
	bookings repository.BookingRepository,
	cache repository.DashboardCache,
	opts dashboard.Options,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{
		packages: packages,
		bookings: bookings,
		cache:    cache,
		opts:     opts,
		logger:   logger,
	}
}

// Summary returns the dashboard of the session seller.
func (s *DashboardService) Summary(ctx context.Context, sess *authz.Session) (*dashboard.Summary, error) {
	if err := authz.RequireSeller(sess); err != nil {
		return nil, err
	}
	sellerID := sess.UserID

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, sellerID)
		switch {
		case err == nil:
			dashboardCache.WithLabelValues("hit").Inc()
			return cached, nil
		case errors.Is(err, apperrors.ErrNotFound):
			dashboardCache.WithLabelValues("miss").Inc()
		default:
			dashboardCache.WithLabelValues("error").Inc()
			s.logger.WarnContext(ctx, "dashboard cache read failed",
				slog.String("seller_id", sellerID),
				slog.String("error", err.Error()),
			)
		}
	}

	packages, err := s.packages.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, upstream("list seller packages", err)
	}
	bookings, err := s.bookings.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, upstream("list seller bookings", err)
	}

	summary := dashboard.SummarizeWith(packages, bookings, s.opts)

	if s.cache != nil {
		if err := s.cache.Set(ctx, sellerID, &summary); err != nil {
			s.logger.WarnContext(ctx, "dashboard cache write failed",
				slog.String("seller_id", sellerID),
				slog.String("error", err.Error()),
			)
		}
	}
	return &summary, nil
}
