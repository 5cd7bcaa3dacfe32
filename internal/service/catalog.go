package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/TravelGo/internal/authz"
	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/internal/explore"
	"github.com/utafrali/TravelGo/internal/pricing"
	"github.com/utafrali/TravelGo/internal/repository"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
	"github.com/utafrali/TravelGo/pkg/pagination"
)

// CatalogService serves package discovery and the package page.
type CatalogService struct {
	packages repository.PackageRepository
	reviews  *ReviewService
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(packages repository.PackageRepository, reviews *ReviewService, logger *slog.Logger) *CatalogService {
	return &CatalogService{packages: packages, reviews: reviews, logger: logger}
}

// List returns one page of the approved packages that match state.
func (s *CatalogService) List(ctx context.Context, state explore.FilterState, page pagination.Params) (pagination.Result[domain.Package], error) {
	if err := state.Validate(); err != nil {
		return pagination.Result[domain.Package]{}, err
	}

	all, err := s.packages.ListApproved(ctx)
	if err != nil {
		return pagination.Result[domain.Package]{}, upstream("list approved packages", err)
	}

	approved := all[:0:0]
	for _, p := range all {
		if p.IsApproved {
			approved = append(approved, p)
		}
	}

	matched := explore.Filter(approved, state)
	return pagination.NewResult(pagination.Slice(matched, page), len(matched), page), nil
}

// visiblePackage loads a package and hides it unless sess may preview it.
func (s *CatalogService) visiblePackage(ctx context.Context, sess *authz.Session, id string) (*domain.Package, error) {
	return loadVisiblePackage(ctx, s.packages, sess, id)
}

func loadVisiblePackage(ctx context.Context, packages repository.PackageRepository, sess *authz.Session, id string) (*domain.Package, error) {
	pkg, err := packages.GetByID(ctx, id)
	if err != nil {
		return nil, upstream("get package", err)
	}
	if !authz.CanPreview(sess, pkg) {
		return nil, apperrors.NotFound("package", id)
	}
	return pkg, nil
}

// Get returns the package page. Features, reviews and the review summary
// are fetched concurrently; a failure in any of them is logged and the part
// is left nil.
func (s *CatalogService) Get(ctx context.Context, sess *authz.Session, id string) (*domain.PackageDetail, error) {
	pkg, err := s.visiblePackage(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	detail := &domain.PackageDetail{Package: pkg}
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		features, err := s.packages.GetFeatures(ctx, id)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				s.degraded(ctx, "features", id, err)
			}
			return
		}
		detail.Features = features
	}()

	go func() {
		defer wg.Done()
		reviews, err := s.reviews.list(ctx, id)
		if err != nil {
			s.degraded(ctx, "reviews", id, err)
			return
		}
		detail.Reviews = reviews
	}()

	go func() {
		defer wg.Done()
		summary, err := s.reviews.Summary(ctx, id)
		if err != nil {
			s.degraded(ctx, "review_summary", id, err)
			return
		}
		detail.ReviewSummary = summary
	}()

	wg.Wait()
	return detail, nil
}

func (s *CatalogService) degraded(ctx context.Context, part, packageID string, err error) {
	degradedReads.WithLabelValues(part).Inc()
	s.logger.WarnContext(ctx, "package detail part unavailable",
		slog.String("part", part),
		slog.String("package_id", packageID),
		slog.String("error", err.Error()),
	)
}

// QuoteView is a price quote for a package, with availability when a date
// was given.
type QuoteView struct {
	PackageID string `json:"package_id"`
	pricing.Quote
	SelectedDate *domain.Date `json:"selected_date,omitempty"`
	Available    *bool        `json:"available,omitempty"`
	StartDates   []string     `json:"start_dates"`
}

// Quote prices travelers on a package. selected is optional; when given,
// the view reports whether it is one of the package's start dates.
func (s *CatalogService) Quote(ctx context.Context, sess *authz.Session, id string, travelers int, selected *time.Time) (*QuoteView, error) {
	if err := pricing.ValidateTravelers(travelers); err != nil {
		return nil, err
	}

	pkg, err := s.visiblePackage(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	offered := s.startDates(ctx, pkg)
	view := &QuoteView{
		PackageID:  pkg.ID,
		Quote:      pricing.Calculate(pkg.Price, pkg.Discount, travelers),
		StartDates: make([]string, 0, len(offered)),
	}
	for _, d := range offered {
		view.StartDates = append(view.StartDates, domain.NewDate(d).String())
	}
	if selected != nil {
		day := domain.NewDate(*selected)
		available := pricing.IsDateAvailable(*selected, offered)
		view.SelectedDate = &day
		view.Available = &available
	}
	return view, nil
}

// startDates parses a package's start dates, logging entries that cannot be
// read. Unreadable dates are never bookable.
func (s *CatalogService) startDates(ctx context.Context, pkg *domain.Package) []time.Time {
	return parseStartDates(ctx, s.logger, pkg)
}

func parseStartDates(ctx context.Context, logger *slog.Logger, pkg *domain.Package) []time.Time {
	offered, err := pricing.ParseStartDates(pkg.StartDates)
	if err != nil {
		logger.WarnContext(ctx, "package has unreadable start dates",
			slog.String("package_id", pkg.ID),
			slog.String("error", err.Error()),
		)
	}
	return offered
}

// Categories returns the category catalog.
func (s *CatalogService) Categories() []domain.Category {
	return domain.Categories()
}
