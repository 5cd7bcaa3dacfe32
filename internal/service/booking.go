package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/TravelGo/internal/authz"
	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/internal/pricing"
	"github.com/utafrali/TravelGo/internal/repository"
	"github.com/utafrali/TravelGo/internal/voucher"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// BookingService implements booking creation and the buyer's booking views.
type BookingService struct {
	bookings repository.BookingRepository
	packages repository.PackageRepository
	events   EventPublisher
	cache    repository.DashboardCache
	signer   *voucher.Signer
	logger   *slog.Logger
}

// NewBookingService creates a new booking service. cache may be nil; when
// set, the seller's cached dashboard is dropped after every new booking.
func NewBookingService(
	bookings repository.BookingRepository,
	packages repository.PackageRepository,
	events EventPublisher,
	cache repository.DashboardCache,
	signer *voucher.Signer,
	logger *slog.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		packages: packages,
		events:   events,
		cache:    cache,
		signer:   signer,
		logger:   logger,
	}
}

// CreateBookingInput holds the parameters for booking a package.
type CreateBookingInput struct {
	PackageID      string
	Travelers      int
	SelectedDate   *time.Time
	IdempotencyKey string
}

// BookingView is a booking together with the quote it was priced at.
type BookingView struct {
	*domain.Booking
	Quote pricing.Quote `json:"quote"`
}

// Create books a package for the session user. The selected date must be
// one of the package's start dates; nothing is written otherwise.
func (s *BookingService) Create(ctx context.Context, sess *authz.Session, in CreateBookingInput) (_ *BookingView, created bool, err error) {
	if err := authz.RequireNonSeller(sess); err != nil {
		return nil, false, err
	}
	if strings.TrimSpace(in.PackageID) == "" {
		e := apperrors.Validation("invalid booking")
		e.Fields = map[string]string{"package_id": "is required"}
		return nil, false, e
	}
	if err := pricing.ValidateTravelers(in.Travelers); err != nil {
		return nil, false, err
	}
	if in.SelectedDate == nil {
		return nil, false, pricing.ErrDateRequired
	}

	pkg, err := s.packages.GetByID(ctx, in.PackageID)
	if err != nil {
		return nil, false, upstream("get package", err)
	}
	if !pkg.IsApproved {
		return nil, false, apperrors.NotFound("package", in.PackageID)
	}
	if err := pricing.CheckBookable(in.SelectedDate, parseStartDates(ctx, s.logger, pkg)); err != nil {
		return nil, false, err
	}

	if in.IdempotencyKey == "" {
		in.IdempotencyKey = uuid.New().String()
	}
	booking := &domain.Booking{
		ID:             uuid.New().String(),
		PackageID:      pkg.ID,
		UserID:         sess.UserID,
		Destination:    pkg.Destination,
		Travelers:      in.Travelers,
		SelectedDate:   domain.NewDate(*in.SelectedDate),
		Status:         domain.BookingStatusPending,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}

	created, err = s.bookings.Create(ctx, booking)
	if err != nil {
		return nil, false, upstream("create booking", err)
	}
	if !created && (booking.UserID != sess.UserID || booking.PackageID != pkg.ID) {
		return nil, false, apperrors.Conflict("idempotency key already used for a different booking")
	}

	view := &BookingView{
		Booking: booking,
		Quote:   pricing.Calculate(pkg.Price, pkg.Discount, booking.Travelers),
	}
	if !created {
		idempotentReplays.WithLabelValues("booking").Inc()
		return view, false, nil
	}

	bookingsCreated.Inc()
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, pkg.SellerID); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate seller dashboard",
				slog.String("seller_id", pkg.SellerID),
				slog.String("error", err.Error()),
			)
		}
	}
	if err := s.events.PublishBookingCreated(ctx, booking, pkg.SellerID, view.Quote); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish booking.created event",
			slog.String("booking_id", booking.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "booking created",
		slog.String("booking_id", booking.ID),
		slog.String("package_id", booking.PackageID),
		slog.Int("travelers", booking.Travelers),
	)
	return view, true, nil
}

// ListMine returns the session user's bookings, newest first.
func (s *BookingService) ListMine(ctx context.Context, sess *authz.Session) ([]domain.BookingRecord, error) {
	if err := authz.RequireAuthenticated(sess); err != nil {
		return nil, err
	}
	records, err := s.bookings.ListByUser(ctx, sess.UserID)
	if err != nil {
		return nil, upstream("list bookings", err)
	}
	return records, nil
}

// Voucher renders the PDF voucher of a booking. Only the buyer may fetch
// it; anyone else gets NotFound.
func (s *BookingService) Voucher(ctx context.Context, sess *authz.Session, id string) (filename string, pdf []byte, err error) {
	if err := authz.RequireAuthenticated(sess); err != nil {
		return "", nil, err
	}

	rec, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return "", nil, upstream("get booking", err)
	}
	if rec.UserID != sess.UserID {
		return "", nil, apperrors.NotFound("booking", id)
	}

	v := voucher.Voucher{
		BookingID:    rec.ID,
		PackageID:    rec.PackageID,
		Destination:  rec.Destination,
		SelectedDate: rec.SelectedDate.String(),
		Status:       rec.Status,
		IssuedAt:     time.Now().UTC(),
	}
	if pkg, ok := rec.Package.First(); ok {
		v.PackageTitle = pkg.Title
		v.Quote = pricing.Calculate(pkg.Price, pkg.Discount, rec.Travelers)
	}
	if buyer, ok := rec.Buyer.First(); ok {
		v.BuyerName = buyer.Name
	}

	pdf, err = voucher.Render(v, s.signer)
	if err != nil {
		return "", nil, apperrors.Internal(fmt.Errorf("render voucher: %w", err))
	}
	return voucher.Filename(v), pdf, nil
}
