package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/utafrali/TravelGo/internal/authz"
	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/internal/repository"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// SellerService serves the seller's own catalog and booking export.
type SellerService struct {
	packages repository.PackageRepository
	bookings repository.BookingRepository
	logger   *slog.Logger
}

// NewSellerService creates a new seller service.
func NewSellerService(packages repository.PackageRepository, bookings repository.BookingRepository, logger *slog.Logger) *SellerService {
	return &SellerService{packages: packages, bookings: bookings, logger: logger}
}

// Packages lists every package of the session seller, approved or not.
func (s *SellerService) Packages(ctx context.Context, sess *authz.Session) ([]domain.Package, error) {
	if err := authz.RequireSeller(sess); err != nil {
		return nil, err
	}
	packages, err := s.packages.ListBySeller(ctx, sess.UserID)
	if err != nil {
		return nil, upstream("list seller packages", err)
	}
	return packages, nil
}

// ExportBookings renders the bookings on the seller's packages as CSV.
func (s *SellerService) ExportBookings(ctx context.Context, sess *authz.Session) ([]byte, error) {
	if err := authz.RequireSeller(sess); err != nil {
		return nil, err
	}
	records, err := s.bookings.ListBySeller(ctx, sess.UserID)
	if err != nil {
		return nil, upstream("list seller bookings", err)
	}

	rows := make([]domain.BookingExportRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, exportRow(rec))
	}

	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("marshal bookings csv: %w", err))
	}
	s.logger.InfoContext(ctx, "seller bookings exported",
		slog.String("seller_id", sess.UserID),
		slog.Int("rows", len(rows)),
	)
	return out, nil
}

func exportRow(rec domain.BookingRecord) domain.BookingExportRow {
	row := domain.BookingExportRow{
		BookingID:    rec.ID,
		CreatedAt:    rec.CreatedAt.UTC().Format(time.RFC3339),
		PackageID:    rec.PackageID,
		Destination:  rec.Destination,
		SelectedDate: rec.SelectedDate.String(),
		Travelers:    rec.Travelers,
		Status:       rec.Status,
	}
	if pkg, ok := rec.Package.First(); ok {
		row.PackageTitle = pkg.Title
		row.UnitPrice = pkg.Price
		row.Revenue = pkg.Price * float64(rec.Travelers)
	}
	if buyer, ok := rec.Buyer.First(); ok {
		row.BuyerName = buyer.Name
		row.BuyerEmail = buyer.Email
	}
	return row
}
