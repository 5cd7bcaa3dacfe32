package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/pkg/database"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

const packageColumns = `id, seller_id, title, description, destination, price, discount, duration,
	category, images, itinerary, inclusion, exclusion, cancellation_policy, start_dates,
	is_approved, created_at, updated_at`

// PackageRepository implements repository.PackageRepository using PostgreSQL.
type PackageRepository struct {
	pool database.DBTX
}

// NewPackageRepository creates a new PostgreSQL-backed package repository.
func NewPackageRepository(pool database.DBTX) *PackageRepository {
	return &PackageRepository{pool: pool}
}

// ListApproved returns every approved package, newest first.
func (r *PackageRepository) ListApproved(ctx context.Context) (_ []domain.Package, err error) {
	query := `SELECT ` + packageColumns + `
		FROM packages
		WHERE is_approved = TRUE
		ORDER BY created_at DESC`

	ctx, end := database.TraceQuery(ctx, "ListApprovedPackages", query)
	defer func() { end(err) }()

	return r.queryPackages(ctx, query)
}

// ListBySeller returns all of a seller's packages.
func (r *PackageRepository) ListBySeller(ctx context.Context, sellerID string) (_ []domain.Package, err error) {
	query := `SELECT ` + packageColumns + `
		FROM packages
		WHERE seller_id = $1
		ORDER BY created_at DESC`

	ctx, end := database.TraceQuery(ctx, "ListSellerPackages", query)
	defer func() { end(err) }()

	return r.queryPackages(ctx, query, sellerID)
}

// GetByID retrieves a package by its ID.
func (r *PackageRepository) GetByID(ctx context.Context, id string) (_ *domain.Package, err error) {
	query := `SELECT ` + packageColumns + `
		FROM packages
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetPackage", query)
	defer func() { end(err) }()

	p, err := scanPackage(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("package", id)
		}
		return nil, fmt.Errorf("get package: %w", err)
	}
	return p, nil
}

// GetFeatures returns the feature flags of a package.
func (r *PackageRepository) GetFeatures(ctx context.Context, packageID string) (_ *domain.PackageFeatures, err error) {
	query := `
		SELECT package_id, accommodation, meals, transfers, trip_captain, first_aid,
		       luggage_support, entry_tickets, camping, trek_lead
		FROM package_features
		WHERE package_id = $1`

	ctx, end := database.TraceQuery(ctx, "GetPackageFeatures", query)
	defer func() { end(err) }()

	var f domain.PackageFeatures
	err = r.pool.QueryRow(ctx, query, packageID).Scan(
		&f.PackageID,
		&f.Accommodation,
		&f.Meals,
		&f.Transfers,
		&f.TripCaptain,
		&f.FirstAid,
		&f.LuggageSupport,
		&f.EntryTickets,
		&f.Camping,
		&f.TrekLead,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("package features", packageID)
		}
		return nil, fmt.Errorf("get package features: %w", err)
	}
	return &f, nil
}

func (r *PackageRepository) queryPackages(ctx context.Context, query string, args ...any) ([]domain.Package, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	packages := []domain.Package{}
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package row: %w", err)
		}
		packages = append(packages, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate package rows: %w", err)
	}
	return packages, nil
}

func scanPackage(row pgx.Row) (*domain.Package, error) {
	var (
		p         domain.Package
		itinerary []byte
	)
	if err := row.Scan(
		&p.ID,
		&p.SellerID,
		&p.Title,
		&p.Description,
		&p.Destination,
		&p.Price,
		&p.Discount,
		&p.Duration,
		&p.Category,
		&p.Images,
		&itinerary,
		&p.Inclusion,
		&p.Exclusion,
		&p.CancellationPolicy,
		&p.StartDates,
		&p.IsApproved,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(itinerary) > 0 {
		if err := json.Unmarshal(itinerary, &p.Itinerary); err != nil {
			return nil, fmt.Errorf("unmarshal itinerary: %w", err)
		}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return &p, nil
}
