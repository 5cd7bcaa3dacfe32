package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/pkg/database"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// The package join is a single object; the buyer join is aggregated into a
// list. domain.Related accepts both.
const bookingRecordSelect = `
	SELECT b.id, b.package_id, b.user_id, b.destination, b.travelers, b.selected_date,
	       b.status, b.created_at,
	       json_build_object('id', p.id, 'title', p.title, 'price', p.price,
	                         'discount', p.discount, 'seller_id', p.seller_id) AS package,
	       (SELECT COALESCE(json_agg(json_build_object('id', pr.id, 'name', pr.name,
	                         'email', pr.email, 'user_name', pr.user_name)), '[]'::json)
	          FROM profiles pr WHERE pr.id = b.user_id) AS buyer
	FROM bookings b
	JOIN packages p ON p.id = b.package_id`

// BookingRepository implements repository.BookingRepository using PostgreSQL.
type BookingRepository struct {
	pool database.DBTX
}

// NewBookingRepository creates a new PostgreSQL-backed booking repository.
func NewBookingRepository(pool database.DBTX) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// Create inserts a booking. A duplicate idempotency key loads the stored
// booking into b instead.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (created bool, err error) {
	query := `
		INSERT INTO bookings (id, package_id, user_id, destination, travelers, selected_date, status, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (idempotency_key) DO NOTHING`

	ctx, end := database.TraceQuery(ctx, "CreateBooking", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query,
		b.ID,
		b.PackageID,
		b.UserID,
		b.Destination,
		b.Travelers,
		b.SelectedDate.Time,
		b.Status,
		b.IdempotencyKey,
		b.CreatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return false, apperrors.NotFound("package", b.PackageID)
		}
		return false, fmt.Errorf("insert booking: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	existing, err := r.getByIdempotencyKey(ctx, b.IdempotencyKey)
	if err != nil {
		return false, err
	}
	*b = *existing
	return false, nil
}

func (r *BookingRepository) getByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error) {
	query := `
		SELECT id, package_id, user_id, destination, travelers, selected_date, status, idempotency_key, created_at
		FROM bookings
		WHERE idempotency_key = $1`

	var (
		b        domain.Booking
		selected time.Time
	)
	err := r.pool.QueryRow(ctx, query, key).Scan(
		&b.ID,
		&b.PackageID,
		&b.UserID,
		&b.Destination,
		&b.Travelers,
		&selected,
		&b.Status,
		&b.IdempotencyKey,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("load replayed booking: %w", err)
	}
	b.SelectedDate = domain.NewDate(selected)
	return &b, nil
}

// GetByID returns a booking with its joins.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (_ *domain.BookingRecord, err error) {
	query := bookingRecordSelect + `
	WHERE b.id = $1`

	ctx, end := database.TraceQuery(ctx, "GetBooking", query)
	defer func() { end(err) }()

	rec, err := scanBookingRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("booking", id)
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return rec, nil
}

// ListBySeller returns bookings on the seller's packages, newest first.
func (r *BookingRepository) ListBySeller(ctx context.Context, sellerID string) (_ []domain.BookingRecord, err error) {
	query := bookingRecordSelect + `
	WHERE p.seller_id = $1
	ORDER BY b.created_at DESC`

	ctx, end := database.TraceQuery(ctx, "ListSellerBookings", query)
	defer func() { end(err) }()

	return r.queryRecords(ctx, query, sellerID)
}

// ListByUser returns a buyer's bookings, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) (_ []domain.BookingRecord, err error) {
	query := bookingRecordSelect + `
	WHERE b.user_id = $1
	ORDER BY b.created_at DESC`

	ctx, end := database.TraceQuery(ctx, "ListUserBookings", query)
	defer func() { end(err) }()

	return r.queryRecords(ctx, query, userID)
}

func (r *BookingRepository) queryRecords(ctx context.Context, query string, arg string) ([]domain.BookingRecord, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	records := []domain.BookingRecord{}
	for rows.Next() {
		rec, err := scanBookingRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}
	return records, nil
}

func scanBookingRecord(row pgx.Row) (*domain.BookingRecord, error) {
	var (
		rec         domain.BookingRecord
		selected    time.Time
		pkg, buyers []byte
	)
	if err := row.Scan(
		&rec.ID,
		&rec.PackageID,
		&rec.UserID,
		&rec.Destination,
		&rec.Travelers,
		&selected,
		&rec.Status,
		&rec.CreatedAt,
		&pkg,
		&buyers,
	); err != nil {
		return nil, err
	}
	rec.SelectedDate = domain.NewDate(selected)

	if err := json.Unmarshal(pkg, &rec.Package); err != nil {
		return nil, fmt.Errorf("unmarshal booking package: %w", err)
	}
	if err := json.Unmarshal(buyers, &rec.Buyer); err != nil {
		return nil, fmt.Errorf("unmarshal booking buyer: %w", err)
	}
	return &rec, nil
}
