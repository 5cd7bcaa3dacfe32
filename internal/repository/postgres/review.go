package postgres

import (
	"context"
	"fmt"

	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/pkg/database"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a review. A duplicate idempotency key loads the stored
// review into rv instead.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) (created bool, err error) {
	query := `
		INSERT INTO reviews (id, package_id, profile_id, rating, review_text, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (idempotency_key) DO NOTHING`

	ctx, end := database.TraceQuery(ctx, "CreateReview", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query,
		rv.ID,
		rv.PackageID,
		rv.ProfileID,
		rv.Rating,
		rv.ReviewText,
		rv.IdempotencyKey,
		rv.CreatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return false, apperrors.NotFound("package", rv.PackageID)
		}
		return false, fmt.Errorf("insert review: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var existing domain.Review
	err = r.pool.QueryRow(ctx, `
		SELECT id, package_id, profile_id, rating, review_text, idempotency_key, created_at
		FROM reviews
		WHERE idempotency_key = $1`, rv.IdempotencyKey).Scan(
		&existing.ID,
		&existing.PackageID,
		&existing.ProfileID,
		&existing.Rating,
		&existing.ReviewText,
		&existing.IdempotencyKey,
		&existing.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("load replayed review: %w", err)
	}
	*rv = existing
	return false, nil
}

// ListByPackage returns the reviews of a package with their authors.
func (r *ReviewRepository) ListByPackage(ctx context.Context, packageID string) (_ []domain.Review, err error) {
	query := `
		SELECT r.id, r.package_id, r.profile_id, r.rating, r.review_text, r.created_at,
		       pr.user_name, pr.avatar_url
		FROM reviews r
		LEFT JOIN profiles pr ON pr.id = r.profile_id
		WHERE r.package_id = $1
		ORDER BY r.created_at DESC`

	ctx, end := database.TraceQuery(ctx, "ListPackageReviews", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, packageID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var (
			rv        domain.Review
			userName  *string
			avatarURL *string
		)
		if err := rows.Scan(
			&rv.ID,
			&rv.PackageID,
			&rv.ProfileID,
			&rv.Rating,
			&rv.ReviewText,
			&rv.CreatedAt,
			&userName,
			&avatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		if userName != nil {
			rv.Author = &domain.ReviewAuthor{UserName: *userName, AvatarURL: avatarURL}
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	return reviews, nil
}

// Ratings returns every rating of a package.
func (r *ReviewRepository) Ratings(ctx context.Context, packageID string) (_ []int, err error) {
	query := `SELECT rating FROM reviews WHERE package_id = $1`

	ctx, end := database.TraceQuery(ctx, "ListPackageRatings", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, packageID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	ratings := []int{}
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}
