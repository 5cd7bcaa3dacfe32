package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"github.com/utafrali/TravelGo/internal/authz"
	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/internal/repository"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// MaxReviewLength bounds the review body.
const MaxReviewLength = 2000

// ReviewService implements review creation, listing and statistics.
type ReviewService struct {
	reviews  repository.ReviewRepository
	packages repository.PackageRepository
	events   EventPublisher
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(reviews repository.ReviewRepository, packages repository.PackageRepository, events EventPublisher, logger *slog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, packages: packages, events: events, logger: logger}
}

// CreateReviewInput holds the parameters for creating a review. ProfileID
// is optional; when set it must be the caller.
type CreateReviewInput struct {
	PackageID      string
	ProfileID      string
	Rating         int
	ReviewText     string
	IdempotencyKey string
}

func validateReview(in *CreateReviewInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.PackageID) == "" {
		fields["package_id"] = "is required"
	}
	if in.Rating < domain.MinRating || in.Rating > domain.MaxRating {
		fields["rating"] = fmt.Sprintf("must be between %d and %d", domain.MinRating, domain.MaxRating)
	}
	if len(in.ReviewText) > MaxReviewLength {
		fields["review_text"] = fmt.Sprintf("must be at most %d characters", MaxReviewLength)
	}
	if len(fields) == 0 {
		return nil
	}
	err := apperrors.Validation("invalid review")
	err.Fields = fields
	return err
}

// Create posts a review as the session user. Sellers are refused. A replayed
// idempotency key returns the original review with created false.
func (s *ReviewService) Create(ctx context.Context, sess *authz.Session, in CreateReviewInput) (_ *domain.Review, created bool, err error) {
	if err := authz.RequireNonSeller(sess); err != nil {
		return nil, false, err
	}
	if in.ProfileID != "" && in.ProfileID != sess.UserID {
		return nil, false, apperrors.Forbidden("reviews can only be posted as yourself")
	}
	if err := validateReview(&in); err != nil {
		return nil, false, err
	}

	if _, err := loadVisiblePackage(ctx, s.packages, sess, in.PackageID); err != nil {
		return nil, false, err
	}

	if in.IdempotencyKey == "" {
		in.IdempotencyKey = uuid.New().String()
	}
	review := &domain.Review{
		ID:             uuid.New().String(),
		PackageID:      in.PackageID,
		ProfileID:      sess.UserID,
		Rating:         in.Rating,
		ReviewText:     strings.TrimSpace(in.ReviewText),
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}

	created, err = s.reviews.Create(ctx, review)
	if err != nil {
		return nil, false, upstream("create review", err)
	}
	if !created {
		if review.ProfileID != sess.UserID || review.PackageID != in.PackageID {
			return nil, false, apperrors.Conflict("idempotency key already used for a different review")
		}
		idempotentReplays.WithLabelValues("review").Inc()
		return review, false, nil
	}

	reviewsCreated.Inc()
	if err := s.events.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("package_id", review.PackageID),
	)
	return review, true, nil
}

// ListForPackage returns the reviews of a package visible to sess.
func (s *ReviewService) ListForPackage(ctx context.Context, sess *authz.Session, packageID string) ([]domain.Review, error) {
	if _, err := loadVisiblePackage(ctx, s.packages, sess, packageID); err != nil {
		return nil, err
	}
	return s.list(ctx, packageID)
}

func (s *ReviewService) list(ctx context.Context, packageID string) ([]domain.Review, error) {
	reviews, err := s.reviews.ListByPackage(ctx, packageID)
	if err != nil {
		return nil, upstream("list reviews", err)
	}
	return reviews, nil
}

// Summary computes the rating statistics of a package.
func (s *ReviewService) Summary(ctx context.Context, packageID string) (*domain.ReviewSummary, error) {
	ratings, err := s.reviews.Ratings(ctx, packageID)
	if err != nil {
		return nil, upstream("list ratings", err)
	}
	return summarizeRatings(ratings)
}

func summarizeRatings(ratings []int) (*domain.ReviewSummary, error) {
	summary := &domain.ReviewSummary{
		TotalCount:   len(ratings),
		Distribution: make(map[int]int, domain.MaxRating),
	}
	for r := domain.MinRating; r <= domain.MaxRating; r++ {
		summary.Distribution[r] = 0
	}
	if len(ratings) == 0 {
		return summary, nil
	}

	data := stats.LoadRawData(ratings)
	for _, r := range ratings {
		summary.Distribution[r]++
	}

	mean, err := data.Mean()
	if err != nil {
		return nil, fmt.Errorf("mean rating: %w", err)
	}
	median, err := data.Median()
	if err != nil {
		return nil, fmt.Errorf("median rating: %w", err)
	}
	if summary.AverageRating, err = stats.Round(mean, 2); err != nil {
		return nil, fmt.Errorf("round mean rating: %w", err)
	}
	summary.MedianRating = median
	return summary, nil
}
