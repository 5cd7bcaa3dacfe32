// Package service holds the use cases behind each endpoint. Services fetch
// through repositories, run rows through the filter, pricing, dashboard
// and authz packages, and return view models. They are the only callers of
// repositories.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/internal/pricing"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// EventPublisher publishes domain events after successful mutations.
// *event.Producer satisfies it.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, b *domain.Booking, sellerID string, quote pricing.Quote) error
	PublishReviewCreated(ctx context.Context, r *domain.Review) error
}

// upstream passes through errors that already carry a client-facing
// meaning and marks everything else as a store failure.
func upstream(op string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return apperrors.Upstream(fmt.Errorf("%s: %w", op, err))
}
