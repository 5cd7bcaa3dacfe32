package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/internal/pricing"
	pkgkafka "github.com/utafrali/TravelGo/pkg/kafka"
)

// Topics the service publishes to.
var (
	TopicBookings = pkgkafka.Topic("bookings")
	TopicReviews  = pkgkafka.Topic("reviews")
)

// Event types.
const (
	TypeBookingCreated = "booking.created"
	TypeReviewCreated  = "review.created"
)

// Aggregate types.
const (
	AggregateBooking = "booking"
	AggregateReview  = "review"
)

// Source identifies events originating from this service.
const Source = "travelgo-api"

// BookingCreatedData is the payload of a booking.created event.
type BookingCreatedData struct {
	BookingID    string  `json:"booking_id"`
	PackageID    string  `json:"package_id"`
	SellerID     string  `json:"seller_id"`
	UserID       string  `json:"user_id"`
	Travelers    int     `json:"travelers"`
	SelectedDate string  `json:"selected_date"`
	Total        float64 `json:"total"`
}

// ReviewCreatedData is the payload of a review.created event.
type ReviewCreatedData struct {
	ReviewID  string `json:"review_id"`
	PackageID string `json:"package_id"`
	ProfileID string `json:"profile_id"`
	Rating    int    `json:"rating"`
}

// Producer publishes marketplace domain events.
type Producer struct {
	kafka  pkgkafka.Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishBookingCreated publishes a booking.created event.
func (p *Producer) PublishBookingCreated(ctx context.Context, b *domain.Booking, sellerID string, quote pricing.Quote) error {
	data := BookingCreatedData{
		BookingID:    b.ID,
		PackageID:    b.PackageID,
		SellerID:     sellerID,
		UserID:       b.UserID,
		Travelers:    b.Travelers,
		SelectedDate: b.SelectedDate.String(),
		Total:        quote.DiscountedTotal,
	}

	event, err := pkgkafka.NewEvent(TypeBookingCreated, b.ID, AggregateBooking, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", TypeBookingCreated, err)
	}
	event.WithMetadata("seller_id", sellerID)

	if err := p.kafka.Publish(ctx, TopicBookings, event); err != nil {
		return fmt.Errorf("publish %s event: %w", TypeBookingCreated, err)
	}

	p.logger.InfoContext(ctx, "published booking.created event",
		slog.String("booking_id", b.ID),
		slog.String("event_id", event.EventID),
	)
	return nil
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, r *domain.Review) error {
	data := ReviewCreatedData{
		ReviewID:  r.ID,
		PackageID: r.PackageID,
		ProfileID: r.ProfileID,
		Rating:    r.Rating,
	}

	event, err := pkgkafka.NewEvent(TypeReviewCreated, r.ID, AggregateReview, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", TypeReviewCreated, err)
	}

	if err := p.kafka.Publish(ctx, TopicReviews, event); err != nil {
		return fmt.Errorf("publish %s event: %w", TypeReviewCreated, err)
	}

	p.logger.InfoContext(ctx, "published review.created event",
		slog.String("review_id", r.ID),
		slog.String("event_id", event.EventID),
	)
	return nil
}
