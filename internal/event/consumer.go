package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/TravelGo/internal/repository"
	pkgkafka "github.com/utafrali/TravelGo/pkg/kafka"
)

// DashboardGroupID is the consumer group of the dashboard invalidator.
const DashboardGroupID = "travelgo-dashboard"

// DashboardInvalidator drops a seller's cached dashboard summary whenever a
// booking on one of their packages is created.
type DashboardInvalidator struct {
	cache  repository.DashboardCache
	logger *slog.Logger
}

// NewDashboardInvalidator creates the handler.
func NewDashboardInvalidator(cache repository.DashboardCache, logger *slog.Logger) *DashboardInvalidator {
	return &DashboardInvalidator{cache: cache, logger: logger}
}

// Handle routes an event by type. Unknown types are ignored.
func (h *DashboardInvalidator) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TypeBookingCreated:
		return h.handleBookingCreated(ctx, event)
	default:
		h.logger.DebugContext(ctx, "ignoring event",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (h *DashboardInvalidator) handleBookingCreated(ctx context.Context, event *pkgkafka.Event) error {
	var data BookingCreatedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.EventType, err)
	}
	if data.SellerID == "" {
		return errors.New("booking.created event has no seller_id")
	}

	if err := h.cache.Invalidate(ctx, data.SellerID); err != nil {
		return fmt.Errorf("invalidate dashboard of seller %s: %w", data.SellerID, err)
	}

	h.logger.InfoContext(ctx, "dashboard cache invalidated",
		slog.String("seller_id", data.SellerID),
		slog.String("booking_id", data.BookingID),
	)
	return nil
}

// NewDashboardConsumer builds the consumer that feeds h from the bookings
// topic. Events are deduplicated by ID through store; failures go to dlq.
func NewDashboardConsumer(brokers []string, h *DashboardInvalidator, store pkgkafka.IdempotencyStore, dlq *pkgkafka.DLQProducer, logger *slog.Logger) *pkgkafka.Consumer {
	handler := pkgkafka.IdempotentHandler(store, DashboardGroupID, h.Handle, logger)
	return pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers: brokers,
		GroupID: DashboardGroupID,
		Topic:   TopicBookings,
	}, handler, dlq, logger)
}
