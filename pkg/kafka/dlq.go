package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// DLQTopic returns the dead-letter topic for a source topic,
// e.g. "travel.bookings" becomes "travel.bookings.dlq".
func DLQTopic(topic string) string {
	return topic + ".dlq"
}

// DLQProducer forwards messages that exhausted their handler retries.
type DLQProducer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewDLQProducer creates a dead-letter producer for the given brokers.
func NewDLQProducer(brokers []string, logger *slog.Logger) *DLQProducer {
	return &DLQProducer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

// Publish copies msg to its dead-letter topic and annotates it with the
// failure cause and its original coordinates.
func (d *DLQProducer) Publish(ctx context.Context, msg kafka.Message, lastErr error, group string) error {
	headers := make([]kafka.Header, 0, len(msg.Headers)+5)
	headers = append(headers, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: "dlq_original_topic", Value: []byte(msg.Topic)},
		kafka.Header{Key: "dlq_partition", Value: []byte(strconv.Itoa(msg.Partition))},
		kafka.Header{Key: "dlq_offset", Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		kafka.Header{Key: "dlq_consumer_group", Value: []byte(group)},
		kafka.Header{Key: "dlq_failed_at", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
	)
	if lastErr != nil {
		headers = append(headers, kafka.Header{Key: "dlq_error", Value: []byte(lastErr.Error())})
	}

	out := kafka.Message{
		Topic:   DLQTopic(msg.Topic),
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
	if err := d.writer.WriteMessages(ctx, out); err != nil {
		return fmt.Errorf("publish to %s: %w", out.Topic, err)
	}

	consumerDLQ.WithLabelValues(msg.Topic, group).Inc()
	d.logger.WarnContext(ctx, "message sent to dead-letter topic",
		slog.String("topic", out.Topic),
		slog.Int64("offset", msg.Offset),
	)
	return nil
}

// Close closes the underlying writer.
func (d *DLQProducer) Close() error {
	return d.writer.Close()
}
