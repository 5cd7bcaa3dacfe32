package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// maxHandlerRetries bounds handler attempts before a message is dead-lettered.
const maxHandlerRetries = 3

// Handler processes a single event.
type Handler func(ctx context.Context, event *Event) error

// messageReader is the subset of *kafka.Reader the consumer depends on.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// deadLetterer receives messages whose handler never succeeded.
type deadLetterer interface {
	Publish(ctx context.Context, msg kafka.Message, lastErr error, group string) error
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	MinBytes int
	MaxBytes int
}

// Consumer reads events from one topic as part of a consumer group.
type Consumer struct {
	reader    messageReader
	dlq       deadLetterer
	logger    *slog.Logger
	handler   Handler
	topic     string
	group     string
	backoff   time.Duration
	closeOnce sync.Once
}

// NewConsumer creates a consumer. dlq may be nil, in which case failed
// messages are logged and committed.
func NewConsumer(cfg ConsumerConfig, handler Handler, dlq *DLQProducer, logger *slog.Logger) *Consumer {
	if cfg.MinBytes == 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 10 << 20
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	})

	c := newConsumer(r, cfg.Topic, cfg.GroupID, handler, logger)
	if dlq != nil {
		c.dlq = dlq
	}
	return c
}

func newConsumer(r messageReader, topic, group string, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:  r,
		logger:  logger,
		handler: handler,
		topic:   topic,
		group:   group,
		backoff: 100 * time.Millisecond,
	}
}

// Start consumes messages until ctx is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started", slog.String("topic", c.topic), slog.String("group", c.group))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("consumer stopping", slog.String("topic", c.topic))
				return nil
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			continue
		}

		if !c.process(ctx, msg) {
			return nil
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit message", slog.String("error", err.Error()))
		}
	}
}

// process handles one message with retries. It reports false only when ctx
// was canceled mid-retry, in which case the message is left uncommitted.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to unmarshal event",
			slog.String("error", err.Error()),
			slog.String("topic", msg.Topic),
		)
		c.deadLetter(ctx, msg, err)
		return true
	}

	ctx = extractTrace(ctx, &msg)
	start := time.Now()
	defer func() {
		consumerDuration.WithLabelValues(c.topic, c.group).Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for attempt := 1; attempt <= maxHandlerRetries; attempt++ {
		lastErr = c.handler(ctx, event)
		if lastErr == nil {
			consumerProcessed.WithLabelValues(c.topic, c.group).Inc()
			return true
		}

		c.logger.Warn("handler failed",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.String("error", lastErr.Error()),
			slog.Int64("offset", msg.Offset),
			slog.Int("attempt", attempt),
		)
		if attempt < maxHandlerRetries {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}
	}

	consumerFailed.WithLabelValues(c.topic, c.group).Inc()
	c.deadLetter(ctx, msg, lastErr)
	return true
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.dlq == nil {
		c.logger.Error("dropping unprocessable message",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
		)
		return
	}
	if err := c.dlq.Publish(ctx, msg, cause, c.group); err != nil {
		c.logger.Error("failed to dead-letter message", slog.String("error", err.Error()))
	}
}

// Close closes the consumer. It is safe to call multiple times.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}
