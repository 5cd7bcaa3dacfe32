package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/TravelGo/pkg/logger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.mu.Lock()
	w.msgs = append(w.msgs, msgs...)
	w.mu.Unlock()
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		r.cancel()
		return kafka.Message{}, context.Canceled
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	r.committed = append(r.committed, msgs...)
	r.mu.Unlock()
	return nil
}

func (r *fakeReader) Close() error { return nil }

type recordingDLQ struct {
	msgs []kafka.Message
	errs []error
}

func (d *recordingDLQ) Publish(_ context.Context, msg kafka.Message, lastErr error, _ string) error {
	d.msgs = append(d.msgs, msg)
	d.errs = append(d.errs, lastErr)
	return nil
}

func mustEvent(t *testing.T, eventType string) *Event {
	t.Helper()
	ev, err := NewEvent(eventType, "b-1", "booking", "travelgo", map[string]string{"package_id": "p-1"})
	require.NoError(t, err)
	return ev
}

func mustMessage(t *testing.T, ev *Event) kafka.Message {
	t.Helper()
	data, err := ev.Marshal()
	require.NoError(t, err)
	return kafka.Message{Topic: Topic("bookings"), Value: data}
}

func TestTopicNames(t *testing.T) {
	assert.Equal(t, "travel.bookings", Topic("bookings"))
	assert.Equal(t, "travel.bookings.dlq", DLQTopic(Topic("bookings")))
}

func TestNewEvent_RoundTrip(t *testing.T) {
	ev := mustEvent(t, "booking.created").WithCorrelationID("corr-1").WithMetadata("k", "v")
	data, err := ev.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, ev.EventID, got.EventID)
	assert.Equal(t, "corr-1", got.CorrelationID)
	assert.Equal(t, "v", got.Metadata["k"])

	var payload map[string]string
	require.NoError(t, got.UnmarshalData(&payload))
	assert.Equal(t, "p-1", payload["package_id"])
}

func TestUnmarshalEvent_RequiresType(t *testing.T) {
	_, err := UnmarshalEvent([]byte(`{"event_id":"x"}`))
	assert.Error(t, err)
}

func TestProducer_PublishSetsKeyHeadersAndCorrelation(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, logger: discardLogger()}

	ctx := logger.WithCorrelationID(context.Background(), "req-42")
	require.NoError(t, p.Publish(ctx, Topic("bookings"), mustEvent(t, "booking.created")))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "b-1", string(msg.Key))
	assert.Equal(t, "travel.bookings", msg.Topic)
	carrier := headerCarrier{headers: &msg.Headers}
	assert.Equal(t, "booking.created", carrier.Get("event_type"))
	assert.Equal(t, "req-42", carrier.Get("correlation_id"))
}

func TestProducer_PublishError(t *testing.T) {
	p := &Producer{writer: &fakeWriter{err: errors.New("broker down")}, logger: discardLogger()}
	err := p.Publish(context.Background(), Topic("bookings"), mustEvent(t, "booking.created"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "travel.bookings")
}

func TestProducer_InjectsTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	w := &fakeWriter{}
	p := &Producer{writer: w, logger: discardLogger()}
	require.NoError(t, p.Publish(ctx, Topic("reviews"), mustEvent(t, "review.created")))

	msg := w.msgs[0]
	extracted := trace.SpanContextFromContext(extractTrace(context.Background(), &msg))
	assert.Equal(t, traceID, extracted.TraceID())
}

func TestHeaderCarrier_SetOverwrites(t *testing.T) {
	var headers []kafka.Header
	c := headerCarrier{headers: &headers}
	c.Set("traceparent", "a")
	c.Set("traceparent", "b")

	assert.Len(t, headers, 1)
	assert.Equal(t, "b", c.Get("traceparent"))
	assert.Equal(t, []string{"traceparent"}, c.Keys())
	assert.Empty(t, c.Get("missing"))
}

func TestDLQProducer_AnnotatesMessage(t *testing.T) {
	w := &fakeWriter{}
	d := &DLQProducer{writer: w, logger: discardLogger()}

	src := kafka.Message{Topic: "travel.reviews", Partition: 2, Offset: 17, Value: []byte("{}")}
	require.NoError(t, d.Publish(context.Background(), src, errors.New("boom"), "dashboard"))

	require.Len(t, w.msgs, 1)
	out := w.msgs[0]
	assert.Equal(t, "travel.reviews.dlq", out.Topic)
	c := headerCarrier{headers: &out.Headers}
	assert.Equal(t, "travel.reviews", c.Get("dlq_original_topic"))
	assert.Equal(t, "17", c.Get("dlq_offset"))
	assert.Equal(t, "boom", c.Get("dlq_error"))
	assert.Equal(t, "dashboard", c.Get("dlq_consumer_group"))

	require.NoError(t, d.Close())
	assert.True(t, w.closed)
}

func runConsumer(t *testing.T, handler Handler, msgs ...kafka.Message) (*fakeReader, *recordingDLQ) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &fakeReader{queue: msgs, cancel: cancel}
	dlq := &recordingDLQ{}
	c := newConsumer(r, Topic("bookings"), "dashboard", handler, discardLogger())
	c.dlq = dlq
	c.backoff = time.Millisecond

	require.NoError(t, c.Start(ctx))
	return r, dlq
}

func TestConsumer_CommitsHandledMessages(t *testing.T) {
	var seen []string
	r, dlq := runConsumer(t, func(_ context.Context, ev *Event) error {
		seen = append(seen, ev.EventType)
		return nil
	}, mustMessage(t, mustEvent(t, "booking.created")), mustMessage(t, mustEvent(t, "review.created")))

	assert.Equal(t, []string{"booking.created", "review.created"}, seen)
	assert.Len(t, r.committed, 2)
	assert.Empty(t, dlq.msgs)
}

func TestConsumer_RetriesThenDeadLetters(t *testing.T) {
	calls := 0
	r, dlq := runConsumer(t, func(context.Context, *Event) error {
		calls++
		return errors.New("cache unavailable")
	}, mustMessage(t, mustEvent(t, "booking.created")))

	assert.Equal(t, maxHandlerRetries, calls)
	require.Len(t, dlq.msgs, 1)
	assert.EqualError(t, dlq.errs[0], "cache unavailable")
	assert.Len(t, r.committed, 1)
}

func TestConsumer_RecoversOnRetry(t *testing.T) {
	calls := 0
	_, dlq := runConsumer(t, func(context.Context, *Event) error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	}, mustMessage(t, mustEvent(t, "booking.created")))

	assert.Equal(t, 2, calls)
	assert.Empty(t, dlq.msgs)
}

func TestConsumer_MalformedMessageGoesToDLQ(t *testing.T) {
	called := false
	r, dlq := runConsumer(t, func(context.Context, *Event) error {
		called = true
		return nil
	}, kafka.Message{Topic: Topic("bookings"), Value: []byte("not json")})

	assert.False(t, called)
	assert.Len(t, dlq.msgs, 1)
	assert.Len(t, r.committed, 1)
}

func TestMemoryIdempotencyStore_Expiry(t *testing.T) {
	s := NewMemoryIdempotencyStore(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, s.Add(ctx, "e-1"))
	ok, _ := s.Contains(ctx, "e-1")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = s.Contains(ctx, "e-1")
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

type failingStore struct{}

func (failingStore) Contains(context.Context, string) (bool, error) { return false, errors.New("down") }
func (failingStore) Add(context.Context, string) error              { return errors.New("down") }

func TestIdempotentHandler(t *testing.T) {
	ctx := context.Background()
	ev := mustEvent(t, "booking.created")

	t.Run("skips duplicates", func(t *testing.T) {
		calls := 0
		h := IdempotentHandler(NewMemoryIdempotencyStore(time.Hour), "g", func(context.Context, *Event) error {
			calls++
			return nil
		}, discardLogger())

		require.NoError(t, h(ctx, ev))
		require.NoError(t, h(ctx, ev))
		assert.Equal(t, 1, calls)
	})

	t.Run("failed handling is not recorded", func(t *testing.T) {
		store := NewMemoryIdempotencyStore(time.Hour)
		h := IdempotentHandler(store, "g", func(context.Context, *Event) error {
			return errors.New("nope")
		}, discardLogger())

		require.Error(t, h(ctx, ev))
		assert.Zero(t, store.Len())
	})

	t.Run("store failure still processes", func(t *testing.T) {
		calls := 0
		h := IdempotentHandler(failingStore{}, "g", func(context.Context, *Event) error {
			calls++
			return nil
		}, discardLogger())

		require.NoError(t, h(ctx, ev))
		assert.Equal(t, 1, calls)
	})
}
