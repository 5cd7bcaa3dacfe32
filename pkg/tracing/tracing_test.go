package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracer_DisabledStillInstallsPropagator(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), DefaultConfig("travelgo"))
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	fields := otel.GetTextMapPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
	assert.Contains(t, fields, "baggage")
}

func TestInitTracer_Enabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := DefaultConfig("travelgo")
	cfg.Enabled = true
	cfg.OTLPEndpoint = "127.0.0.1:0"

	shutdown, err := InitTracer(context.Background(), cfg)
	require.NoError(t, err)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate    float64
		sampled bool
	}{
		{1, true},
		{2, true},
		{0, false},
		{-1, false},
	}
	for _, tt := range tests {
		rec := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(Sampler(tt.rate)), sdktrace.WithSpanProcessor(rec))

		_, span := tp.Tracer("test").Start(context.Background(), "op")
		assert.Equal(t, tt.sampled, span.SpanContext().IsSampled(), "rate %v", tt.rate)
		span.End()
	}

	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased")
}
