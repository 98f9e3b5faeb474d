package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"user-service/pkg/logger"
)

func TestInitTracer(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	// The exporter connects lazily, so an unreachable collector is not an error here.
	shutdown, err := InitTracer(context.Background(), "user-service", "test", "127.0.0.1:1")
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_ = shutdown(ctx)
	})

	assert.IsType(t, &sdktrace.TracerProvider{}, otel.GetTracerProvider())

	ctx, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	require.True(t, span.SpanContext().IsValid())
	assert.Equal(t, span.SpanContext().TraceID().String(), logger.GetTraceID(ctx))
}
