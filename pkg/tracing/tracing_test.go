package tracing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"

	"goal-navigator/pkg/apperr"
	"goal-navigator/pkg/tracing"
)

func newTracer(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return rec, tp
}

func TestSpanRecordsErrorCode(t *testing.T) {
	rec, tp := newTracer(t)

	_, span := tracing.StartSpan(t.Context(), tp.Tracer("test"), zaptest.NewLogger(t), "Execute",
		attribute.Int("step", 2))
	span.AddEvent("resolving")
	assert.NotEmpty(t, span.TraceID())
	span.End(apperr.Wrap("Execute", apperr.CodeNotFound, errors.New("element not found"), nil))

	ended := rec.Ended()
	require.Len(t, ended, 1)

	got := ended[0]
	assert.Equal(t, "Execute", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Contains(t, got.Attributes(), attribute.Int("step", 2))
	assert.Contains(t, got.Attributes(), tracing.ErrorCodeKey.String(apperr.CodeNotFound))
	require.Len(t, got.Events(), 2)
	assert.Equal(t, "resolving", got.Events()[0].Name)
}

func TestSpanOK(t *testing.T) {
	rec, tp := newTracer(t)

	_, span := tracing.StartSpan(t.Context(), tp.Tracer("test"), nil, "Inspect")
	span.SetAttributes(attribute.Int("elements", 7))
	span.End(nil)

	got := rec.Ended()[0]
	assert.Equal(t, codes.Ok, got.Status().Code)
	assert.Contains(t, got.Attributes(), attribute.Int("elements", 7))
	assert.NotContains(t, got.Attributes(), tracing.ErrorCodeKey.String(""))
}
