// Package tracing pairs an OpenTelemetry span with the operation's logger.
package tracing

import (
	"context"
	"goal-navigator/pkg/apperr"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrorCodeKey is the span attribute holding the apperr code of a failed operation.
const ErrorCodeKey = attribute.Key("error.code")

type Span struct {
	span   trace.Span
	logger *zap.Logger
	name   string
}

func StartSpan(ctx context.Context, tracer trace.Tracer, logger *zap.Logger, name string, attrs ...attribute.KeyValue) (context.Context, *Span) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))

	return ctx, &Span{
		span:   span,
		logger: logger,
		name:   name,
	}
}

// End closes the span. A non-nil err marks it failed and tags it with the error code.
func (s *Span) End(err error) {
	if err != nil {
		s.span.SetStatus(codes.Error, err.Error())
		s.span.RecordError(err)

		if code := apperr.CodeOf(err); code != "" {
			s.span.SetAttributes(ErrorCodeKey.String(code))
		}

		if s.logger != nil {
			s.logger.Debug("Span finished with error", zap.String("span", s.name), zap.Error(err))
		}
	} else {
		s.span.SetStatus(codes.Ok, "")
	}

	s.span.End()
}

func (s *Span) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

func (s *Span) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

// TraceID returns the hex trace id, or "" when the span is not recording.
func (s *Span) TraceID() string {
	sc := s.span.SpanContext()
	if !sc.HasTraceID() {
		return ""
	}

	return sc.TraceID().String()
}
