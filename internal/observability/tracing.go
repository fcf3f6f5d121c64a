package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry tracer with expression spans.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

// NewTracer creates a new Tracer using the given TracerProvider.
func NewTracer(tp trace.TracerProvider, serviceName string) *Tracer {
	return &Tracer{
		tracer:      tp.Tracer(TracerName),
		serviceName: serviceName,
	}
}

// StartSpan starts a span with the given name and attributes, adding the
// service name if there is one.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if t.serviceName != "" {
		attrs = append(attrs, attribute.String(AttrService, t.serviceName))
	}
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartCompile starts a span for compiling src.
func (t *Tracer) StartCompile(ctx context.Context, src string, prec uint) (context.Context, trace.Span) {
	return t.StartSpan(ctx, "bindexpr.compile",
		OperationAttr(OpCompile),
		SourceAttr(src),
		attribute.Int64(AttrPrec, int64(prec)),
	)
}

// StartEvaluate starts a span for evaluating src.
func (t *Tracer) StartEvaluate(ctx context.Context, src string) (context.Context, trace.Span) {
	return t.StartSpan(ctx, "bindexpr.evaluate",
		OperationAttr(OpEvaluate),
		SourceAttr(src),
	)
}

// RecordError records an error on the span.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// LoggerWithTrace returns a logger enriched with trace context.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return logger
	}
	return logger.With(
		slog.String(LogFieldTraceID, span.SpanContext().TraceID().String()),
		slog.String(LogFieldSpanID, span.SpanContext().SpanID().String()),
	)
}
