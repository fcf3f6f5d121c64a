package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the metric instruments.
type Metrics struct {
	compileCount metric.Int64Counter
	cacheHits    metric.Int64Counter
	evalDuration metric.Float64Histogram
	errorCount   metric.Int64Counter
}

// NewMetrics creates instruments with the given MeterProvider.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	return newMetrics(mp.Meter(MeterName))
}

func newMetrics(meter metric.Meter) *Metrics {
	m := &Metrics{}
	var err error

	m.compileCount, err = meter.Int64Counter(
		"bindexpr.compile.count",
		metric.WithDescription("Number of expressions compiled from source"),
		metric.WithUnit("{expression}"),
	)
	if err != nil {
		m.compileCount, _ = meter.Int64Counter("bindexpr.compile.count")
	}

	m.cacheHits, err = meter.Int64Counter(
		"bindexpr.cache.hits",
		metric.WithDescription("Number of compiles served from the expression cache"),
		metric.WithUnit("{expression}"),
	)
	if err != nil {
		m.cacheHits, _ = meter.Int64Counter("bindexpr.cache.hits")
	}

	m.evalDuration, err = meter.Float64Histogram(
		"bindexpr.evaluate.duration",
		metric.WithDescription("Duration of expression evaluation in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.evalDuration, _ = meter.Float64Histogram("bindexpr.evaluate.duration")
	}

	m.errorCount, err = meter.Int64Counter(
		"bindexpr.error.count",
		metric.WithDescription("Number of failed compiles and evaluations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.errorCount, _ = meter.Int64Counter("bindexpr.error.count")
	}

	return m
}

// RecordCompile records a compile, either from source or from the cache.
func (m *Metrics) RecordCompile(ctx context.Context, hit bool) {
	if hit {
		m.cacheHits.Add(ctx, 1)
		return
	}
	m.compileCount.Add(ctx, 1)
}

// RecordEvaluate records the duration of an evaluation.
func (m *Metrics) RecordEvaluate(ctx context.Context, duration time.Duration) {
	m.evalDuration.Record(ctx, float64(duration.Microseconds())/1000)
}

// RecordError records a failed operation.
func (m *Metrics) RecordError(ctx context.Context, operation, errorType string) {
	m.errorCount.Add(ctx, 1, metric.WithAttributes(
		OperationAttr(operation),
		attribute.String(AttrErrorType, errorType),
	))
}
