// Package observability provides OpenTelemetry instrumentation for compiling
// and evaluating expressions.
//
// Everything is opt-in. Without configured providers, no-op implementations
// are used.
package observability

import "go.opentelemetry.io/otel/attribute"

const (
	// TracerName is the instrumentation name for tracing.
	TracerName = "github.com/zephyrtronium/bindexpr"
	// MeterName is the instrumentation name for metrics.
	MeterName = "github.com/zephyrtronium/bindexpr"
)

// Attribute keys.
const (
	AttrService   = "service.name"
	AttrSource    = "bindexpr.source"
	AttrPrec      = "bindexpr.prec"
	AttrCacheHit  = "bindexpr.cache_hit"
	AttrVarCount  = "bindexpr.vars"
	AttrFuncCount = "bindexpr.funcs"
	AttrOperation = "bindexpr.operation"
	AttrErrorType = "error.type"
)

// Operation names.
const (
	OpCompile  = "compile"
	OpEvaluate = "evaluate"
)

// Log fields for trace correlation.
const (
	LogFieldTraceID = "trace_id"
	LogFieldSpanID  = "span_id"
)

// SourceAttr returns an attribute holding expression source text.
func SourceAttr(src string) attribute.KeyValue {
	return attribute.String(AttrSource, src)
}

// OperationAttr returns an attribute naming the operation.
func OperationAttr(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// CacheHitAttr returns an attribute recording whether a compile hit the cache.
func CacheHitAttr(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrCacheHit, hit)
}

// VarCountAttr returns an attribute holding the number of distinct variables
// in an expression.
func VarCountAttr(n int) attribute.KeyValue {
	return attribute.Int(AttrVarCount, n)
}

// FuncCountAttr returns an attribute holding the number of distinct function
// signatures in an expression.
func FuncCountAttr(n int) attribute.KeyValue {
	return attribute.Int(AttrFuncCount, n)
}
