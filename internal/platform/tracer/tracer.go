// Package tracer provides a lightweight tracing abstraction.
//
// Callers depend on the Tracer and Span interfaces rather than on OpenTelemetry
// directly, so tests can run with NoopTracer and production wires OTelTracer.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	// The returned context carries the span for child operations.
	//
	// Example:
	//   ctx, span := tracer.Start(ctx, tracer.SpanReliabilityVerify,
	//       tracer.Int64(tracer.AttrDeltaDays, 180),
	//   )
	//   defer span.End(err)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanReliabilityVerify = "reliability.verify"
	SpanHunterPeriod      = "hunter.period"
	SpanHunterStatus      = "hunter.status"
)

// Attribute keys. Phone numbers never go on spans, only their digest prefix.
const (
	AttrPhoneHashPrefix = "phone.hash_prefix"
	AttrDeltaDays       = "hunter.delta_days"
	AttrStatus          = "reliability.status"
	AttrHasPeriod       = "reliability.has_period"
	AttrTimeout         = "hunter.timeout_ms"
)
