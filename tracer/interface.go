package tracer

import (
	"context"
)

// Tracer creates spans and moves trace context across process boundaries.
// *TracerClient implements it.
type Tracer interface {
	// StartSpan starts a span named name as a child of the span in ctx, if
	// any. Callers must End the returned span.
	StartSpan(ctx context.Context, name string) (context.Context, Span)

	// GetCarrier renders the trace context of ctx as string headers, for
	// example to attach to an outgoing Kafka message.
	GetCarrier(ctx context.Context) map[string]string

	// SetCarrierOnContext continues the trace described by carrier.
	SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context
}

// Span is a single traced operation.
type Span interface {
	End()

	// SetAttributes attaches key/value pairs. Values that are not strings,
	// integers, floats or booleans are stored in their string form.
	SetAttributes(attrs map[string]interface{})

	// RecordError records err and marks the span failed.
	RecordError(err error)
}
