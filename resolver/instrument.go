package resolver

import (
	"context"
	"time"

	"github.com/aalemi-dev/observer-lab/observability"
)

// Logger is the subset of logger.Logger the resolver writes to.
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// observeOperation reports an operation to the configured observer, if any.
// resource is the candidate name.
func (r *Resolver) observeOperation(operation, resource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if r == nil || r.observer == nil {
		return
	}
	r.observer.ObserveOperation(observability.OperationContext{
		Component: observability.ComponentResolver,
		Operation: operation,
		Resource:  resource,
		Duration:  duration,
		Error:     err,
		Size:      size,
		Metadata:  metadata,
	})
}

func (r *Resolver) logDebug(ctx context.Context, msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.DebugWithContext(ctx, msg, nil, fields)
	}
}

func (r *Resolver) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (r *Resolver) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
