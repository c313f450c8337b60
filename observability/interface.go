// Package observability defines the hook every component in this module
// reports its operations through.
//
// Components (the resolver, the metadata catalog, the metadata HTTP client,
// the snapshot loader and the dispatch pipeline) accept an optional Observer
// and call it once per completed operation. Metrics, tracing or audit logging
// are implemented by the application behind that single interface; the
// metrics package ships a Prometheus implementation.
//
// Observer implementations are called concurrently and must be thread-safe.
package observability

import "time"

// Component names reported in OperationContext.Component.
const (
	ComponentResolver = "resolver"
	ComponentCatalog  = "catalog"
	ComponentClient   = "metaclient"
	ComponentRegistry = "registry"
	ComponentDispatch = "dispatch"
)

// Observer receives one notification per completed operation.
type Observer interface {
	// ObserveOperation is called when an operation completes, successfully or not.
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes a completed operation.
type OperationContext struct {
	// Component is one of the Component* constants.
	Component string

	// Operation is what was done.
	// Examples: "resolve", "compile", "lookup", "save", "load_snapshot", "dispatch"
	Operation string

	// Resource is the primary subject of the operation.
	// Examples: candidate class name ("com.example.Widget"), table ("classes"),
	// bucket ("snapshots"), topic ("candidates")
	Resource string

	// SubResource adds optional context, such as an object key or partition.
	SubResource string

	// Duration is the wall time of the operation.
	Duration time.Duration

	// Error is the error returned by the operation; nil on success.
	Error error

	// Size is an operation-specific count: observers matched, rows read,
	// bytes downloaded, message size.
	Size int64

	// Metadata carries extra key/value context.
	// Examples: {"cache_hit": true}, {"universal": 2, "patterns": 14}
	Metadata map[string]interface{}
}
