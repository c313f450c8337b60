package metadata

import (
	"context"
	"errors"
	"fmt"
)

// DefaultRootType is the universal top type every class is assignable to.
const DefaultRootType = "java.lang.Object"

// ErrNotFound is returned (wrapped) by every Service when a class name
// cannot be resolved.
var ErrNotFound = errors.New("class metadata not found")

// NotFound wraps ErrNotFound with the class name that could not be resolved.
func NotFound(name string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

// IsNotFound reports whether err signals an unknown class name.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ClassMetadata is the structural fact sheet of a named class, obtained
// without loading the class itself.
//
// Implementations must be immutable: the resolver caches them per name for
// its whole lifetime and reads them from many goroutines.
type ClassMetadata interface {
	// Name returns the fully qualified class name.
	Name() string

	// IsAssignableTo reports whether a value of this class can be used where
	// other is expected (other is this class, a supertype, or the root type).
	IsAssignableTo(other string) bool

	// HasAnnotation reports whether the class declares the given marker.
	HasAnnotation(marker string) bool
}

// Service resolves class names to metadata.
//
// Lookup must be idempotent: repeated calls with the same name yield
// structurally identical results. Unknown names yield an error matching
// ErrNotFound.
//
//go:generate mockgen -source=interface.go -destination=mock_metadata.go -package=metadata
type Service interface {
	Lookup(ctx context.Context, name string) (ClassMetadata, error)
}

// ServiceFunc adapts a plain function to Service.
type ServiceFunc func(ctx context.Context, name string) (ClassMetadata, error)

// Lookup calls f(ctx, name).
func (f ServiceFunc) Lookup(ctx context.Context, name string) (ClassMetadata, error) {
	return f(ctx, name)
}
