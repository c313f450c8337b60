package resolver

import (
	"github.com/aalemi-dev/observer-lab/typespec"
)

// Observer is a registered subscriber as seen by the resolver.
//
// Handles are used as set members and map keys, so implementations must be
// comparable; pointer types are the norm. Both methods must return the same
// values for the lifetime of the registry.
type Observer interface {
	// ObservedType returns the declared event type.
	ObservedType() *typespec.Type

	// RequiredAnnotations returns the markers of which a candidate must carry
	// at least one. Empty means no requirement.
	RequiredAnnotations() []string
}

// Source supplies the ordered observer registry a resolver is built from.
type Source interface {
	Observers() []Observer
}

// SourceFunc adapts a function to Source.
type SourceFunc func() []Observer

// Observers calls f.
func (f SourceFunc) Observers() []Observer {
	return f()
}

// Set is an unordered set of observers returned by Resolve.
type Set map[Observer]struct{}

// Contains reports whether o is in s.
func (s Set) Contains(o Observer) bool {
	_, ok := s[o]
	return ok
}

// Len returns the number of observers in s.
func (s Set) Len() int {
	return len(s)
}

// Slice returns the members of s in unspecified order.
func (s Set) Slice() []Observer {
	out := make([]Observer, 0, len(s))
	for o := range s {
		out = append(out, o)
	}
	return out
}

func (s Set) add(o Observer) {
	s[o] = struct{}{}
}
