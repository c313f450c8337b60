package resolver

import (
	"strings"

	"github.com/aalemi-dev/observer-lab/metadata"
)

// Pattern is a compiled event-type predicate. The only implementations are
// ExactType and UpperBound.
type Pattern interface {
	// Matches reports whether the candidate described by md satisfies the pattern.
	Matches(md metadata.ClassMetadata) bool

	String() string

	pattern()
}

// ExactType matches a candidate whose name equals Name. Assignability is not
// consulted: a subtype of Name does not match.
type ExactType struct {
	Name string
}

// Matches compares md's name to p.Name.
func (p ExactType) Matches(md metadata.ClassMetadata) bool {
	return md.Name() == p.Name
}

func (p ExactType) String() string {
	return "exact(" + p.Name + ")"
}

func (ExactType) pattern() {}

// UpperBound matches a candidate assignable to every name in Bounds.
// An empty Bounds matches everything.
type UpperBound struct {
	Bounds []string
}

// Matches checks md against each bound in order and stops at the first miss.
func (p UpperBound) Matches(md metadata.ClassMetadata) bool {
	for _, bound := range p.Bounds {
		if !md.IsAssignableTo(bound) {
			return false
		}
	}
	return true
}

func (p UpperBound) String() string {
	if len(p.Bounds) == 0 {
		return "upper(*)"
	}
	return "upper(" + strings.Join(p.Bounds, " & ") + ")"
}

func (UpperBound) pattern() {}

// annotationGate reports whether md carries at least one of required.
// An empty required list always passes.
func annotationGate(md metadata.ClassMetadata, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, marker := range required {
		if md.HasAnnotation(marker) {
			return true
		}
	}
	return false
}
