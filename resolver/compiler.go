package resolver

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/hashicorp/go-multierror"

	"github.com/aalemi-dev/observer-lab/typespec"
)

// Entry pairs an observer with its compiled pattern and a private copy of
// its required annotations.
type Entry struct {
	Observer Observer
	Pattern  Pattern
	Required []string
}

// Skip records an observer that takes no part in pattern matching.
type Skip struct {
	Observer Observer
	Reason   string
}

// Compiled is the output of Compile.
type Compiled struct {
	// Universal holds observers of the universal type, in registry order.
	Universal []Observer

	// Entries holds one entry per pattern-compiled observer, in registry order.
	Entries []Entry

	// Skipped holds observers whose declared type has an unsupported shape.
	Skipped []Skip
}

// Compile turns observers into universal members and pattern entries.
//
// An observer handle listed twice is compiled once. Malformed entries (nil
// handles, non-comparable handles, missing or invalid declared types) are
// collected and returned together as an error matching ErrConstructionFault.
func Compile(cfg Config, observers []Observer) (*Compiled, error) {
	cfg = cfg.withDefaults()

	var (
		faults *multierror.Error
		out    = &Compiled{}
		seen   = make(map[Observer]struct{}, len(observers))
	)

	for i, o := range observers {
		if fault := checkHandle(i, o); fault != nil {
			faults = multierror.Append(faults, fault)
			continue
		}
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}

		declared := o.ObservedType()
		if declared == nil {
			faults = multierror.Append(faults, &ConstructionFault{Position: i, Reason: "declared event type is missing"})
			continue
		}
		if err := declared.Validate(); err != nil {
			faults = multierror.Append(faults, &ConstructionFault{Position: i, Reason: "declared event type is invalid", Err: err})
			continue
		}

		if declared.IsClass(cfg.UniversalType) {
			out.Universal = append(out.Universal, o)
			continue
		}

		p, reason := compileDeclared(cfg, declared)
		if p == nil {
			out.Skipped = append(out.Skipped, Skip{Observer: o, Reason: reason})
			continue
		}

		out.Entries = append(out.Entries, Entry{
			Observer: o,
			Pattern:  p,
			Required: append([]string(nil), o.RequiredAnnotations()...),
		})
	}

	if err := faults.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("compile observer registry: %w", err)
	}
	return out, nil
}

func checkHandle(position int, o Observer) *ConstructionFault {
	if o == nil {
		return &ConstructionFault{Position: position, Reason: "observer is nil"}
	}
	v := reflect.ValueOf(o)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if v.IsNil() {
			return &ConstructionFault{Position: position, Reason: "observer is a nil " + v.Kind().String()}
		}
	}
	// Type-level comparability misses interface fields holding slices or maps.
	if !v.Comparable() {
		return &ConstructionFault{Position: position, Reason: fmt.Sprintf("observer handle %s is not comparable", v.Type())}
	}
	return nil
}

// compileDeclared returns the pattern for a declared type, or nil and the
// reason the shape is not supported.
func compileDeclared(cfg Config, declared *typespec.Type) (Pattern, string) {
	if declared.Kind != typespec.KindParameterized || declared.Name != cfg.WrapperType {
		return nil, "not a " + cfg.WrapperType + " observer"
	}
	if len(declared.Args) != 1 {
		return nil, fmt.Sprintf("wrapper has %d type arguments", len(declared.Args))
	}

	arg := declared.Args[0]
	switch arg.Kind {
	case typespec.KindClass, typespec.KindParameterized:
		return ExactType{Name: arg.RawName()}, ""

	case typespec.KindWildcard:
		if len(arg.Lower) > 0 {
			return nil, "lower-bounded wildcard"
		}
		bounds, ok := boundNames(cfg, arg.Upper)
		if !ok {
			return nil, "wildcard bounded by a wildcard or type variable"
		}
		return UpperBound{Bounds: bounds}, ""

	case typespec.KindVariable:
		bounds, ok := boundNames(cfg, arg.Bounds)
		if !ok {
			return nil, "type variable bounded by a wildcard or type variable"
		}
		return UpperBound{Bounds: bounds}, ""
	}
	return nil, "unsupported type argument kind " + arg.Kind.String()
}

// boundNames erases bounds to class names. The universal type is dropped
// since every candidate satisfies it. ok is false when a bound is itself a
// wildcard or a variable.
func boundNames(cfg Config, bounds []*typespec.Type) ([]string, bool) {
	for _, b := range bounds {
		if b.Kind != typespec.KindClass && b.Kind != typespec.KindParameterized {
			return nil, false
		}
	}
	names := slices.DeleteFunc(typespec.RawNames(bounds), func(name string) bool {
		return name == cfg.UniversalType
	})
	return names, true
}
