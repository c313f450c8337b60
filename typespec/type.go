package typespec

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Kind identifies the shape of a declared type expression.
type Kind int

const (
	// KindClass is a plain, non-generic class reference such as "com.example.Widget".
	KindClass Kind = iota

	// KindParameterized is a generic class applied to type arguments,
	// e.g. "ProcessAnnotatedType<com.example.Widget>".
	KindParameterized

	// KindWildcard is a wildcard argument with upper ("? extends A") or
	// lower ("? super A") bounds. A bare "?" has neither.
	KindWildcard

	// KindVariable is a type variable, e.g. "T extends A & B". A variable
	// with no bounds is implicitly bounded by the universal type.
	KindVariable
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindParameterized:
		return "parameterized"
	case KindWildcard:
		return "wildcard"
	case KindVariable:
		return "variable"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrInvalidType is wrapped by every structural fault reported by Validate and Parse.
var ErrInvalidType = errors.New("invalid type expression")

// Type describes a declared event type. It is the registration-time view of
// the platform's generic type descriptors; nothing on the query path reads it.
//
// Which fields are meaningful depends on Kind:
//   - KindClass:         Name
//   - KindParameterized: Name (the raw type) and Args
//   - KindWildcard:      Upper and/or Lower
//   - KindVariable:      Name (the variable) and Bounds
type Type struct {
	Kind   Kind
	Name   string
	Args   []*Type
	Upper  []*Type
	Lower  []*Type
	Bounds []*Type
}

// Class returns a plain class reference.
func Class(name string) *Type {
	return &Type{Kind: KindClass, Name: name}
}

// Parameterized returns raw applied to args.
func Parameterized(raw string, args ...*Type) *Type {
	return &Type{Kind: KindParameterized, Name: raw, Args: args}
}

// Wildcard returns "? extends upper[0] & upper[1] ...", or "?" when no bound is given.
func Wildcard(upper ...*Type) *Type {
	return &Type{Kind: KindWildcard, Upper: upper}
}

// WildcardSuper returns "? super lower[0] & ...".
func WildcardSuper(lower ...*Type) *Type {
	return &Type{Kind: KindWildcard, Lower: lower}
}

// Variable returns the type variable name bounded by bounds.
func Variable(name string, bounds ...*Type) *Type {
	return &Type{Kind: KindVariable, Name: name, Bounds: bounds}
}

// RawName returns the erasure of t: the class name a value of this type is
// known to have at minimum. Variables and wildcards erase to their first
// upper bound. An empty string means the erasure cannot be determined.
func (t *Type) RawName() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case KindClass, KindParameterized:
		return t.Name
	case KindVariable:
		if len(t.Bounds) == 0 {
			return ""
		}
		return t.Bounds[0].RawName()
	case KindWildcard:
		if len(t.Upper) == 0 {
			return ""
		}
		return t.Upper[0].RawName()
	}
	return ""
}

// RawNames maps RawName over types, keeping the input order.
func RawNames(types []*Type) []string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.RawName())
	}
	return names
}

// IsClass reports whether t is the plain class reference name.
func (t *Type) IsClass(name string) bool {
	return t != nil && t.Kind == KindClass && t.Name == name
}

// Validate checks t and all nested types for structural faults.
func (t *Type) Validate() error {
	return t.validate("type")
}

func (t *Type) validate(path string) error {
	if t == nil {
		return fmt.Errorf("%w: %s is nil", ErrInvalidType, path)
	}

	switch t.Kind {
	case KindClass:
		if t.Name == "" {
			return fmt.Errorf("%w: %s has an empty class name", ErrInvalidType, path)
		}
	case KindParameterized:
		if t.Name == "" {
			return fmt.Errorf("%w: %s has an empty raw type", ErrInvalidType, path)
		}
		if len(t.Args) == 0 {
			return fmt.Errorf("%w: %s (%s) has no type arguments", ErrInvalidType, path, t.Name)
		}
		for i, arg := range t.Args {
			if err := arg.validate(fmt.Sprintf("%s.arg[%d]", path, i)); err != nil {
				return err
			}
		}
	case KindWildcard:
		if len(t.Upper) > 0 && len(t.Lower) > 0 {
			return fmt.Errorf("%w: %s declares both upper and lower bounds", ErrInvalidType, path)
		}
		for i, b := range t.Upper {
			if err := b.validate(fmt.Sprintf("%s.upper[%d]", path, i)); err != nil {
				return err
			}
		}
		for i, b := range t.Lower {
			if err := b.validate(fmt.Sprintf("%s.lower[%d]", path, i)); err != nil {
				return err
			}
		}
	case KindVariable:
		if t.Name == "" {
			return fmt.Errorf("%w: %s has an empty variable name", ErrInvalidType, path)
		}
		for i, b := range t.Bounds {
			if err := b.validate(fmt.Sprintf("%s.bound[%d]", path, i)); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %s has unknown kind %d", ErrInvalidType, path, int(t.Kind))
	}
	return nil
}

// String renders t in the syntax accepted by Parse. Unbounded variables are
// declared in a leading "<T, U> " list so they read back as variables.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	var b strings.Builder
	if vars := t.unboundedVariables(nil); len(vars) > 0 {
		b.WriteByte('<')
		b.WriteString(strings.Join(vars, ", "))
		b.WriteString("> ")
	}
	t.write(&b)
	return b.String()
}

// unboundedVariables appends the names of unbounded variables in t to seen,
// first occurrence first.
func (t *Type) unboundedVariables(seen []string) []string {
	if t == nil {
		return seen
	}
	if t.Kind == KindVariable && len(t.Bounds) == 0 && !slices.Contains(seen, t.Name) {
		seen = append(seen, t.Name)
	}
	for _, group := range [][]*Type{t.Args, t.Upper, t.Lower, t.Bounds} {
		for _, nested := range group {
			seen = nested.unboundedVariables(seen)
		}
	}
	return seen
}

func (t *Type) write(b *strings.Builder) {
	switch t.Kind {
	case KindClass:
		b.WriteString(t.Name)
	case KindParameterized:
		b.WriteString(t.Name)
		b.WriteByte('<')
		writeList(b, t.Args, ", ")
		b.WriteByte('>')
	case KindWildcard:
		b.WriteByte('?')
		if len(t.Upper) > 0 {
			b.WriteString(" extends ")
			writeList(b, t.Upper, " & ")
		} else if len(t.Lower) > 0 {
			b.WriteString(" super ")
			writeList(b, t.Lower, " & ")
		}
	case KindVariable:
		b.WriteString(t.Name)
		if len(t.Bounds) > 0 {
			b.WriteString(" extends ")
			writeList(b, t.Bounds, " & ")
		}
	default:
		b.WriteString(t.Kind.String())
	}
}

func writeList(b *strings.Builder, types []*Type, sep string) {
	for i, t := range types {
		if i > 0 {
			b.WriteString(sep)
		}
		if t == nil {
			b.WriteString("<nil>")
			continue
		}
		t.write(b)
	}
}
