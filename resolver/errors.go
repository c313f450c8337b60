package resolver

import (
	"errors"
	"fmt"
)

var (
	// ErrConstructionFault matches every fault reported while compiling an
	// observer registry. No resolver is produced when it occurs.
	ErrConstructionFault = errors.New("malformed observer registry")

	// ErrEmptyName is returned by Resolve for an empty candidate name.
	ErrEmptyName = errors.New("candidate name is empty")
)

// ConstructionFault describes one malformed registry entry.
type ConstructionFault struct {
	// Position is the index of the entry in the registry snapshot.
	Position int

	// Reason is a short description of what is wrong with the entry.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

func (f *ConstructionFault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("observer #%d: %s: %v", f.Position, f.Reason, f.Err)
	}
	return fmt.Sprintf("observer #%d: %s", f.Position, f.Reason)
}

// Is makes every ConstructionFault match ErrConstructionFault.
func (f *ConstructionFault) Is(target error) bool {
	return target == ErrConstructionFault
}

func (f *ConstructionFault) Unwrap() error {
	return f.Err
}
