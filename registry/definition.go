package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/aalemi-dev/observer-lab/resolver"
	"github.com/aalemi-dev/observer-lab/typespec"
)

var (
	// ErrInvalidDefinition matches every problem found in an observer definition.
	ErrInvalidDefinition = errors.New("invalid observer definition")

	// ErrSnapshotNotFound is returned when a snapshot object or file does not exist.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Definition is a declarative observer. A *Definition is a resolver.Observer
// once its event type has been parsed.
type Definition struct {
	// ID identifies the observer in resolutions, logs and metrics.
	ID string `json:"id" yaml:"id"`

	// EventType is the declared event type, e.g.
	// "javax.enterprise.inject.spi.ProcessAnnotatedType<? extends java.lang.Runnable>".
	EventType string `json:"event_type" yaml:"event_type"`

	// Required lists annotation markers of which a candidate must carry one.
	Required []string `json:"required_annotations,omitempty" yaml:"required_annotations,omitempty"`

	declared *typespec.Type
}

// ObservedType returns the parsed event type, or nil before parsing.
func (d *Definition) ObservedType() *typespec.Type {
	return d.declared
}

// RequiredAnnotations returns d.Required.
func (d *Definition) RequiredAnnotations() []string {
	return d.Required
}

func (d *Definition) String() string {
	return d.ID
}

func (d *Definition) parse() error {
	if d.declared != nil {
		return nil
	}
	t, err := typespec.Parse(d.EventType)
	if err != nil {
		return err
	}
	d.declared = t
	return nil
}

// Definitions is an ordered observer registry.
type Definitions []*Definition

// Observers parses every event type and returns the definitions as resolver
// observers, in order. Empty or duplicate IDs and unparsable event types are
// reported together.
func (ds Definitions) Observers() ([]resolver.Observer, error) {
	var (
		errs *multierror.Error
		ids  = make(map[string]int, len(ds))
		out  = make([]resolver.Observer, 0, len(ds))
	)

	for i, d := range ds {
		if d == nil {
			errs = multierror.Append(errs, fmt.Errorf("%w: entry %d is empty", ErrInvalidDefinition, i))
			continue
		}
		if d.ID == "" {
			errs = multierror.Append(errs, fmt.Errorf("%w: entry %d has no id", ErrInvalidDefinition, i))
		} else if prev, dup := ids[d.ID]; dup {
			errs = multierror.Append(errs, fmt.Errorf("%w: id %q used by entries %d and %d", ErrInvalidDefinition, d.ID, prev, i))
		} else {
			ids[d.ID] = i
		}
		if err := d.parse(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%w: %q: %w", ErrInvalidDefinition, d.ID, err))
			continue
		}
		out = append(out, d)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// IDs returns the sorted identifiers of observers. Observers that are not
// *Definition are rendered with fmt.
func IDs(observers []resolver.Observer) []string {
	ids := make([]string, 0, len(observers))
	for _, o := range observers {
		if d, ok := o.(*Definition); ok {
			ids = append(ids, d.ID)
			continue
		}
		ids = append(ids, fmt.Sprint(o))
	}
	sort.Strings(ids)
	return ids
}
