package metadata

import (
	"context"
	"fmt"
	"sort"
)

// ClassInfo is the serialisable description of one class: its direct
// supertypes (superclass and interfaces) and the annotations it declares.
type ClassInfo struct {
	Name string `json:"name" yaml:"name"`

	// Supertypes are the direct supertypes only. Index and the catalog walk
	// them to find further ancestors.
	Supertypes  []string `json:"supertypes,omitempty" yaml:"supertypes,omitempty"`
	Annotations []string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Index is an in-memory Service over a fixed set of ClassInfo records.
//
// Assignability is the reflexive, transitive closure of the supertype
// relation plus the root type. Supertypes that are not themselves indexed
// still count as assignable targets; their own ancestors are unknown.
//
// An Index is immutable after NewIndex and safe for concurrent use.
type Index struct {
	root    string
	classes map[string]*classMetadata
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithRootType overrides DefaultRootType. An empty name keeps the default.
func WithRootType(name string) IndexOption {
	return func(i *Index) {
		if name != "" {
			i.root = name
		}
	}
}

// NewIndex builds an Index from infos. Duplicate or empty names are rejected.
func NewIndex(infos []ClassInfo, opts ...IndexOption) (*Index, error) {
	idx := &Index{
		root:    DefaultRootType,
		classes: make(map[string]*classMetadata, len(infos)),
	}
	for _, opt := range opts {
		opt(idx)
	}

	direct := make(map[string][]string, len(infos))
	for _, info := range infos {
		if info.Name == "" {
			return nil, fmt.Errorf("class info with empty name")
		}
		if _, dup := direct[info.Name]; dup {
			return nil, fmt.Errorf("duplicate class info for %s", info.Name)
		}
		direct[info.Name] = info.Supertypes
	}

	for _, info := range infos {
		idx.classes[info.Name] = &classMetadata{
			name:        info.Name,
			assignable:  closure(info.Name, direct, idx.root),
			annotations: toSet(info.Annotations),
		}
	}
	return idx, nil
}

// Lookup returns the metadata of name or an error matching ErrNotFound.
func (i *Index) Lookup(_ context.Context, name string) (ClassMetadata, error) {
	md, ok := i.classes[name]
	if !ok {
		return nil, NotFound(name)
	}
	return md, nil
}

// Len returns the number of indexed classes.
func (i *Index) Len() int {
	return len(i.classes)
}

// Names returns the indexed class names in sorted order.
func (i *Index) Names() []string {
	names := make([]string, 0, len(i.classes))
	for name := range i.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// closure walks the supertype graph breadth first from name. Cycles are
// tolerated.
func closure(name string, direct map[string][]string, root string) map[string]struct{} {
	seen := map[string]struct{}{name: {}}
	if root != "" {
		seen[root] = struct{}{}
	}

	queue := []string{name}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, super := range direct[current] {
			if _, ok := seen[super]; ok {
				continue
			}
			seen[super] = struct{}{}
			queue = append(queue, super)
		}
	}
	return seen
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// classMetadata is the immutable ClassMetadata built by Index and by the
// other services in this repository through NewClassMetadata.
type classMetadata struct {
	name        string
	assignable  map[string]struct{}
	annotations map[string]struct{}
}

// NewClassMetadata returns an immutable ClassMetadata for name whose
// assignable set is name, root, and ancestors. Callers that already hold the
// full ancestor list (for example a catalog row) use this instead of an Index.
func NewClassMetadata(name, root string, ancestors, annotations []string) ClassMetadata {
	assignable := toSet(ancestors)
	assignable[name] = struct{}{}
	if root != "" {
		assignable[root] = struct{}{}
	}
	return &classMetadata{
		name:        name,
		assignable:  assignable,
		annotations: toSet(annotations),
	}
}

func (c *classMetadata) Name() string {
	return c.name
}

func (c *classMetadata) IsAssignableTo(other string) bool {
	_, ok := c.assignable[other]
	return ok
}

func (c *classMetadata) HasAnnotation(marker string) bool {
	_, ok := c.annotations[marker]
	return ok
}
