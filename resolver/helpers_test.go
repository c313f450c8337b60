package resolver

import (
	"github.com/aalemi-dev/observer-lab/typespec"
)

const (
	wrapper   = DefaultWrapperType
	universal = "java.lang.Object"
)

type testObserver struct {
	id       string
	declared *typespec.Type
	required []string
}

func (o *testObserver) ObservedType() *typespec.Type  { return o.declared }
func (o *testObserver) RequiredAnnotations() []string { return o.required }
func (o *testObserver) String() string                { return o.id }

func newObserver(id, declared string, required ...string) *testObserver {
	return &testObserver{id: id, declared: typespec.MustParse(declared), required: required}
}

// on returns an observer of wrapper<arg>.
func on(id, arg string, required ...string) *testObserver {
	return newObserver(id, wrapper+"<"+arg+">", required...)
}

// sliceObserver is not comparable and cannot be used as a handle.
type sliceObserver []string

func (sliceObserver) ObservedType() *typespec.Type  { return typespec.Class(universal) }
func (sliceObserver) RequiredAnnotations() []string { return nil }

// taggedObserver has a comparable type but is not comparable when tags holds
// a slice or map.
type taggedObserver struct {
	tags interface{}
}

func (taggedObserver) ObservedType() *typespec.Type  { return typespec.Class(universal) }
func (taggedObserver) RequiredAnnotations() []string { return nil }
