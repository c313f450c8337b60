package resolver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalemi-dev/observer-lab/typespec"
)

func TestCompile_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    Pattern
		skipped bool
	}{
		{name: "concrete class", arg: "com.example.Widget", want: ExactType{Name: "com.example.Widget"}},
		{name: "parameterized class", arg: "java.util.List<java.lang.String>", want: ExactType{Name: "java.util.List"}},
		{name: "bounded wildcard", arg: "? extends java.lang.Runnable", want: UpperBound{Bounds: []string{"java.lang.Runnable"}}},
		{name: "intersection", arg: "? extends java.lang.Runnable & java.io.Serializable", want: UpperBound{Bounds: []string{"java.lang.Runnable", "java.io.Serializable"}}},
		{name: "parameterized bound", arg: "? extends java.util.List<?>", want: UpperBound{Bounds: []string{"java.util.List"}}},
		{name: "unbounded wildcard", arg: "?", want: UpperBound{Bounds: []string{}}},
		{name: "universal bound dropped", arg: "? extends java.lang.Object", want: UpperBound{Bounds: []string{}}},
		{name: "bounded variable", arg: "T extends com.example.Base", want: UpperBound{Bounds: []string{"com.example.Base"}}},
		{name: "lower-bounded wildcard", arg: "? super com.example.Widget", skipped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := on("o", tt.arg)
			c, err := Compile(Config{}, []Observer{o})
			require.NoError(t, err)

			if tt.skipped {
				assert.Empty(t, c.Entries)
				require.Len(t, c.Skipped, 1)
				assert.Same(t, o, c.Skipped[0].Observer)
				return
			}
			require.Len(t, c.Entries, 1)
			assert.Equal(t, tt.want, c.Entries[0].Pattern)
			assert.Empty(t, c.Universal)
		})
	}
}

func TestCompile_ComparableTaggedHandle(t *testing.T) {
	o := taggedObserver{tags: "audit"}

	c, err := Compile(Config{}, []Observer{o, o})
	require.NoError(t, err)
	assert.Equal(t, []Observer{o}, c.Universal)
}

func TestCompile_UnboundedVariable(t *testing.T) {
	o := newObserver("generic", "<T> "+wrapper+"<T>")

	c, err := Compile(Config{}, []Observer{o})
	require.NoError(t, err)

	assert.Empty(t, c.Universal)
	assert.Empty(t, c.Skipped)
	require.Len(t, c.Entries, 1)
	assert.Equal(t, UpperBound{Bounds: []string{}}, c.Entries[0].Pattern)
}

func TestCompile_UnsupportedShapesAreSkipped(t *testing.T) {
	observers := []Observer{
		newObserver("plain event", "com.example.Event"),
		newObserver("other wrapper", "com.example.Envelope<com.example.Widget>"),
		newObserver("raw wrapper", wrapper),
		newObserver("two args", wrapper+"<com.example.A, com.example.B>"),
		&testObserver{id: "wildcard bound", declared: typespec.Parameterized(wrapper, typespec.Wildcard(typespec.Wildcard()))},
		&testObserver{id: "variable bound", declared: typespec.Parameterized(wrapper, typespec.Variable("T", typespec.Variable("U")))},
	}

	c, err := Compile(Config{}, observers)
	require.NoError(t, err)

	assert.Empty(t, c.Universal)
	assert.Empty(t, c.Entries)
	require.Len(t, c.Skipped, len(observers))
	for i, s := range c.Skipped {
		assert.Same(t, observers[i], s.Observer)
		assert.NotEmpty(t, s.Reason)
	}
}

func TestCompile_UniversalAndPatternAreDisjoint(t *testing.T) {
	any1 := newObserver("any1", universal)
	any2 := newObserver("any2", universal, "com.example.Marker")
	exact := on("exact", "com.example.Widget")

	c, err := Compile(Config{}, []Observer{any1, exact, any2, exact, any1})
	require.NoError(t, err)

	assert.Equal(t, []Observer{any1, any2}, c.Universal)
	require.Len(t, c.Entries, 1)
	assert.Same(t, exact, c.Entries[0].Observer)

	for _, e := range c.Entries {
		assert.NotContains(t, c.Universal, e.Observer)
	}
}

func TestCompile_CopiesRequiredAnnotations(t *testing.T) {
	o := on("o", "com.example.Widget", "Transactional")

	c, err := Compile(Config{}, []Observer{o})
	require.NoError(t, err)

	o.required[0] = "Mutated"
	assert.Equal(t, []string{"Transactional"}, c.Entries[0].Required)
}

func TestCompile_CustomTypes(t *testing.T) {
	cfg := Config{UniversalType: "Any", WrapperType: "Seen"}
	top := newObserver("top", "Any")
	seen := newObserver("seen", "Seen<? extends Any & Thing>")
	pat := on("pat", "com.example.Widget")

	c, err := Compile(cfg, []Observer{top, seen, pat})
	require.NoError(t, err)

	assert.Equal(t, []Observer{top}, c.Universal)
	require.Len(t, c.Entries, 1)
	assert.Equal(t, UpperBound{Bounds: []string{"Thing"}}, c.Entries[0].Pattern)
	require.Len(t, c.Skipped, 1)
	assert.Same(t, pat, c.Skipped[0].Observer)
}

func TestCompile_ConstructionFaults(t *testing.T) {
	var nilPtr *testObserver
	observers := []Observer{
		on("ok", "com.example.Widget"),
		nil,
		nilPtr,
		&testObserver{id: "no type"},
		&testObserver{id: "bad type", declared: &typespec.Type{Kind: typespec.KindParameterized, Name: wrapper}},
		sliceObserver{"x"},
		taggedObserver{tags: []string{"x"}},
		taggedObserver{tags: map[string]int{}},
	}

	c, err := Compile(Config{}, observers)
	require.Error(t, err)
	assert.Nil(t, c)
	assert.True(t, errors.Is(err, ErrConstructionFault))

	for _, pos := range []string{"#1", "#2", "#3", "#4", "#5", "#6", "#7"} {
		assert.Contains(t, err.Error(), "observer "+pos)
	}
	assert.NotContains(t, err.Error(), "observer #0")

	var fault *ConstructionFault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, 1, fault.Position)
}

func TestCompile_InvalidTypeUnwrapsToTypespecError(t *testing.T) {
	o := &testObserver{id: "bad", declared: typespec.Parameterized(wrapper, typespec.Class(""))}

	_, err := Compile(Config{}, []Observer{o})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstructionFault)
	assert.ErrorIs(t, err, typespec.ErrInvalidType)
}

func TestCompile_Empty(t *testing.T) {
	c, err := Compile(Config{}, nil)
	require.NoError(t, err)
	assert.Empty(t, c.Universal)
	assert.Empty(t, c.Entries)
	assert.Empty(t, c.Skipped)
}

func TestPattern_String(t *testing.T) {
	assert.Equal(t, "exact(com.example.Widget)", ExactType{Name: "com.example.Widget"}.String())
	assert.Equal(t, "upper(*)", UpperBound{}.String())
	assert.Equal(t, "upper(A & B)", UpperBound{Bounds: []string{"A", "B"}}.String())
}
