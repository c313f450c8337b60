package resolver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aalemi-dev/observer-lab/logger"
	"github.com/aalemi-dev/observer-lab/metadata"
	"github.com/aalemi-dev/observer-lab/observability"
)

func testIndex(t *testing.T) *metadata.Index {
	t.Helper()
	idx, err := metadata.NewIndex([]metadata.ClassInfo{
		{Name: "com.example.Base"},
		{Name: "com.example.Widget", Supertypes: []string{"com.example.Base", "java.lang.Runnable"}, Annotations: []string{"Transactional"}},
		{Name: "com.example.Gadget", Supertypes: []string{"com.example.Widget"}},
		{Name: "com.example.Task", Supertypes: []string{"java.lang.Runnable", "java.io.Serializable"}, Annotations: []string{"Audited"}},
		{Name: "com.example.Plain"},
	})
	require.NoError(t, err)
	return idx
}

// countingService counts lookups per name on top of another service.
type countingService struct {
	next  metadata.Service
	mu    sync.Mutex
	calls map[string]int
}

func newCountingService(next metadata.Service) *countingService {
	return &countingService{next: next, calls: make(map[string]int)}
}

func (s *countingService) Lookup(ctx context.Context, name string) (metadata.ClassMetadata, error) {
	s.mu.Lock()
	s.calls[name]++
	s.mu.Unlock()
	return s.next.Lookup(ctx, name)
}

func (s *countingService) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

type recordingObserver struct {
	mu  sync.Mutex
	ops []observability.OperationContext
}

func (r *recordingObserver) ObserveOperation(op observability.OperationContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func (r *recordingObserver) all() []observability.OperationContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]observability.OperationContext(nil), r.ops...)
}

func mustResolve(t *testing.T, r *Resolver, name string) Set {
	t.Helper()
	set, err := r.Resolve(context.Background(), name)
	require.NoError(t, err)
	return set
}

func TestResolve_UniversalAndExact(t *testing.T) {
	top := newObserver("top", universal)
	widget := on("widget", "com.example.Widget")

	r, err := New(Config{}, testIndex(t), []Observer{top, widget})
	require.NoError(t, err)

	set := mustResolve(t, r, "com.example.Widget")
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains(top))
	assert.True(t, set.Contains(widget))

	set = mustResolve(t, r, "com.example.Plain")
	assert.Equal(t, 1, set.Len())
	assert.True(t, set.Contains(top))
}

func TestResolve_UniversalIgnoresMetadata(t *testing.T) {
	// Required annotations on a universal observer do not gate it.
	top := newObserver("top", universal, "NeverPresent")

	r, err := New(Config{}, testIndex(t), []Observer{top})
	require.NoError(t, err)

	for _, name := range []string{"com.example.Widget", "com.example.Plain", "com.example.Task"} {
		assert.True(t, mustResolve(t, r, name).Contains(top), name)
	}
}

func TestResolve_ExactTypeIgnoresSubtypes(t *testing.T) {
	widget := on("widget", "com.example.Widget")

	r, err := New(Config{}, testIndex(t), []Observer{widget})
	require.NoError(t, err)

	assert.True(t, mustResolve(t, r, "com.example.Widget").Contains(widget))
	assert.False(t, mustResolve(t, r, "com.example.Gadget").Contains(widget))
	assert.False(t, mustResolve(t, r, "com.example.Base").Contains(widget))
}

func TestResolve_UpperBoundWithMocks(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := metadata.NewMockService(ctrl)
	runnable := on("runnable", "? extends java.lang.Runnable")

	yes := metadata.NewMockClassMetadata(ctrl)
	yes.EXPECT().IsAssignableTo("java.lang.Runnable").Return(true)
	no := metadata.NewMockClassMetadata(ctrl)
	no.EXPECT().IsAssignableTo("java.lang.Runnable").Return(false)

	service.EXPECT().Lookup(gomock.Any(), "com.example.Yes").Return(yes, nil)
	service.EXPECT().Lookup(gomock.Any(), "com.example.No").Return(no, nil)

	r, err := New(Config{}, service, []Observer{runnable})
	require.NoError(t, err)

	assert.True(t, mustResolve(t, r, "com.example.Yes").Contains(runnable))
	assert.False(t, mustResolve(t, r, "com.example.No").Contains(runnable))
}

func TestResolve_UpperBoundMonotonicity(t *testing.T) {
	both := on("both", "? extends java.lang.Runnable & java.io.Serializable")
	one := on("one", "? extends java.lang.Runnable")
	none := on("none", "?")

	r, err := New(Config{}, testIndex(t), []Observer{both, one, none})
	require.NoError(t, err)

	for _, name := range []string{"com.example.Widget", "com.example.Gadget", "com.example.Task", "com.example.Plain"} {
		set := mustResolve(t, r, name)
		if set.Contains(both) {
			assert.True(t, set.Contains(one), name)
		}
		if set.Contains(one) {
			assert.True(t, set.Contains(none), name)
		}
		assert.True(t, set.Contains(none), name)
	}

	assert.True(t, mustResolve(t, r, "com.example.Task").Contains(both))
	assert.False(t, mustResolve(t, r, "com.example.Widget").Contains(both))
	assert.True(t, mustResolve(t, r, "com.example.Gadget").Contains(one))
	assert.False(t, mustResolve(t, r, "com.example.Plain").Contains(one))
}

func TestResolve_UnboundedVariableMatchesEveryCandidate(t *testing.T) {
	generic := newObserver("generic", "<T> "+wrapper+"<T>")
	undeclared := on("undeclared", "T")

	r, err := New(Config{}, testIndex(t), []Observer{generic, undeclared})
	require.NoError(t, err)

	for _, name := range []string{"com.example.Widget", "com.example.Gadget", "com.example.Task", "com.example.Plain"} {
		set := mustResolve(t, r, name)
		assert.True(t, set.Contains(generic), name)
		assert.False(t, set.Contains(undeclared), name)
	}
}

func TestResolve_AnnotationGate(t *testing.T) {
	plain := on("plain", "com.example.Plain", "Transactional")
	either := on("either", "? extends java.lang.Runnable", "Transactional", "Audited")
	open := on("open", "? extends java.lang.Runnable")

	r, err := New(Config{}, testIndex(t), []Observer{plain, either, open})
	require.NoError(t, err)

	assert.False(t, mustResolve(t, r, "com.example.Plain").Contains(plain))

	widget := mustResolve(t, r, "com.example.Widget")
	assert.True(t, widget.Contains(either))
	assert.True(t, widget.Contains(open))

	task := mustResolve(t, r, "com.example.Task")
	assert.True(t, task.Contains(either))

	gadget := mustResolve(t, r, "com.example.Gadget")
	assert.False(t, gadget.Contains(either))
	assert.True(t, gadget.Contains(open))
}

func TestResolve_AnnotationGateShortCircuits(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := metadata.NewMockService(ctrl)
	gated := on("gated", "? extends java.lang.Runnable", "Transactional")

	md := metadata.NewMockClassMetadata(ctrl)
	md.EXPECT().HasAnnotation("Transactional").Return(false)
	// IsAssignableTo must not be consulted once the gate fails.
	service.EXPECT().Lookup(gomock.Any(), "com.example.Widget").Return(md, nil)

	r, err := New(Config{}, service, []Observer{gated})
	require.NoError(t, err)

	assert.Equal(t, 0, mustResolve(t, r, "com.example.Widget").Len())
}

func TestResolve_NotFound(t *testing.T) {
	top := newObserver("top", universal)
	service := newCountingService(testIndex(t))

	r, err := New(Config{}, service, []Observer{top})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		set, err := r.Resolve(context.Background(), "com.example.Missing")
		require.Error(t, err)
		assert.Nil(t, set)
		assert.True(t, metadata.IsNotFound(err))
		assert.Contains(t, err.Error(), "com.example.Missing")
	}
	assert.Equal(t, 2, service.count("com.example.Missing"))
	assert.Equal(t, 0, r.CachedNames())
}

func TestResolve_ServiceErrorPropagates(t *testing.T) {
	boom := errors.New("metadata backend unavailable")
	service := metadata.ServiceFunc(func(context.Context, string) (metadata.ClassMetadata, error) {
		return nil, boom
	})

	r, err := New(Config{}, service, nil)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), "com.example.Widget")
	assert.ErrorIs(t, err, boom)
	assert.False(t, metadata.IsNotFound(err))
}

func TestResolve_EmptyName(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := metadata.NewMockService(ctrl)

	r, err := New(Config{}, service, []Observer{newObserver("top", universal)})
	require.NoError(t, err)

	set, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Nil(t, set)
}

func TestResolve_IdempotentAndFresh(t *testing.T) {
	top := newObserver("top", universal)
	widget := on("widget", "com.example.Widget")
	service := newCountingService(testIndex(t))

	r, err := New(Config{}, service, []Observer{top, widget})
	require.NoError(t, err)

	first := mustResolve(t, r, "com.example.Widget")
	delete(first, widget)
	first.add(on("intruder", "com.example.Widget"))

	second := mustResolve(t, r, "com.example.Widget")
	assert.Equal(t, 2, second.Len())
	assert.True(t, second.Contains(top))
	assert.True(t, second.Contains(widget))

	assert.Equal(t, 1, service.count("com.example.Widget"))
	assert.Equal(t, 1, r.CachedNames())
}

func TestResolve_ConcurrentSameName(t *testing.T) {
	for _, singleFlight := range []bool{false, true} {
		t.Run(map[bool]string{false: "at-least-once", true: "single-flight"}[singleFlight], func(t *testing.T) {
			top := newObserver("top", universal)
			widget := on("widget", "com.example.Widget")
			r, err := New(Config{SingleFlight: singleFlight}, testIndex(t), []Observer{top, widget})
			require.NoError(t, err)

			const n = 32
			results := make([]Set, n)
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					set, err := r.Resolve(context.Background(), "com.example.Widget")
					assert.NoError(t, err)
					results[i] = set
				}(i)
			}
			wg.Wait()

			for _, set := range results {
				assert.Equal(t, results[0], set)
			}
			assert.Equal(t, 2, results[0].Len())
		})
	}
}

func TestResolve_SingleFlightFetchesOnce(t *testing.T) {
	idx := testIndex(t)
	var calls atomic.Int32
	release := make(chan struct{})
	service := metadata.ServiceFunc(func(ctx context.Context, name string) (metadata.ClassMetadata, error) {
		calls.Add(1)
		<-release
		return idx.Lookup(ctx, name)
	})

	r, err := New(Config{SingleFlight: true}, service, []Observer{on("widget", "com.example.Widget")})
	require.NoError(t, err)

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), "com.example.Widget")
			assert.NoError(t, err)
		}()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestNew_Faults(t *testing.T) {
	_, err := New(Config{}, nil, nil)
	assert.Error(t, err)

	_, err = New(Config{}, testIndex(t), []Observer{nil})
	assert.ErrorIs(t, err, ErrConstructionFault)
}

func TestResolve_ReportsOperations(t *testing.T) {
	rec := &recordingObserver{}
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.LoggerClient{Zap: zap.New(core)}

	r, err := New(Config{}, testIndex(t), []Observer{
		newObserver("top", universal),
		newObserver("ignored", "com.example.Event"),
	}, WithObserver(rec), WithLogger(log))
	require.NoError(t, err)

	mustResolve(t, r, "com.example.Widget")
	mustResolve(t, r, "com.example.Widget")
	_, _ = r.Resolve(context.Background(), "com.example.Missing")

	ops := rec.all()
	require.Len(t, ops, 3)
	for _, op := range ops {
		assert.Equal(t, observability.ComponentResolver, op.Component)
		assert.Equal(t, "resolve", op.Operation)
	}
	assert.Equal(t, false, ops[0].Metadata["cache_hit"])
	assert.Equal(t, int64(1), ops[0].Size)
	assert.Equal(t, true, ops[1].Metadata["cache_hit"])
	assert.Error(t, ops[2].Error)

	assert.Equal(t, 1, logs.FilterMessage("observer registry compiled").Len())
	assert.Equal(t, 1, logs.FilterMessage("observer skipped").Len())
	assert.Equal(t, 1, logs.FilterMessage("metadata lookup failed").Len())
}
