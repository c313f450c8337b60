package metaclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/aalemi-dev/observer-lab/metadata"
	"github.com/aalemi-dev/observer-lab/observability"
)

type recordingObserver struct {
	mu  sync.Mutex
	ops []observability.OperationContext
}

func (r *recordingObserver) ObserveOperation(op observability.OperationContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

type staticTracer map[string]string

func (s staticTracer) GetCarrier(context.Context) map[string]string { return s }

func newTestServer(t *testing.T, classes map[string]Class) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/classes/{name}", func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); ok && (user != "svc" || pass != "secret") {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("bad credentials"))
			return
		}
		info, ok := classes[r.PathValue("name")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(info)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

var testClasses = map[string]Class{
	"com.example.Widget": {
		Name:        "com.example.Widget",
		Ancestors:   []string{"com.example.Base", "java.lang.Runnable"},
		Annotations: []string{"Transactional"},
	},
	"com.example.Anonymous": {Ancestors: []string{"java.lang.Runnable"}},
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)

	_, err = NewClient(Config{URL: "not a url"})
	assert.Error(t, err)

	c, err := NewClient(Config{URL: "http://metadata:8080/"})
	require.NoError(t, err)
	assert.Equal(t, "http://metadata:8080", c.url)
	assert.Equal(t, 10*time.Second, c.httpClient.Timeout)
	assert.Equal(t, metadata.DefaultRootType, c.root)
}

func TestLookup(t *testing.T) {
	srv := newTestServer(t, testClasses)
	rec := &recordingObserver{}
	c, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)
	c.WithObserver(rec)

	md, err := c.Lookup(context.Background(), "com.example.Widget")
	require.NoError(t, err)
	assert.Equal(t, "com.example.Widget", md.Name())
	assert.True(t, md.IsAssignableTo("com.example.Base"))
	assert.True(t, md.IsAssignableTo("java.lang.Runnable"))
	assert.True(t, md.IsAssignableTo(metadata.DefaultRootType))
	assert.False(t, md.IsAssignableTo("java.io.Serializable"))
	assert.True(t, md.HasAnnotation("Transactional"))

	require.Len(t, rec.ops, 1)
	assert.Equal(t, observability.ComponentClient, rec.ops[0].Component)
	assert.Equal(t, http.StatusOK, rec.ops[0].Metadata["status_code"])
}

func TestFetch_FillsMissingName(t *testing.T) {
	srv := newTestServer(t, testClasses)
	c, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	info, err := c.Fetch(context.Background(), "com.example.Anonymous")
	require.NoError(t, err)
	assert.Equal(t, "com.example.Anonymous", info.Name)
	assert.Equal(t, []string{"java.lang.Runnable"}, info.Ancestors)
}

func TestLookup_AncestorsAreNotWalked(t *testing.T) {
	srv := newTestServer(t, map[string]Class{
		"com.example.Gadget": {Name: "com.example.Gadget", Ancestors: []string{"com.example.Widget"}},
		"com.example.Widget": {Name: "com.example.Widget", Ancestors: []string{"com.example.Base"}},
	})
	c, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	md, err := c.Lookup(context.Background(), "com.example.Gadget")
	require.NoError(t, err)
	assert.True(t, md.IsAssignableTo("com.example.Widget"))
	assert.False(t, md.IsAssignableTo("com.example.Base"))
}

func TestLookup_NotFound(t *testing.T) {
	srv := newTestServer(t, testClasses)
	c, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	_, err = c.Lookup(context.Background(), "com.example.Missing")
	assert.True(t, metadata.IsNotFound(err))
}

func TestLookup_ServerError(t *testing.T) {
	srv := newTestServer(t, testClasses)
	c, err := NewClient(Config{URL: srv.URL, Username: "svc", Password: "wrong"})
	require.NoError(t, err)

	_, err = c.Lookup(context.Background(), "com.example.Widget")
	require.Error(t, err)
	assert.False(t, metadata.IsNotFound(err))
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "bad credentials")
}

func TestLookup_BasicAuth(t *testing.T) {
	srv := newTestServer(t, testClasses)
	c, err := NewClient(Config{URL: srv.URL, Username: "svc", Password: "secret"})
	require.NoError(t, err)

	_, err = c.Lookup(context.Background(), "com.example.Widget")
	assert.NoError(t, err)
}

func TestLookup_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()
	c, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	_, err = c.Lookup(context.Background(), "com.example.Widget")
	assert.ErrorContains(t, err, "failed to decode")
}

func TestLookup_PropagatesTrace(t *testing.T) {
	const traceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	seen := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get("traceparent")
		_ = json.NewEncoder(w).Encode(Class{Name: "com.example.Widget"})
	}))
	defer srv.Close()

	c, err := NewClient(Config{URL: srv.URL, PropagateTrace: true})
	require.NoError(t, err)
	c.WithTracer(staticTracer{"traceparent": traceparent})

	_, err = c.Lookup(context.Background(), "com.example.Widget")
	require.NoError(t, err)
	assert.Equal(t, traceparent, <-seen)
}

func TestLookup_ContextCancelled(t *testing.T) {
	srv := newTestServer(t, testClasses)
	c, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Lookup(ctx, "com.example.Widget")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFXModule_ProvidesService(t *testing.T) {
	srv := newTestServer(t, testClasses)
	var service metadata.Service

	app := fxtest.New(t,
		FXModule,
		fx.Provide(func() Config { return Config{URL: srv.URL} }),
		fx.Populate(&service),
	)
	app.RequireStart()
	defer app.RequireStop()

	md, err := service.Lookup(context.Background(), "com.example.Widget")
	require.NoError(t, err)
	assert.Equal(t, "com.example.Widget", md.Name())
}
