package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/aalemi-dev/observer-lab/metadata"
	"github.com/aalemi-dev/observer-lab/observability"
	"github.com/aalemi-dev/observer-lab/tracer"
)

// Resolver answers which observers are interested in a candidate class.
//
// The observer registry is compiled once by New and never changes afterwards.
// Metadata for each candidate name is fetched lazily and kept for the
// lifetime of the Resolver. Resolve is safe for concurrent use.
type Resolver struct {
	cfg      Config
	compiled *Compiled
	cache    *metadataCache

	logger   Logger
	observer observability.Observer
	tracer   tracer.Tracer
}

// Option customises a Resolver built by New.
type Option func(*Resolver)

// WithLogger attaches a logger to the resolver.
func WithLogger(l Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithObserver attaches an operation observer to the resolver.
func WithObserver(o observability.Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

// WithTracer makes Resolve open a span per call.
func WithTracer(t tracer.Tracer) Option {
	return func(r *Resolver) { r.tracer = t }
}

// New compiles observers and returns a Resolver backed by service.
//
// A malformed registry yields an error matching ErrConstructionFault and no
// Resolver.
func New(cfg Config, service metadata.Service, observers []Observer, opts ...Option) (*Resolver, error) {
	if service == nil {
		return nil, fmt.Errorf("metadata service is required")
	}
	cfg = cfg.withDefaults()

	compiled, err := Compile(cfg, observers)
	if err != nil {
		return nil, err
	}

	r := &Resolver{
		cfg:      cfg,
		compiled: compiled,
		cache:    newMetadataCache(service, cfg.SingleFlight),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.logInfo(context.Background(), "observer registry compiled", map[string]interface{}{
		"universal": len(compiled.Universal),
		"patterns":  len(compiled.Entries),
		"skipped":   len(compiled.Skipped),
	})
	for _, s := range compiled.Skipped {
		r.logDebug(context.Background(), "observer skipped", map[string]interface{}{
			"declared_type": s.Observer.ObservedType().String(),
			"reason":        s.Reason,
		})
	}
	return r, nil
}

// Resolve returns the observers that must be notified for the candidate
// class named name.
//
// The result always contains every universal observer. A pattern observer is
// added when the candidate carries one of its required annotations (or it
// requires none) and its pattern matches. Metadata lookup failures are
// returned wrapped; a metadata.ErrNotFound cause stays detectable with
// errors.Is. The returned set is owned by the caller.
func (r *Resolver) Resolve(ctx context.Context, name string) (Set, error) {
	start := time.Now()

	if r.tracer != nil {
		var span tracer.Span
		ctx, span = r.tracer.StartSpan(ctx, "resolver.resolve")
		defer span.End()
		span.SetAttributes(map[string]interface{}{"candidate": name})
		set, err := r.resolve(ctx, name, start)
		if err != nil {
			span.RecordError(err)
		} else {
			span.SetAttributes(map[string]interface{}{"observers": set.Len()})
		}
		return set, err
	}
	return r.resolve(ctx, name, start)
}

func (r *Resolver) resolve(ctx context.Context, name string, start time.Time) (Set, error) {
	if name == "" {
		r.observeOperation("resolve", name, time.Since(start), ErrEmptyName, 0, nil)
		return nil, ErrEmptyName
	}

	result := make(Set, len(r.compiled.Universal))
	for _, o := range r.compiled.Universal {
		result.add(o)
	}

	md, hit, err := r.cache.get(ctx, name)
	if err != nil {
		err = fmt.Errorf("resolve %q: %w", name, err)
		r.observeOperation("resolve", name, time.Since(start), err, 0, map[string]interface{}{"cache_hit": false})
		r.logError(ctx, "metadata lookup failed", err, map[string]interface{}{"candidate": name})
		return nil, err
	}

	for _, e := range r.compiled.Entries {
		if !annotationGate(md, e.Required) {
			continue
		}
		if e.Pattern.Matches(md) {
			result.add(e.Observer)
		}
	}

	r.observeOperation("resolve", name, time.Since(start), nil, int64(len(result)), map[string]interface{}{
		"cache_hit": hit,
	})
	return result, nil
}

// Compiled returns the compiled registry. Callers must not modify it.
func (r *Resolver) Compiled() *Compiled {
	return r.compiled
}

// Config returns the effective configuration, defaults applied.
func (r *Resolver) Config() Config {
	return r.cfg
}

// CachedNames returns how many candidate names have cached metadata.
func (r *Resolver) CachedNames() int {
	return r.cache.len()
}
