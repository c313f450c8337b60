package resolver

import (
	"context"

	"go.uber.org/fx"

	"github.com/aalemi-dev/observer-lab/metadata"
	"github.com/aalemi-dev/observer-lab/observability"
	"github.com/aalemi-dev/observer-lab/tracer"
)

// FXModule provides a *Resolver compiled from the Source in the graph.
//
// The application supplies Config, a metadata.Service and a Source; a
// Logger, an observability.Observer and a tracer.Tracer are picked up when
// present.
var FXModule = fx.Module("resolver",
	fx.Provide(NewResolverWithDI),
	fx.Invoke(RegisterResolverLifecycle),
)

// Params groups the dependencies of NewResolverWithDI.
type Params struct {
	fx.In

	Config   Config
	Service  metadata.Service
	Source   Source
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Tracer   tracer.Tracer          `optional:"true"`
}

// NewResolverWithDI builds a Resolver from injected dependencies.
func NewResolverWithDI(p Params) (*Resolver, error) {
	var opts []Option
	if p.Logger != nil {
		opts = append(opts, WithLogger(p.Logger))
	}
	if p.Observer != nil {
		opts = append(opts, WithObserver(p.Observer))
	}
	if p.Tracer != nil {
		opts = append(opts, WithTracer(p.Tracer))
	}
	return New(p.Config, p.Service, p.Source.Observers(), opts...)
}

// RegisterResolverLifecycle logs the cache size when the app stops.
func RegisterResolverLifecycle(lc fx.Lifecycle, r *Resolver) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			r.logInfo(ctx, "resolver stopped", map[string]interface{}{"cached_names": r.CachedNames()})
			return nil
		},
	})
}
