package registry

import (
	"context"

	"go.uber.org/fx"

	"github.com/aalemi-dev/observer-lab/observability"
	"github.com/aalemi-dev/observer-lab/resolver"
)

// FXModule loads the observer snapshot on start-up and provides it as
// *Snapshot and resolver.Source.
var FXModule = fx.Module("registry",
	fx.Provide(
		NewLoaderWithDI,
		NewSnapshotWithDI,
		fx.Annotate(
			func(s *Snapshot) resolver.Source { return s },
			fx.As(new(resolver.Source)),
		),
	),
)

// Params groups the dependencies of NewLoaderWithDI.
type Params struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewLoaderWithDI builds the Loader selected by the injected Config.
func NewLoaderWithDI(p Params) (Loader, error) {
	if p.Config.ObjectStore.Bucket != "" {
		store, err := NewObjectStore(p.Config.ObjectStore)
		if err != nil {
			return nil, err
		}
		if p.Logger != nil {
			store.WithLogger(p.Logger)
		}
		if p.Observer != nil {
			store.WithObserver(p.Observer)
		}
		return store, nil
	}

	loader, err := NewLoader(p.Config)
	if err != nil {
		return nil, err
	}
	if fl, ok := loader.(*FileLoader); ok && p.Observer != nil {
		fl.WithObserver(p.Observer)
	}
	return loader, nil
}

// NewSnapshotWithDI loads the snapshot once, while the graph is built.
func NewSnapshotWithDI(loader Loader) (*Snapshot, error) {
	return loader.Load(context.Background())
}
