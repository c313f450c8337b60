package catalog

import (
	"context"

	"go.uber.org/fx"

	"github.com/aalemi-dev/observer-lab/metadata"
	"github.com/aalemi-dev/observer-lab/observability"
)

// FXModule provides *Catalog and metadata.Service. The tables are migrated
// on start when Config.AutoMigrate is set, and the pool is closed on stop.
var FXModule = fx.Module("catalog",
	fx.Provide(
		NewCatalogWithDI,
		fx.Annotate(
			func(c *Catalog) metadata.Service { return c },
			fx.As(new(metadata.Service)),
		),
	),
	fx.Invoke(RegisterCatalogLifecycle),
)

// Params groups the dependencies of NewCatalogWithDI.
type Params struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewCatalogWithDI opens the catalog from injected dependencies.
func NewCatalogWithDI(p Params) (*Catalog, error) {
	c, err := New(p.Config)
	if err != nil {
		return nil, err
	}
	if p.Logger != nil {
		c.WithLogger(p.Logger)
	}
	if p.Observer != nil {
		c.WithObserver(p.Observer)
	}
	return c, nil
}

// RegisterCatalogLifecycle migrates on start when configured and closes the
// pool on stop.
func RegisterCatalogLifecycle(lc fx.Lifecycle, c *Catalog) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !c.cfg.AutoMigrate {
				return nil
			}
			if err := c.Migrate(ctx); err != nil {
				return err
			}
			c.logInfo(ctx, "catalog tables migrated", map[string]interface{}{"driver": c.cfg.Driver})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			c.logInfo(ctx, "closing catalog", nil)
			return c.Close()
		},
	})
}
