package metaclient

import (
	"go.uber.org/fx"

	"github.com/aalemi-dev/observer-lab/metadata"
	"github.com/aalemi-dev/observer-lab/observability"
	"github.com/aalemi-dev/observer-lab/tracer"
)

// FXModule provides *Client and metadata.Service.
var FXModule = fx.Module("metaclient",
	fx.Provide(
		NewClientWithDI,
		fx.Annotate(
			func(c *Client) metadata.Service { return c },
			fx.As(new(metadata.Service)),
		),
	),
)

// Params groups the dependencies of NewClientWithDI.
type Params struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Tracer   tracer.Tracer          `optional:"true"`
}

// NewClientWithDI builds a Client from injected dependencies.
func NewClientWithDI(p Params) (*Client, error) {
	c, err := NewClient(p.Config)
	if err != nil {
		return nil, err
	}
	if p.Logger != nil {
		c.WithLogger(p.Logger)
	}
	if p.Observer != nil {
		c.WithObserver(p.Observer)
	}
	if p.Tracer != nil {
		c.WithTracer(p.Tracer)
	}
	return c, nil
}
