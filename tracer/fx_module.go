package tracer

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides *TracerClient and Tracer from a Config supplied by the
// application, and shuts the provider down when the app stops.
var FXModule = fx.Module("tracer",
	fx.Provide(
		func(cfg Config) (*TracerClient, error) { return NewClient(cfg) },
		fx.Annotate(
			func(t *TracerClient) Tracer { return t },
			fx.As(new(Tracer)),
		),
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle flushes and stops the provider on app stop.
func RegisterTracerLifecycle(lc fx.Lifecycle, client *TracerClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Shutdown(ctx)
		},
	})
}
