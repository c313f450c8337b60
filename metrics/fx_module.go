package metrics

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"

	"github.com/aalemi-dev/observer-lab/logger"
	"github.com/aalemi-dev/observer-lab/observability"
)

// FXModule provides *Metrics, *OperationObserver and, through the latter,
// observability.Observer. The scrape server runs for the app's lifetime.
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		NewOperationObserver,
		fx.Annotate(
			func(o *OperationObserver) observability.Observer { return o },
			fx.As(new(observability.Observer)),
		),
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// LifecycleParams groups the dependencies of RegisterMetricsLifecycle.
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Metrics   *Metrics
	Logger    logger.Logger `optional:"true"`
}

// RegisterMetricsLifecycle starts the scrape server in the background on
// app start and shuts it down on stop.
func RegisterMetricsLifecycle(p LifecycleParams) {
	srv := p.Metrics.Server
	if srv == nil {
		return
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if p.Logger != nil {
					p.Logger.Info("starting metrics server", nil, map[string]interface{}{"address": srv.Addr})
				}
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && p.Logger != nil {
					p.Logger.Error("metrics server stopped", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
