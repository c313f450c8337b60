package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/aalemi-dev/observer-lab/catalog"
	"github.com/aalemi-dev/observer-lab/dispatch"
	"github.com/aalemi-dev/observer-lab/logger"
	"github.com/aalemi-dev/observer-lab/metaclient"
	"github.com/aalemi-dev/observer-lab/metadata"
	"github.com/aalemi-dev/observer-lab/metrics"
	"github.com/aalemi-dev/observer-lab/registry"
	"github.com/aalemi-dev/observer-lab/resolver"
	"github.com/aalemi-dev/observer-lab/tracer"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Resolve candidates streamed from Kafka until interrupted",
		Long: `Runs the dispatch pipeline: candidate class names are read from
OBSERVER_KAFKA_INPUT_TOPIC and one resolution per candidate is written to
OBSERVER_KAFKA_OUTPUT_TOPIC. The observer registry is loaded from
OBSERVER_SNAPSHOT_PATH or the object store; class metadata comes from the
catalog database, a metadata HTTP service or the snapshot itself.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root.envFile)
			if err != nil {
				return err
			}
			if source != "" {
				cfg.MetadataSource = source
			}
			if err := cfg.validate(); err != nil {
				return err
			}

			app := fx.New(appOptions(cfg), fxLogger())
			if err := app.Err(); err != nil {
				return err
			}
			return runApp(cmd.Context(), app)
		},
	}
	cmd.Flags().StringVar(&source, "metadata", "", "metadata source: catalog, http or snapshot (default from OBSERVER_METADATA_SOURCE)")
	return cmd
}

// appOptions assembles the serve application for cfg.
func appOptions(cfg config) fx.Option {
	return fx.Options(
		fx.Supply(
			cfg.Logger,
			cfg.Tracer,
			cfg.Metrics,
			cfg.Resolver,
			cfg.Registry,
			cfg.Dispatch,
		),
		logger.FXModule,
		tracer.FXModule,
		metrics.FXModule,
		componentLoggers(),
		registry.FXModule,
		metadataOption(cfg),
		resolver.FXModule,
		dispatch.FXModule,
	)
}

// fxLogger routes fx lifecycle events to the application logger.
func fxLogger() fx.Option {
	return fx.WithLogger(func(l *logger.LoggerClient) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: l.Zap.Named("fx")}
	})
}

// componentLoggers hands each package a named child of the application
// logger through its local Logger interface.
func componentLoggers() fx.Option {
	return fx.Provide(
		func(l *logger.LoggerClient) resolver.Logger { return l.Named("resolver") },
		func(l *logger.LoggerClient) registry.Logger { return l.Named("registry") },
		func(l *logger.LoggerClient) catalog.Logger { return l.Named("catalog") },
		func(l *logger.LoggerClient) metaclient.Logger { return l.Named("metaclient") },
		func(l *logger.LoggerClient) dispatch.Logger { return l.Named("dispatch") },
	)
}

func metadataOption(cfg config) fx.Option {
	switch cfg.MetadataSource {
	case sourceHTTP:
		return fx.Options(fx.Supply(cfg.Metadata), metaclient.FXModule)
	case sourceSnapshot:
		return fx.Provide(func(s *registry.Snapshot) (metadata.Service, error) {
			index, err := s.Index(metadata.WithRootType(cfg.Resolver.UniversalType))
			if err != nil {
				return nil, fmt.Errorf("snapshot classes: %w", err)
			}
			return index, nil
		})
	}
	return fx.Options(fx.Supply(cfg.Catalog), catalog.FXModule)
}

// runApp starts app, waits for ctx to end or the app to ask for shutdown,
// then stops it.
func runApp(ctx context.Context, app *fx.App) error {
	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	exitCode := 0
	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		exitCode = sig.ExitCode
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		return err
	}
	if exitCode != 0 {
		return fmt.Errorf("application exited with code %d", exitCode)
	}
	return nil
}
