package dispatch

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/fx"

	"github.com/aalemi-dev/observer-lab/observability"
	"github.com/aalemi-dev/observer-lab/resolver"
	"github.com/aalemi-dev/observer-lab/tracer"
)

// FXModule provides a *Pipeline and runs it for the lifetime of the app.
//
// Kafka reader and writer are built from Config unless a Reader or Writer
// is already in the graph.
var FXModule = fx.Module("dispatch",
	fx.Provide(NewPipelineWithDI),
	fx.Invoke(RegisterPipelineLifecycle),
)

// Params groups the dependencies of NewPipelineWithDI.
type Params struct {
	fx.In

	Config   Config
	Resolver *resolver.Resolver
	Reader   Reader                 `optional:"true"`
	Writer   Writer                 `optional:"true"`
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Tracer   tracer.Tracer          `optional:"true"`
}

// NewPipelineWithDI builds a Pipeline from injected dependencies.
func NewPipelineWithDI(p Params) (*Pipeline, error) {
	reader, writer := p.Reader, p.Writer
	if reader == nil {
		r, err := NewKafkaReader(p.Config, p.Logger)
		if err != nil {
			return nil, err
		}
		reader = r
	}
	if writer == nil {
		w, err := NewKafkaWriter(p.Config, p.Logger)
		if err != nil {
			_ = reader.Close()
			return nil, err
		}
		writer = w
	}

	pipeline, err := NewPipeline(p.Config, p.Resolver, reader, writer)
	if err != nil {
		return nil, err
	}
	if p.Logger != nil {
		pipeline.WithLogger(p.Logger)
	}
	if p.Observer != nil {
		pipeline.WithObserver(p.Observer)
	}
	if p.Tracer != nil {
		pipeline.WithTracer(p.Tracer)
	}
	return pipeline, nil
}

// LifecycleParams groups the dependencies of RegisterPipelineLifecycle.
type LifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Pipeline   *Pipeline
}

// RegisterPipelineLifecycle starts Run on start. On stop it cancels the
// loop, waits for it and closes the reader and writer. A pipeline that
// fails while running shuts the application down.
func RegisterPipelineLifecycle(params LifecycleParams) {
	var (
		cancel context.CancelFunc
		done   = make(chan struct{})
	)
	pl := params.Pipeline

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var runCtx context.Context
			runCtx, cancel = context.WithCancel(context.Background())
			go func() {
				defer close(done)
				if err := pl.Run(runCtx); err != nil {
					pl.logError(runCtx, "dispatch pipeline failed", err, nil)
					_ = params.Shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
				select {
				case <-done:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return pl.Close()
		},
	})
}

// Close closes the reader and the writer.
func (p *Pipeline) Close() error {
	var errs *multierror.Error
	if err := p.reader.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := p.writer.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}
