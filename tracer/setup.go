// Package tracer wraps the OpenTelemetry SDK behind the small Tracer and Span
// interfaces used by the resolver, the dispatch pipeline and the metadata
// client.
package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// instrumentationName names the OpenTelemetry tracer spans are created from.
const instrumentationName = "github.com/aalemi-dev/observer-lab"

// TracerClient is the OpenTelemetry-backed Tracer. It is safe for
// concurrent use.
type TracerClient struct {
	tracer     *trace.TracerProvider
	propagator propagation.TextMapPropagator
}

// NewClient builds a tracer provider from cfg and installs it as the global
// provider. Extra provider options, such as a span processor in tests, are
// appended after the ones derived from cfg.
func NewClient(cfg Config, opts ...trace.TracerProviderOption) (*TracerClient, error) {
	return newClientWithContext(context.Background(), cfg, opts...)
}

func newClientWithContext(ctx context.Context, cfg Config, opts ...trace.TracerProviderOption) (*TracerClient, error) {
	var options []trace.TracerProviderOption

	if cfg.EnableExport {
		var clientOpts []otlptracehttp.Option
		if cfg.Endpoint != "" {
			clientOpts = append(clientOpts, otlptracehttp.WithEndpointURL(cfg.Endpoint))
		}
		exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(clientOpts...))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OTLP exporter: %w", err)
		}
		options = append(options, trace.WithBatcher(exporter))
	}

	if cfg.SampleRatio > 0 && cfg.SampleRatio < 1 {
		options = append(options, trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.SampleRatio))))
	}

	options = append(options, trace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))
	options = append(options, opts...)

	tp := trace.NewTracerProvider(options...)
	prop := propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(prop)

	return &TracerClient{tracer: tp, propagator: prop}, nil
}

// Shutdown flushes pending spans and stops the provider.
func (t *TracerClient) Shutdown(ctx context.Context) error {
	if t == nil || t.tracer == nil {
		return nil
	}
	return t.tracer.Shutdown(ctx)
}
