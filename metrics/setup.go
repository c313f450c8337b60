// Package metrics exports component operations as Prometheus metrics.
//
// Metrics owns a private registry and an optional HTTP server serving it.
// OperationObserver turns observability.OperationContext notifications from
// the resolver, catalog, metadata client, snapshot loader and dispatch
// pipeline into counters and histograms.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registry and, when enabled, the scrape server.
type Metrics struct {
	// Server is nil when the endpoint is disabled.
	Server *http.Server

	Registry *prometheus.Registry

	namespace  string
	registerer prometheus.Registerer
}

// NewMetrics creates the registry described by cfg. The server is created
// but not started.
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	var registerer prometheus.Registerer = registry
	if cfg.ServiceName != "" {
		registerer = prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registry)
	}

	if cfg.RuntimeCollectors {
		registerer.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	m := &Metrics{
		Registry:   registry,
		namespace:  cfg.Namespace,
		registerer: registerer,
	}

	addr := DefaultAddress
	if cfg.Address != nil {
		addr = *cfg.Address
	}
	if addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		m.Server = &http.Server{Addr: addr, Handler: mux}
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Registerer returns the registerer application metrics should be added to.
// It carries the service label.
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registerer
}
