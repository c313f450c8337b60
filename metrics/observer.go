package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cast"

	"github.com/aalemi-dev/observer-lab/observability"
)

var durationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5}

// OperationObserver records every observed operation in Prometheus.
//
// Exposed series (before the namespace prefix):
//
//	operations_total{component,operation,outcome}
//	operation_duration_seconds{component,operation}
//	metadata_cache_total{component,result}     from Metadata["cache_hit"]
//	resolved_observers{operation}              resolver Size
type OperationObserver struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	cache      *prometheus.CounterVec
	matched    *prometheus.HistogramVec
}

// NewOperationObserver registers the operation metrics on m.
func NewOperationObserver(m *Metrics) (*OperationObserver, error) {
	o := &OperationObserver{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "operations_total",
			Help:      "Completed operations by component, operation and outcome.",
		}, []string{"component", "operation", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      "operation_duration_seconds",
			Help:      "Operation wall time.",
			Buckets:   durationBuckets,
		}, []string{"component", "operation"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "metadata_cache_total",
			Help:      "Metadata cache lookups by result.",
		}, []string{"component", "result"}),
		matched: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      "resolved_observers",
			Help:      "Observers returned per successful resolution.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}, []string{"operation"}),
	}

	for _, c := range []prometheus.Collector{o.operations, o.durations, o.cache, o.matched} {
		if err := m.registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// ObserveOperation implements observability.Observer.
func (o *OperationObserver) ObserveOperation(op observability.OperationContext) {
	outcome := "success"
	if op.Error != nil {
		outcome = "error"
	}

	o.operations.WithLabelValues(op.Component, op.Operation, outcome).Inc()
	o.durations.WithLabelValues(op.Component, op.Operation).Observe(op.Duration.Seconds())

	if v, ok := op.Metadata["cache_hit"]; ok {
		result := "miss"
		if cast.ToBool(v) {
			result = "hit"
		}
		o.cache.WithLabelValues(op.Component, result).Inc()
	}

	if op.Component == observability.ComponentResolver && op.Error == nil {
		o.matched.WithLabelValues(op.Operation).Observe(float64(op.Size))
	}
}
