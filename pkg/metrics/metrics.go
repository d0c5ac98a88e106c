// Package metrics provides Prometheus instrumentation for rlqueue components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for rlqueue components.
type Registry struct {
	// Queue operation metrics
	QueueOps         *prometheus.CounterVec
	QueueRateLimited *prometheus.CounterVec
	QueueFull        *prometheus.CounterVec
	QueueEmpty       *prometheus.CounterVec
	QueueWaitTime    *prometheus.HistogramVec
	QueueDepth       *prometheus.GaugeVec

	// Admission gate metrics
	AdmissionRecorded *prometheus.GaugeVec
}

// DefaultRegistry is the default metrics registry used by rlqueue components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Enabled: true, Registry: reg})
}

// NewRegistryWithConfig creates a new metrics registry honoring the
// config's registerer, namespace override, and additional constant labels.
func NewRegistryWithConfig(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(config.Labels) > 0 {
		reg = prometheus.WrapRegistererWith(config.Labels, reg)
	}
	namespace := config.Namespace
	if namespace == "" {
		namespace = "rlqueue"
	}

	factory := promauto.With(reg)

	return &Registry{
		QueueOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "operations_total",
				Help:      "Total number of queue operations by outcome",
			},
			[]string{"op", "outcome", "queue_name"},
		),

		QueueRateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "rate_limited_total",
				Help:      "Total number of operations rejected by the rate limit",
			},
			[]string{"op", "queue_name"},
		),

		QueueFull: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "full_total",
				Help:      "Total number of puts that failed on queue capacity",
			},
			[]string{"queue_name"},
		),

		QueueEmpty: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "empty_total",
				Help:      "Total number of gets that failed on an empty queue",
			},
			[]string{"queue_name"},
		),

		QueueWaitTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "wait_duration_seconds",
				Help:      "Time spent in a put or get, including rate limit waits",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op", "queue_name"},
		),

		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "depth",
				Help:      "Current number of items in the queue",
			},
			[]string{"queue_name"},
		),

		AdmissionRecorded: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "admission",
				Name:      "recorded_calls",
				Help:      "Number of calls currently recorded in the sliding window",
			},
			[]string{"side", "queue_name"},
		),
	}
}
