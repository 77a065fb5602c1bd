package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// MetricsRegistry owns the Prometheus registry and the bridge's core
// collectors. There is exactly one per process.
type MetricsRegistry struct {
	prometheusRegistry *prometheus.Registry
	metrics            *Metrics
}

// NewMetricsRegistry creates a registry with every core collector and the
// standard Go runtime/process collectors registered.
func NewMetricsRegistry() *MetricsRegistry {
	prometheusRegistry := prometheus.NewRegistry()

	r := &MetricsRegistry{
		prometheusRegistry: prometheusRegistry,
		metrics:            NewMetrics(),
	}
	r.registerCoreMetrics()

	prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// PrometheusRegistry returns the underlying Prometheus registry, for wiring
// into an HTTP handler.
func (r *MetricsRegistry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// CoreMetrics returns the bridge's collectors for recording.
func (r *MetricsRegistry) CoreMetrics() *Metrics {
	return r.metrics
}

func (r *MetricsRegistry) registerCoreMetrics() {
	r.prometheusRegistry.MustRegister(
		r.metrics.HealthStatus,
		r.metrics.CommandConnected,
		r.metrics.FeedbackConnected,
		r.metrics.EngineCommandDuration,
		r.metrics.EngineCommandErrors,
		r.metrics.FeedbackEventsTotal,
		r.metrics.FeedbackReconnects,
		r.metrics.PluginInstances,
		r.metrics.BundleRescans,
		r.metrics.DispatcherRequestsTotal,
		r.metrics.DispatcherErrorsTotal,
	)
}
