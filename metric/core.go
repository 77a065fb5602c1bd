package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every Prometheus collector the bridge exposes.
type Metrics struct {
	HealthStatus      prometheus.Gauge
	CommandConnected  prometheus.Gauge
	FeedbackConnected prometheus.Gauge

	EngineCommandDuration *prometheus.HistogramVec
	EngineCommandErrors   *prometheus.CounterVec

	FeedbackEventsTotal *prometheus.CounterVec
	FeedbackReconnects  prometheus.Counter

	PluginInstances prometheus.Gauge
	BundleRescans   prometheus.Counter

	DispatcherRequestsTotal *prometheus.CounterVec
	DispatcherErrorsTotal   *prometheus.CounterVec
}

// NewMetrics constructs every collector under the "modhostbridge" namespace.
func NewMetrics() *Metrics {
	return &Metrics{
		HealthStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "modhostbridge",
			Subsystem: "health",
			Name:      "status",
			Help:      "Bridge health status (0=starting, 1=healthy, 2=degraded, 3=unhealthy)",
		}),

		CommandConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "modhostbridge",
			Subsystem: "engine",
			Name:      "command_connected",
			Help:      "Whether the engine command port is currently reachable",
		}),

		FeedbackConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "modhostbridge",
			Subsystem: "engine",
			Name:      "feedback_connected",
			Help:      "Whether the engine feedback stream is currently connected",
		}),

		EngineCommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "modhostbridge",
				Subsystem: "engine",
				Name:      "command_duration_seconds",
				Help:      "Time spent sending a command to the engine and reading its reply",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		EngineCommandErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modhostbridge",
				Subsystem: "engine",
				Name:      "command_errors_total",
				Help:      "Total engine command failures by command name",
			},
			[]string{"command"},
		),

		FeedbackEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modhostbridge",
				Subsystem: "feedback",
				Name:      "events_total",
				Help:      "Total feedback records parsed by event type",
			},
			[]string{"type"},
		),

		FeedbackReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "modhostbridge",
			Subsystem: "feedback",
			Name:      "reconnects_total",
			Help:      "Total number of feedback stream reconnection attempts",
		}),

		PluginInstances: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "modhostbridge",
			Subsystem: "registry",
			Name:      "plugin_instances",
			Help:      "Number of plugin instances currently loaded",
		}),

		BundleRescans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "modhostbridge",
			Subsystem: "registry",
			Name:      "bundle_rescans_total",
			Help:      "Total number of plugin catalog rescans",
		}),

		DispatcherRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modhostbridge",
				Subsystem: "dispatcher",
				Name:      "requests_total",
				Help:      "Total bus requests handled by socket",
			},
			[]string{"socket"},
		),

		DispatcherErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modhostbridge",
				Subsystem: "dispatcher",
				Name:      "errors_total",
				Help:      "Total bus requests that produced an error response, by socket",
			},
			[]string{"socket"},
		),
	}
}

// RecordHealthStatus mirrors health.Status as a gauge value.
func (m *Metrics) RecordHealthStatus(status int) {
	m.HealthStatus.Set(float64(status))
}

// RecordCommandConnected mirrors the engine command channel's connectivity.
func (m *Metrics) RecordCommandConnected(connected bool) {
	m.CommandConnected.Set(boolToFloat(connected))
}

// RecordFeedbackConnected mirrors the engine feedback channel's connectivity.
func (m *Metrics) RecordFeedbackConnected(connected bool) {
	m.FeedbackConnected.Set(boolToFloat(connected))
}

// RecordEngineCommand records the outcome and latency of one engine command.
func (m *Metrics) RecordEngineCommand(command string, duration time.Duration, err error) {
	m.EngineCommandDuration.WithLabelValues(command).Observe(duration.Seconds())
	if err != nil {
		m.EngineCommandErrors.WithLabelValues(command).Inc()
	}
}

// RecordFeedbackEvent increments the per-type feedback event counter.
func (m *Metrics) RecordFeedbackEvent(eventType string) {
	m.FeedbackEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordFeedbackReconnect increments the reconnect counter.
func (m *Metrics) RecordFeedbackReconnect() {
	m.FeedbackReconnects.Inc()
}

// RecordPluginInstances sets the current instance count gauge.
func (m *Metrics) RecordPluginInstances(count int) {
	m.PluginInstances.Set(float64(count))
}

// RecordBundleRescan increments the rescan counter.
func (m *Metrics) RecordBundleRescan() {
	m.BundleRescans.Inc()
}

// RecordDispatcherRequest records one bus request and whether it errored.
func (m *Metrics) RecordDispatcherRequest(socket string, err error) {
	m.DispatcherRequestsTotal.WithLabelValues(socket).Inc()
	if err != nil {
		m.DispatcherErrorsTotal.WithLabelValues(socket).Inc()
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
