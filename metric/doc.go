// Package metric collects Prometheus metrics for the bridge process and
// serves them over HTTP.
//
//	registry := metric.NewMetricsRegistry()
//	go metric.NewServer(9090, "/metrics", registry).Start()
//
//	core := registry.CoreMetrics()
//	core.RecordHealthStatus(int(health.Healthy))
//	core.RecordEngineCommand("add", elapsed, err)
//
// All collectors live under the "modhostbridge" namespace, grouped by
// subsystem: health, engine, feedback, registry, dispatcher.
package metric
