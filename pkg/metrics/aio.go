package metrics

import (
	"github.com/mrusso91/aiofile/pkg/aio"
)

// NewIOMetrics creates a Prometheus-backed aio.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called); a nil
// Metrics in aio.LoopConfig disables instrumentation with zero overhead.
func NewIOMetrics() aio.Metrics {
	if !IsEnabled() || newPrometheusIOMetrics == nil {
		return nil
	}
	return newPrometheusIOMetrics()
}

// newPrometheusIOMetrics is registered by pkg/metrics/prometheus during its
// package initialization. The indirection keeps this package free of an
// import cycle while the prometheus package can import both metrics and aio.
var newPrometheusIOMetrics func() aio.Metrics

// RegisterIOMetricsConstructor registers the Prometheus constructor. Called
// by pkg/metrics/prometheus.
func RegisterIOMetricsConstructor(constructor func() aio.Metrics) {
	newPrometheusIOMetrics = constructor
}
