// Package prometheus implements the metrics interfaces with Prometheus
// collectors. Importing it (usually blank, from main) registers the
// constructors with pkg/metrics.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mrusso91/aiofile/pkg/aio"
	"github.com/mrusso91/aiofile/pkg/metrics"
)

func init() {
	metrics.RegisterIOMetricsConstructor(NewIOMetrics)
}

// ioMetrics is the Prometheus implementation of aio.Metrics.
type ioMetrics struct {
	handlesBound  prometheus.Counter
	handlesClosed prometheus.Counter
	liveHandles   prometheus.Gauge

	submissions       *prometheus.CounterVec
	inlineCompletions *prometheus.CounterVec
	completions       *prometheus.CounterVec
	failures          *prometheus.CounterVec
	submittedBytes    *prometheus.CounterVec
	transferredBytes  *prometheus.CounterVec

	pendingRequests *prometheus.GaugeVec
	queuedBytes     *prometheus.GaugeVec
}

// NewIOMetrics creates a Prometheus-backed aio.Metrics instance. Returns nil
// if metrics are not enabled.
func NewIOMetrics() aio.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()
	dirs := []string{"direction"}

	return &ioMetrics{
		handlesBound: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "aiofile_handles_bound_total",
			Help: "Total number of file handles bound to the loop",
		}),
		handlesClosed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "aiofile_handles_closed_total",
			Help: "Total number of handles that reached their terminal close",
		}),
		liveHandles: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "aiofile_live_handles",
			Help: "Handles currently bound and not yet closed",
		}),
		submissions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "aiofile_submissions_total",
			Help: "Total accepted request submissions by direction",
		}, dirs),
		inlineCompletions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "aiofile_inline_completions_total",
			Help: "Submissions the backend resolved synchronously",
		}, dirs),
		completions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "aiofile_completions_total",
			Help: "Total dispatched completions by direction",
		}, dirs),
		failures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "aiofile_completion_failures_total",
			Help: "Completions that carried an error status",
		}, dirs),
		submittedBytes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "aiofile_submitted_bytes_total",
			Help: "Total buffer bytes handed to the backend",
		}, dirs),
		transferredBytes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "aiofile_transferred_bytes_total",
			Help: "Total bytes reported transferred by completions",
		}, dirs),
		pendingRequests: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "aiofile_pending_requests",
			Help: "Requests submitted but not yet dispatched",
		}, dirs),
		queuedBytes: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "aiofile_queued_bytes",
			Help: "Buffer bytes accepted by the backend and not yet completed",
		}, dirs),
	}
}

// ObserveBind implements aio.Metrics.
func (m *ioMetrics) ObserveBind() {
	m.handlesBound.Inc()
	m.liveHandles.Inc()
}

// ObserveSubmit implements aio.Metrics.
func (m *ioMetrics) ObserveSubmit(dir aio.Direction, bytes int, inline bool) {
	d := dir.String()
	m.submissions.WithLabelValues(d).Inc()
	m.submittedBytes.WithLabelValues(d).Add(float64(bytes))
	if inline {
		m.inlineCompletions.WithLabelValues(d).Inc()
	}
}

// ObserveComplete implements aio.Metrics.
func (m *ioMetrics) ObserveComplete(dir aio.Direction, transferred int, failed bool) {
	d := dir.String()
	m.completions.WithLabelValues(d).Inc()
	if failed {
		m.failures.WithLabelValues(d).Inc()
	}
	if transferred > 0 {
		m.transferredBytes.WithLabelValues(d).Add(float64(transferred))
	}
}

// ObserveQueueDepth implements aio.Metrics.
func (m *ioMetrics) ObserveQueueDepth(pendingReads, pendingWrites int, readQueueBytes, writeQueueBytes int64) {
	m.pendingRequests.WithLabelValues("read").Set(float64(pendingReads))
	m.pendingRequests.WithLabelValues("write").Set(float64(pendingWrites))
	m.queuedBytes.WithLabelValues("read").Set(float64(readQueueBytes))
	m.queuedBytes.WithLabelValues("write").Set(float64(writeQueueBytes))
}

// ObserveClose implements aio.Metrics.
func (m *ioMetrics) ObserveClose() {
	m.handlesClosed.Inc()
	m.liveHandles.Dec()
}
