// Package metrics holds the Prometheus collectors for the roster service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all Prometheus metric collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Sync writer metrics.
	SyncWritesTotal   prometheus.Counter
	SyncRetriesTotal  prometheus.Counter
	SyncFailuresTotal prometheus.Counter

	// Editor state.
	DirtyEntries prometheus.GaugeFunc
}

// New creates and registers all collectors. dirtyCount reports the number
// of unsaved roster entries; nil disables the gauge.
func New(dirtyCount func() int) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roster_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		SyncWritesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roster_sync_writes_total",
			Help: "Total remote entry write attempts.",
		}),

		SyncRetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roster_sync_retries_total",
			Help: "Total remote entry write retries.",
		}),

		SyncFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roster_sync_failures_total",
			Help: "Remote entry writes that exhausted all attempts.",
		}),
	}

	if dirtyCount != nil {
		m.DirtyEntries = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "roster_dirty_entries",
			Help: "Number of locally staged entries not yet saved.",
		}, func() float64 { return float64(dirtyCount()) })
		reg.MustRegister(m.DirtyEntries)
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SyncWritesTotal,
		m.SyncRetriesTotal,
		m.SyncFailuresTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the private registry for the metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, pathPattern string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
}

// WriteAttempt implements roster.WriteRecorder.
func (m *Metrics) WriteAttempt() { m.SyncWritesTotal.Inc() }

// WriteRetry implements roster.WriteRecorder.
func (m *Metrics) WriteRetry() { m.SyncRetriesTotal.Inc() }

// WriteFailure implements roster.WriteRecorder.
func (m *Metrics) WriteFailure() { m.SyncFailuresTotal.Inc() }
