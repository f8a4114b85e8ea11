// Package metrics collects Prometheus metrics for upstream CalMate API calls.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the subset the API client depends on.
type Recorder interface {
	RecordUpstreamCall(operation string, statusCode int, duration time.Duration)
	RecordUpstreamError(operation string, kind string)
}

// Collector records upstream call outcomes and latencies.
type Collector struct {
	calls    *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	sessions prometheus.Gauge
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calmate_upstream_requests_total",
			Help: "Upstream API requests by operation and status code.",
		}, []string{"operation", "status_code"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calmate_upstream_errors_total",
			Help: "Upstream API failures by operation and error kind.",
		}, []string{"operation", "kind"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "calmate_upstream_latency_seconds",
			Help:    "Upstream API request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "calmate_active_sessions",
			Help: "Browser sessions currently held by the session store.",
		}),
	}

	reg.MustRegister(c.calls, c.errors, c.latency, c.sessions)

	return c
}

func (c *Collector) RecordUpstreamCall(operation string, statusCode int, duration time.Duration) {
	c.calls.WithLabelValues(operation, strconv.Itoa(statusCode)).Inc()
	c.latency.WithLabelValues(operation).Observe(duration.Seconds())
}

func (c *Collector) RecordUpstreamError(operation string, kind string) {
	c.errors.WithLabelValues(operation, kind).Inc()
}

func (c *Collector) SessionOpened() {
	c.sessions.Inc()
}

func (c *Collector) SessionClosed() {
	c.sessions.Dec()
}

// Handler returns the HTTP handler serving the Prometheus scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopRecorder discards all measurements. Used by tests.
type NopRecorder struct{}

func (NopRecorder) RecordUpstreamCall(string, int, time.Duration) {}

func (NopRecorder) RecordUpstreamError(string, string) {}
