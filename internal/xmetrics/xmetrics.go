// Package xmetrics instruments the driver runtime with Prometheus counters
// and gauges. It is a trimmed, re-targeted descendant of the teacher's
// metrics/metrics.go (HTTP/DB/exchange counter families) and
// metrics/ws_metrics.go (WSMetricsRecorder) — the gin/promhttp HTTP
// exposition surface those files also carried is app-layer and out of this
// library's scope (spec.md §1); callers that want a /metrics endpoint mount
// promhttp.Handler() against the default registry themselves.
package xmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal mirrors the teacher's ExchangeAPIRequestsTotal.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xchange_requests_total",
			Help: "Total number of venue API requests.",
		},
		[]string{"venue", "path", "status"},
	)

	// RequestDuration mirrors the teacher's ExchangeAPIRequestDuration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xchange_request_duration_seconds",
			Help:    "Venue API request duration in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"venue", "path"},
	)

	// RateLimitWaitSeconds mirrors the teacher's rate-limiter instrumentation
	// intent (ExchangeRateLimitHits) but also tracks wait latency, since
	// spec.md §4.3's consume(weight) blocks rather than just rejecting.
	RateLimitWaitSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xchange_rate_limit_wait_seconds",
			Help:    "Time spent waiting for rate-limiter capacity.",
			Buckets: []float64{0, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"venue"},
	)

	// RateLimitHitsTotal mirrors the teacher's ExchangeRateLimitHits.
	RateLimitHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xchange_rate_limit_hits_total",
			Help: "Total number of 429/418 rate-limit responses observed.",
		},
		[]string{"venue"},
	)

	// WSConnectionsTotal mirrors the teacher's WSConnectionsTotal.
	WSConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xchange_ws_connections_total",
			Help: "Total number of WebSocket connection attempts.",
		},
		[]string{"venue", "status"},
	)

	// WSReconnectsTotal mirrors the teacher's WSReconnectsTotal.
	WSReconnectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xchange_ws_reconnects_total",
			Help: "Total number of WebSocket reconnection attempts.",
		},
		[]string{"venue"},
	)

	// WSMessagesTotal mirrors the teacher's WSMessagesTotal.
	WSMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xchange_ws_messages_total",
			Help: "Total number of WebSocket messages received.",
		},
		[]string{"venue"},
	)

	// WSActiveConnections mirrors the teacher's WSActiveConnections.
	WSActiveConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "xchange_ws_active_connections",
			Help: "Number of currently connected WebSocket transports.",
		},
		[]string{"venue"},
	)
)

// Recorder is a per-venue facade over the package-level collectors, the way
// the teacher's WSMetricsRecorder wraps venue/type-scoped label values.
type Recorder struct {
	Venue string
}

func NewRecorder(venue string) *Recorder { return &Recorder{Venue: venue} }

func (r *Recorder) ObserveRequest(path string, status string, d time.Duration) {
	RequestsTotal.WithLabelValues(r.Venue, path, status).Inc()
	RequestDuration.WithLabelValues(r.Venue, path).Observe(d.Seconds())
}

func (r *Recorder) ObserveRateLimitWait(d time.Duration) {
	RateLimitWaitSeconds.WithLabelValues(r.Venue).Observe(d.Seconds())
}

func (r *Recorder) RecordRateLimitHit() {
	RateLimitHitsTotal.WithLabelValues(r.Venue).Inc()
}

func (r *Recorder) RecordWSConnect(success bool) {
	status := "success"
	if !success {
		status = "failed"
	}
	WSConnectionsTotal.WithLabelValues(r.Venue, status).Inc()
	if success {
		WSActiveConnections.WithLabelValues(r.Venue).Inc()
	}
}

func (r *Recorder) RecordWSDisconnect() {
	WSActiveConnections.WithLabelValues(r.Venue).Dec()
}

func (r *Recorder) RecordWSReconnect() {
	WSReconnectsTotal.WithLabelValues(r.Venue).Inc()
}

func (r *Recorder) RecordWSMessage() {
	WSMessagesTotal.WithLabelValues(r.Venue).Inc()
}
