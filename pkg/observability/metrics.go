// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the sellerdesk bot.
package observability

import "github.com/prometheus/client_golang/prometheus"

// UpstreamBuckets defines histogram buckets suited for marketplace API
// latencies, ranging from 50ms to 30s.
var UpstreamBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sellerdesk_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sellerdesk_request_duration_seconds",
			Help:    "Request duration",
			Buckets: UpstreamBuckets,
		},
		[]string{"method"},
	)

	// DialogEventsTotal counts processed dialog events by state and outcome.
	DialogEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sellerdesk_dialog_events_total",
			Help: "Dialog events",
		},
		[]string{"state", "outcome"},
	)

	// UpstreamRequestsTotal counts requests sent to the marketplace API.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sellerdesk_upstream_requests_total",
			Help: "Upstream requests",
		},
		[]string{"path", "status"},
	)

	// UpstreamRequestDuration records marketplace API latency in seconds.
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sellerdesk_upstream_latency_seconds",
			Help:    "Upstream latency",
			Buckets: UpstreamBuckets,
		},
		[]string{"path"},
	)

	// TokenRefreshesTotal counts successful access token exchanges.
	TokenRefreshesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sellerdesk_token_refreshes_total",
			Help: "Token refreshes",
		},
	)

	// ExportsTotal counts generated statistics workbooks by outcome.
	ExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sellerdesk_exports_total",
			Help: "Statistics exports",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		DialogEventsTotal,
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		TokenRefreshesTotal,
		ExportsTotal,
	)
}
