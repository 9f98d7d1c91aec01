package openstates

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes recorded in openstates_client_requests_total.
const (
	outcomeSuccess        = "success"
	outcomeMissingKey     = "missing_key"
	outcomeTransportError = "transport_error"
	outcomeHTTPError      = "http_error"
	outcomeDecodeError    = "decode_error"
	outcomeStatusError    = "status_error"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "openstates_client",
			Name:      "requests_total",
			Help:      "Open States API calls by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "openstates_client",
			Name:      "request_duration_seconds",
			Help:      "Round-trip time of Open States API requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

func observeRequest(endpoint, outcome string, start time.Time) {
	requestsTotal.WithLabelValues(endpoint, outcome).Inc()
	if !start.IsZero() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}
