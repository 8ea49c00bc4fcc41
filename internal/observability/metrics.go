package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExternalFetchLatency records upstream provider call latency by provider.
	ExternalFetchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_external_fetch_latency_seconds",
		Help:    "External provider call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	// ExternalFetchErrors counts upstream provider failures by provider.
	ExternalFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_external_fetch_errors_total",
		Help: "Total number of external provider failures",
	}, []string{"provider"})

	// LocationFallbacks counts geocode-to-IP fallbacks by reason.
	LocationFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_location_fallbacks_total",
		Help: "Total number of location resolutions that fell back to IP lookup",
	}, []string{"reason"})

	// MailDeliveries counts contact-form relay attempts by outcome.
	MailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_mail_deliveries_total",
		Help: "Total number of contact message deliveries by outcome",
	}, []string{"outcome"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// ObserveExternalFetch records the latency of one provider call and, when err
// is non-nil, increments its error counter.
func ObserveExternalFetch(provider string, start time.Time, err error) {
	ExternalFetchLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		ExternalFetchErrors.WithLabelValues(provider).Inc()
	}
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
