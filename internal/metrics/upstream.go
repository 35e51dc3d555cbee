package metrics

import "github.com/prometheus/client_golang/prometheus"

// Upstream provider and quota Prometheus metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stylist",
			Name:      "upstream_requests_total",
			Help:      "Total number of requests to external providers",
		},
		[]string{"provider", "operation", "status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stylist",
			Name:      "upstream_request_duration_seconds",
			Help:      "External provider request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "operation"},
	)

	QuotaFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stylist",
			Name:      "quota_fallback_total",
			Help:      "Quota operations served by the in-memory fallback",
		},
		[]string{"operation"},
	)

	SearchesTrackedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stylist",
			Name:      "searches_tracked_total",
			Help:      "Total number of tracked searches",
		},
	)

	RecommendationFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stylist",
			Name:      "recommendation_fallback_total",
			Help:      "Recommendations answered with the fallback style",
		},
		[]string{"reason"}, // "model_error" / "invalid_response"
	)
)

var upstreamMetricsRegistered bool

// RegisterUpstreamMetrics registers provider and quota metrics. Must be called once from main.
func RegisterUpstreamMetrics() {
	if upstreamMetricsRegistered {
		return
	}
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamRequestDuration)
	prometheus.MustRegister(QuotaFallbackTotal)
	prometheus.MustRegister(SearchesTrackedTotal)
	prometheus.MustRegister(RecommendationFallbackTotal)
	upstreamMetricsRegistered = true
}

// Observer records request outcome and latency for one provider.
// A zero Observer is a no-op.
type Observer struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Provider string
}

// NewObserver binds the package-level upstream metrics to provider.
func NewObserver(provider string) Observer {
	return Observer{
		Requests: UpstreamRequestsTotal,
		Duration: UpstreamRequestDuration,
		Provider: provider,
	}
}

// Observe records one call. status is "ok" or "error".
func (o Observer) Observe(operation, status string, seconds float64) {
	if o.Requests != nil {
		o.Requests.WithLabelValues(o.Provider, operation, status).Inc()
	}
	if o.Duration != nil {
		o.Duration.WithLabelValues(o.Provider, operation).Observe(seconds)
	}
}
