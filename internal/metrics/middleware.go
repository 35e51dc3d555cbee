package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Route classes used as the "class" label.
const (
	ClassLocal    = "local"
	ClassProvider = "provider"
)

// httpBuckets cover quick local handlers as well as provider-bound routes
// that poll an image model or call a vision model for up to a minute or two.
var httpBuckets = []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 45, 60, 90, 120}

type httpMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	now      func() time.Time
}

func newHTTPMetrics() *httpMetrics {
	return &httpMetrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stylist",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   httpBuckets,
			},
			[]string{"class", "method", "path", "status"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stylist",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"class", "method", "path", "status"},
		),
		now: time.Now,
	}
}

var (
	httpMetricsDefault    = newHTTPMetrics()
	httpMetricsRegistered bool
)

// RegisterHTTPMetrics registers the request metrics used by Middleware. Must be called once from main.
func RegisterHTTPMetrics() {
	if httpMetricsRegistered {
		return
	}
	prometheus.MustRegister(httpMetricsDefault.duration)
	prometheus.MustRegister(httpMetricsDefault.requests)
	httpMetricsRegistered = true
}

// Middleware records HTTP request duration and count. Requests matching one of
// providerRoutes (chi route patterns) are labelled ClassProvider.
func Middleware(providerRoutes ...string) func(next http.Handler) http.Handler {
	return httpMetricsDefault.middleware(providerRoutes)
}

func (m *httpMetrics) middleware(providerRoutes []string) func(next http.Handler) http.Handler {
	slow := make(map[string]struct{}, len(providerRoutes))
	for _, p := range providerRoutes {
		slow[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := m.now()

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			path := "unknown"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				path = rc.RoutePattern()
			}
			class := ClassLocal
			if _, ok := slow[path]; ok {
				class = ClassProvider
			}
			status := strconv.Itoa(ww.status)

			m.duration.WithLabelValues(class, r.Method, path, status).Observe(m.now().Sub(start).Seconds())
			m.requests.WithLabelValues(class, r.Method, path, status).Inc()
		})
	}
}

// statusWriter remembers the first status written.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b) //nolint:wrapcheck // delegating to underlying ResponseWriter
}
