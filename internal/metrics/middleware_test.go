package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	return func() time.Time {
		t := base.Add(time.Duration(calls) * step)
		calls++
		return t
	}
}

func newTestRouter(m *httpMetrics, providerRoutes ...string) chi.Router {
	r := chi.NewRouter()
	r.Use(m.middleware(providerRoutes))
	r.Post("/recommendations", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/search/limit", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})
	r.Get("/search/history", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	return r
}

// bucketCounts returns cumulative counts keyed by upper bound for the single
// duration series in reg.
func bucketCounts(t *testing.T, reg *prometheus.Registry) (map[float64]uint64, map[string]string) {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "stylist_http_request_duration_seconds" {
			continue
		}
		if len(mf.GetMetric()) != 1 {
			t.Fatalf("series = %d, want 1", len(mf.GetMetric()))
		}
		metric := mf.GetMetric()[0]
		labels := map[string]string{}
		for _, lp := range metric.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		counts := map[float64]uint64{}
		for _, b := range metric.GetHistogram().GetBucket() {
			counts[b.GetUpperBound()] = b.GetCumulativeCount()
		}
		return counts, labels
	}
	t.Fatal("duration histogram not gathered")
	return nil, nil
}

func TestMiddleware_LongProviderRequestLandsInMinuteBucket(t *testing.T) {
	m := newHTTPMetrics()
	m.now = steppingClock(45 * time.Second)
	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(m.duration, m.requests)

	r := newTestRouter(m, "/recommendations", "/replicate")
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/recommendations", http.NoBody))

	counts, labels := bucketCounts(t, reg)
	if labels["class"] != ClassProvider || labels["path"] != "/recommendations" || labels["status"] != "200" {
		t.Errorf("labels = %v", labels)
	}
	if counts[30] != 0 {
		t.Errorf("le=30 count = %d, want 0", counts[30])
	}
	if counts[60] != 1 || counts[120] != 1 {
		t.Errorf("le=60 count = %d, le=120 count = %d, want 1 and 1", counts[60], counts[120])
	}
}

func TestMiddleware_LocalRouteClassAndStatus(t *testing.T) {
	m := newHTTPMetrics()
	m.now = steppingClock(2 * time.Millisecond)
	r := newTestRouter(m, "/recommendations")

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/search/limit", http.NoBody))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/search/history", http.NoBody))

	if v := testutil.ToFloat64(m.requests.WithLabelValues(ClassLocal, "GET", "/search/limit", "200")); v != 1 {
		t.Errorf("/search/limit 200 count = %f, want 1", v)
	}
	if v := testutil.ToFloat64(m.requests.WithLabelValues(ClassLocal, "GET", "/search/history", "401")); v != 1 {
		t.Errorf("/search/history 401 count = %f, want 1", v)
	}
}

func TestMiddleware_UnmatchedRouteIsUnknown(t *testing.T) {
	m := newHTTPMetrics()
	m.now = steppingClock(time.Millisecond)
	r := newTestRouter(m)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/no/such/route", http.NoBody))

	if v := testutil.ToFloat64(m.requests.WithLabelValues(ClassLocal, "GET", "unknown", "404")); v != 1 {
		t.Errorf("unknown 404 count = %f, want 1", v)
	}
}

func TestStatusWriter_KeepsFirstStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	w := &statusWriter{ResponseWriter: rr, status: http.StatusOK}
	_, _ = w.Write([]byte("body"))
	w.WriteHeader(http.StatusTeapot)
	if w.status != http.StatusOK {
		t.Errorf("status = %d, want 200 after implicit header", w.status)
	}
}

func TestRegisterHTTPMetrics_Idempotent(t *testing.T) {
	RegisterHTTPMetrics()
	RegisterHTTPMetrics()
}
