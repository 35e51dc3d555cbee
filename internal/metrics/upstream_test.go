package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserver_Observe(t *testing.T) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "t_requests"}, []string{"provider", "operation", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "t_duration"}, []string{"provider", "operation"})

	o := Observer{Requests: requests, Duration: duration, Provider: "serper"}
	o.Observe("shopping", "ok", 0.2)
	o.Observe("shopping", "error", 0.1)
	o.Observe("shopping", "ok", 0.3)

	if v := testutil.ToFloat64(requests.WithLabelValues("serper", "shopping", "ok")); v != 2 {
		t.Errorf("ok count = %f, want 2", v)
	}
	if v := testutil.ToFloat64(requests.WithLabelValues("serper", "shopping", "error")); v != 1 {
		t.Errorf("error count = %f, want 1", v)
	}
	if n := testutil.CollectAndCount(duration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestObserver_ZeroValueIsNoop(t *testing.T) {
	var o Observer
	o.Observe("anything", "ok", 1) // must not panic
}

func TestRegisterUpstreamMetrics_Idempotent(t *testing.T) {
	RegisterUpstreamMetrics()
	RegisterUpstreamMetrics()
}
