package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounterAndGauge(t *testing.T) {
	r := New()
	c := r.Counter("searches_total", "total searches")
	c.Inc()
	c.Add(2)
	if c.Value() != 3 {
		t.Fatalf("counter = %d, want 3", c.Value())
	}

	g := r.Gauge("inflight", "")
	g.Inc()
	g.Inc()
	g.Dec()
	if g.Value() != 1 {
		t.Fatalf("gauge = %d, want 1", g.Value())
	}
}

func TestSameNameReturnsSameMetric(t *testing.T) {
	r := New()
	a := r.Counter("hits", "")
	b := r.Counter("hits", "")
	a.Inc()
	if b.Value() != 1 {
		t.Fatal("counters with the same name must share state")
	}
}

func TestRenderTextFormat(t *testing.T) {
	r := New()
	r.Counter(WithLabels("scrapes_total", "source", "uzum"), "scrape count").Add(4)
	r.Counter(WithLabels("scrapes_total", "source", "olcha"), "scrape count").Add(1)
	r.Gauge("inflight", "active workers").Set(2)

	out := r.Render()
	for _, want := range []string{
		"# TYPE scrapes_total counter",
		`scrapes_total{source="olcha"} 1`,
		`scrapes_total{source="uzum"} 4`,
		"# HELP inflight active workers",
		"inflight 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q:\n%s", want, out)
		}
	}
}

func TestHistogramCumulativeBuckets(t *testing.T) {
	r := New()
	h := r.Histogram("latency_seconds", "", []float64{0.1, 1, 10})
	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(0.7)
	h.Observe(20) // beyond the last bound, counted only in +Inf

	out := r.Render()
	for _, want := range []string{
		`latency_seconds_bucket{le="0.1"} 1`,
		`latency_seconds_bucket{le="1"} 3`,
		`latency_seconds_bucket{le="10"} 3`,
		`latency_seconds_bucket{le="+Inf"} 4`,
		"latency_seconds_count 4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q:\n%s", want, out)
		}
	}
}

func TestHandlerContentType(t *testing.T) {
	r := New()
	r.Counter("x", "").Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "x 1") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}
