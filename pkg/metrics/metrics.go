// Package metrics is a small Prometheus-compatible registry built on the
// standard library. Counters, gauges, and histograms are registered by name
// (labels baked into the name) and exposed in the text exposition format.
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBuckets cover sub-second classification calls up to full scrape
// timeouts, in seconds.
var DefaultBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Counter is a monotonically increasing value.
type Counter struct{ v atomic.Int64 }

func (c *Counter) Inc()         { c.v.Add(1) }
func (c *Counter) Add(n int64)  { c.v.Add(n) }
func (c *Counter) Value() int64 { return c.v.Load() }

// Gauge is a value that can move in both directions.
type Gauge struct{ v atomic.Int64 }

func (g *Gauge) Set(n int64)  { g.v.Store(n) }
func (g *Gauge) Inc()         { g.v.Add(1) }
func (g *Gauge) Dec()         { g.v.Add(-1) }
func (g *Gauge) Value() int64 { return g.v.Load() }

// Histogram records a distribution over fixed upper-bound buckets.
type Histogram struct {
	mu     sync.Mutex
	bounds []float64
	counts []uint64
	sum    float64
	total  uint64
}

func newHistogram(bounds []float64) *Histogram {
	b := make([]float64, len(bounds))
	copy(b, bounds)
	sort.Float64s(b)
	return &Histogram{bounds: b, counts: make([]uint64, len(b))}
}

// Observe records one sample.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	h.sum += v
	h.total++
	for i, b := range h.bounds {
		if v <= b {
			h.counts[i]++
			break
		}
	}
	h.mu.Unlock()
}

// Since observes the elapsed time since t in seconds.
func (h *Histogram) Since(t time.Time) { h.Observe(time.Since(t).Seconds()) }

func (h *Histogram) snapshot() (bounds []float64, counts []uint64, sum float64, total uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	counts = make([]uint64, len(h.counts))
	copy(counts, h.counts)
	return h.bounds, counts, h.sum, h.total
}

type kind int

const (
	kindCounter kind = iota
	kindGauge
	kindHistogram
)

func (k kind) String() string {
	return [...]string{"counter", "gauge", "histogram"}[k]
}

type family struct {
	kind kind
	help string
}

// Registry holds named metrics and renders them for scraping.
type Registry struct {
	mu         sync.RWMutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	families   map[string]family
	order      []string
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
		families:   make(map[string]family),
	}
}

func (r *Registry) register(name string, k kind, help string) {
	base := baseName(name)
	if _, ok := r.families[base]; !ok {
		r.order = append(r.order, base)
		r.families[base] = family{kind: k, help: help}
	}
}

// Counter returns the counter registered under name, creating it on first
// use. Label pairs are part of the name, see WithLabels.
func (r *Registry) Counter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c := &Counter{}
	r.counters[name] = c
	r.register(name, kindCounter, help)
	return c
}

// Gauge returns the gauge registered under name, creating it on first use.
func (r *Registry) Gauge(name, help string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gauges[name]; ok {
		return g
	}
	g := &Gauge{}
	r.gauges[name] = g
	r.register(name, kindGauge, help)
	return g
}

// Histogram returns the histogram registered under name. Nil buckets use
// DefaultBuckets.
func (r *Registry) Histogram(name, help string, buckets []float64) *Histogram {
	if buckets == nil {
		buckets = DefaultBuckets
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h
	}
	h := newHistogram(buckets)
	r.histograms[name] = h
	r.register(name, kindHistogram, help)
	return h
}

// WithLabels bakes label pairs into a metric name:
// WithLabels("scrapes", "source", "uzum") => `scrapes{source="uzum"}`.
func WithLabels(name string, kvs ...string) string {
	if len(kvs) == 0 || len(kvs)%2 != 0 {
		return name
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i := 0; i < len(kvs); i += 2 {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%q", kvs[i], kvs[i+1])
	}
	b.WriteByte('}')
	return b.String()
}

func baseName(name string) string {
	if i := strings.IndexByte(name, '{'); i != -1 {
		return name[:i]
	}
	return name
}

// labelPart returns the inner label list of a name, or "".
func labelPart(name string) string {
	i := strings.IndexByte(name, '{')
	if i == -1 {
		return ""
	}
	return name[i+1 : len(name)-1]
}

// Render produces the Prometheus text exposition format.
func (r *Registry) Render() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	for _, base := range r.order {
		fam := r.families[base]
		if fam.help != "" {
			fmt.Fprintf(&b, "# HELP %s %s\n", base, fam.help)
		}
		fmt.Fprintf(&b, "# TYPE %s %s\n", base, fam.kind)

		switch fam.kind {
		case kindCounter:
			for _, n := range membersOf(r.counters, base) {
				fmt.Fprintf(&b, "%s %d\n", n, r.counters[n].Value())
			}
		case kindGauge:
			for _, n := range membersOf(r.gauges, base) {
				fmt.Fprintf(&b, "%s %d\n", n, r.gauges[n].Value())
			}
		case kindHistogram:
			for _, n := range membersOf(r.histograms, base) {
				bounds, counts, sum, total := r.histograms[n].snapshot()
				labels := labelPart(n)
				sep := ""
				if labels != "" {
					sep = ","
				}
				var cum uint64
				for i, bound := range bounds {
					cum += counts[i]
					fmt.Fprintf(&b, "%s_bucket{le=\"%g\"%s%s} %d\n", base, bound, sep, labels, cum)
				}
				fmt.Fprintf(&b, "%s_bucket{le=\"+Inf\"%s%s} %d\n", base, sep, labels, total)
				if labels != "" {
					labels = "{" + labels + "}"
				}
				fmt.Fprintf(&b, "%s_sum%s %g\n", base, labels, sum)
				fmt.Fprintf(&b, "%s_count%s %d\n", base, labels, total)
			}
		}
	}
	return b.String()
}

func membersOf[M any](m map[string]M, base string) []string {
	var out []string
	for n := range m {
		if baseName(n) == base {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Handler serves the registry in the text exposition format.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.Write([]byte(r.Render()))
	})
}
