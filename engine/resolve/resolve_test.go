package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
)

var a33Query = domain.SearchQuery{
	RawQuery:    "samsung a33",
	ProductName: "samsung a33",
	Brand:       "Samsung",
	Model:       "A33",
}

func TestHeuristicAccessoryDetection(t *testing.T) {
	tests := []struct {
		title string
	}{
		{"Samsung A33 uchun chexol"},
		{"Чехол для Samsung Galaxy A33"},
		{"Tempered glass Samsung A33"},
		{"Зарядка Samsung 25W"},
	}
	for _, tt := range tests {
		m := DefaultHeuristic.Classify(a33Query, domain.Listing{Title: tt.title})
		if m.Kind != domain.MatchAccessory {
			t.Errorf("Classify(%q) = %s, want accessory", tt.title, m.Kind)
		}
		if m.Confidence != DefaultHeuristic.AccessoryConfidence {
			t.Errorf("accessory confidence = %v", m.Confidence)
		}
	}
}

func TestHeuristicVerdicts(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  domain.MatchKind
	}{
		{"full overlap", "Samsung A33 smartfon", domain.MatchExact},
		{"brand and model only", "Samsung Galaxy A33 5G 128GB yangi", domain.MatchExact},
		{"brand only", "Samsung Galaxy S21 Ultra", domain.MatchClose},
		{"no overlap", "Artel televizor 43 dyuym", domain.MatchUnrelated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultHeuristic.Classify(a33Query, domain.Listing{Title: tt.title})
			if m.Kind != tt.want {
				t.Fatalf("kind = %s, want %s (confidence %v)", m.Kind, tt.want, m.Confidence)
			}
			if m.Reasoning == "" {
				t.Fatal("reasoning must never be empty")
			}
		})
	}
}

func TestHeuristicBoundaryRatios(t *testing.T) {
	// Ten distinct query tokens let the title hit exact counts.
	q := domain.SearchQuery{
		RawQuery:    "t0 t1 t2 t3 t4 t5 t6 t7 t8 t9",
		ProductName: "t0 t1 t2 t3 t4 t5 t6 t7 t8 t9",
	}

	tests := []struct {
		hits  int
		want  domain.MatchKind
		ratio float64
	}{
		{7, domain.MatchExact, 0.7},      // at the exact threshold
		{6, domain.MatchClose, 0.6},      // between thresholds
		{4, domain.MatchClose, 0.4},      // at the close threshold
		{3, domain.MatchUnrelated, 0.3},  // below
		{0, domain.MatchUnrelated, 0.0},  // floor
		{10, domain.MatchExact, 1.0},     // ceiling
	}
	for _, tt := range tests {
		title := ""
		for i := 0; i < tt.hits; i++ {
			title += " t" + string(rune('0'+i))
		}
		m := DefaultHeuristic.Classify(q, domain.Listing{Title: title})
		if m.Kind != tt.want {
			t.Errorf("%d/10 hits: kind = %s, want %s", tt.hits, m.Kind, tt.want)
		}
		if m.Confidence != tt.ratio {
			t.Errorf("%d/10 hits: confidence = %v, want %v", tt.hits, m.Confidence, tt.ratio)
		}
	}
}

func TestHeuristicDiacriticsInsensitive(t *testing.T) {
	q := domain.SearchQuery{RawQuery: "plenka", ProductName: "telefon"}
	m := DefaultHeuristic.Classify(q, domain.Listing{Title: "Plënka himoya"})
	if m.Kind != domain.MatchAccessory {
		t.Fatalf("kind = %s, want accessory for folded keyword", m.Kind)
	}
}

func TestHeuristicDeterminism(t *testing.T) {
	l := domain.Listing{Title: "Samsung Galaxy A33 128GB"}
	first := DefaultHeuristic.Classify(a33Query, l)
	for i := 0; i < 20; i++ {
		if got := DefaultHeuristic.Classify(a33Query, l); got != first {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

type failingBackend struct{ calls int }

func (f *failingBackend) AlignListing(context.Context, domain.SearchQuery, domain.Listing) (domain.Match, error) {
	f.calls++
	return domain.Match{}, domain.E(domain.CodeLLMConnection, "injected").Wrap(errors.New("down"))
}

func TestResolverFallsBackForEveryListing(t *testing.T) {
	backend := &failingBackend{}
	r := New(backend, nil)

	listings := []domain.Listing{
		{Title: "Samsung A33 128GB"},
		{Title: "Samsung A33 uchun chexol"},
		{Title: "Artel televizor"},
	}
	for _, l := range listings {
		m := r.Classify(context.Background(), a33Query, l)
		if m.Kind == "" {
			t.Fatalf("no verdict for %q", l.Title)
		}
	}
	if backend.calls != len(listings) {
		t.Fatalf("backend called %d times, want %d", backend.calls, len(listings))
	}
}

type fixedBackend struct{ m domain.Match }

func (f fixedBackend) AlignListing(context.Context, domain.SearchQuery, domain.Listing) (domain.Match, error) {
	return f.m, nil
}

func TestResolverPrefersBackend(t *testing.T) {
	want := domain.Match{Kind: domain.MatchExact, Confidence: 0.9, Reasoning: "model verdict"}
	r := New(fixedBackend{m: want}, nil)

	got := r.Classify(context.Background(), a33Query, domain.Listing{Title: "whatever"})
	if got.Kind != want.Kind || got.Confidence != want.Confidence {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestResolverNilBackend(t *testing.T) {
	r := New(nil, nil)
	m := r.Classify(context.Background(), a33Query, domain.Listing{Title: "Samsung A33"})
	if m.Kind != domain.MatchExact {
		t.Fatalf("kind = %s", m.Kind)
	}
}
