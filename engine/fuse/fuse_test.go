package fuse

import (
	"testing"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"2 499 000 сўм", 2499000, true},
		{"2499000", 2499000, true},
		{"1,250,000 so'm", 1250000, true},
		{"208 250 x 12 мес", 208250, true},
		{"208 250 × 12", 208250, true},
		{"Narxi yo'q", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePrice(%q) = (%d, %v), want (%d, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParsePriceRoundTrip(t *testing.T) {
	a, _ := ParsePrice("2 499 000 сўм")
	b, _ := ParsePrice("2499000")
	if a != b {
		t.Fatalf("representations diverge: %d vs %d", a, b)
	}
}

func match(kind domain.MatchKind, conf float64, mkt domain.Marketplace, title, price string) domain.Match {
	return domain.Match{
		Listing:    domain.Listing{Marketplace: mkt, Title: title, PriceStr: price},
		Kind:       kind,
		Confidence: conf,
		Reasoning:  "test",
	}
}

func TestRankDropsUnrelated(t *testing.T) {
	ranked, excluded := New(Options{}).Rank([]domain.Match{
		match(domain.MatchExact, 0.9, domain.Uzum, "Samsung A33", "2 500 000 сўм"),
		match(domain.MatchUnrelated, 0.1, domain.Olcha, "Artel TV", "1 000 000"),
	})
	if len(ranked) != 1 || len(excluded) != 1 {
		t.Fatalf("ranked=%d excluded=%d", len(ranked), len(excluded))
	}
	if excluded[0].Kind != domain.MatchUnrelated {
		t.Fatal("excluded must hold the unrelated listing")
	}
}

func TestRankDeduplicates(t *testing.T) {
	dup := match(domain.MatchExact, 0.8, domain.Uzum, "Samsung A33 128GB", "2 500 000")
	better := match(domain.MatchExact, 0.95, domain.Uzum, "Samsung A33 128GB", "2 500 000")

	ranked, _ := New(Options{}).Rank([]domain.Match{dup, better})
	if len(ranked) != 1 {
		t.Fatalf("len = %d, want 1 after dedupe", len(ranked))
	}
	if ranked[0].Confidence != 0.95 {
		t.Fatalf("kept confidence %v, want the higher duplicate", ranked[0].Confidence)
	}
	if ranked[0].ID == "" {
		t.Fatal("fingerprint must be filled")
	}
}

func TestRankOrder(t *testing.T) {
	a := match(domain.MatchExact, 0.9, domain.Uzum, "A", "3 000 000")
	b := match(domain.MatchExact, 0.9, domain.Asaxiy, "B", "2 500 000")
	c := match(domain.MatchClose, 0.9, domain.Olcha, "C", "1 000 000")

	ranked, _ := New(Options{}).Rank([]domain.Match{a, b, c})
	titles := []string{ranked[0].Listing.Title, ranked[1].Listing.Title, ranked[2].Listing.Title}
	if titles[0] != "B" || titles[1] != "A" || titles[2] != "C" {
		t.Fatalf("order = %v, want [B A C]", titles)
	}
}

func TestRankUnknownPriceRetainedLast(t *testing.T) {
	priced := match(domain.MatchExact, 0.9, domain.Uzum, "priced", "2 000 000")
	unpriced := match(domain.MatchExact, 0.9, domain.Asaxiy, "no price", "narxi yo'q")

	ranked, _ := New(Options{}).Rank([]domain.Match{unpriced, priced})
	if len(ranked) != 2 {
		t.Fatalf("unparseable price must not drop the listing, len = %d", len(ranked))
	}
	if ranked[0].Listing.Title != "priced" {
		t.Fatalf("order = [%s %s], want priced first", ranked[0].Listing.Title, ranked[1].Listing.Title)
	}
}

func TestRankEmptyInput(t *testing.T) {
	ranked, excluded := New(Options{}).Rank(nil)
	if len(ranked) != 0 || len(excluded) != 0 {
		t.Fatal("empty input must yield empty output, not an error")
	}
}

func TestRankDeterminism(t *testing.T) {
	in := []domain.Match{
		match(domain.MatchClose, 0.5, domain.Olcha, "c1", "1 200 000"),
		match(domain.MatchExact, 0.9, domain.Uzum, "e1", "2 000 000"),
		match(domain.MatchExact, 0.9, domain.Asaxiy, "e2", "2 000 000"),
		match(domain.MatchAccessory, 0.1, domain.Uzum, "chexol", "50 000"),
	}
	e := New(Options{})
	first, _ := e.Rank(in)
	for i := 0; i < 10; i++ {
		again, _ := e.Rank(in)
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d position %d differs", i, j)
			}
		}
	}
}
