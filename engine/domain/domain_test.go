package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestFingerprintStable(t *testing.T) {
	l := Listing{Marketplace: Uzum, Title: "Samsung Galaxy A33 5G 128GB", Price: 3290000}
	a := Fingerprint(l)
	b := Fingerprint(l)
	if a != b {
		t.Fatalf("fingerprint not stable: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("expected 16 hex chars, got %d", len(a))
	}
}

func TestFingerprintNormalizesWhitespaceAndCase(t *testing.T) {
	a := Fingerprint(Listing{Marketplace: Uzum, Title: "Samsung  Galaxy A33", Price: 100})
	b := Fingerprint(Listing{Marketplace: Uzum, Title: "samsung galaxy a33", Price: 100})
	if a != b {
		t.Fatal("case/whitespace variants should share a fingerprint")
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base := Listing{Marketplace: Uzum, Title: "Samsung Galaxy A33", Price: 100}
	cases := []Listing{
		{Marketplace: Asaxiy, Title: base.Title, Price: base.Price},
		{Marketplace: Uzum, Title: "Samsung Galaxy A34", Price: base.Price},
		{Marketplace: Uzum, Title: base.Title, Price: 101},
	}
	id := Fingerprint(base)
	for i, c := range cases {
		if Fingerprint(c) == id {
			t.Fatalf("case %d: distinct listing collided with base", i)
		}
	}
}

func TestMarketplacePriority(t *testing.T) {
	if Uzum.Priority() >= Asaxiy.Priority() || Asaxiy.Priority() >= Olcha.Priority() {
		t.Fatal("priority must follow declaration order")
	}
	if Marketplace("ebay").Priority() != len(AllMarketplaces) {
		t.Fatal("unknown marketplace must sort last")
	}
}

func TestMatchKindRank(t *testing.T) {
	order := []MatchKind{MatchExact, MatchClose, MatchAccessory, MatchUnrelated}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Fatalf("%s should rank before %s", order[i-1], order[i])
		}
	}
}

func TestErrorCodeAndContext(t *testing.T) {
	err := E(CodeNavigation, "goto failed").With("marketplace", "uzum").Wrap(errors.New("net timeout"))
	if CodeOf(err) != CodeNavigation {
		t.Fatalf("CodeOf = %q", CodeOf(err))
	}
	msg := err.Error()
	for _, want := range []string{CodeNavigation, "goto failed", "marketplace=uzum", "net timeout"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error message %q missing %q", msg, want)
		}
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("fetch: %w", E(CodeUnavailable, "site down").With("marketplace", "olcha"))
	if !errors.Is(err, E(CodeUnavailable, "")) {
		t.Fatal("wrapped typed error should match by code")
	}
	if errors.Is(err, E(CodeNavigation, "")) {
		t.Fatal("different codes must not match")
	}
}

func TestRecoverable(t *testing.T) {
	recoverable := []string{CodeNavigation, CodeExtraction, CodeUnavailable, CodeLLMConnection, CodeLLMResponse, CodeWorker}
	for _, code := range recoverable {
		if !Recoverable(E(code, "x")) {
			t.Fatalf("%s should be recoverable", code)
		}
	}
	for _, code := range []string{CodeQueryParse, CodeOrchestrator} {
		if Recoverable(E(code, "x")) {
			t.Fatalf("%s should be fatal", code)
		}
	}
	if Recoverable(errors.New("plain")) {
		t.Fatal("untyped errors are not recoverable")
	}
}

func TestReportBestPrice(t *testing.T) {
	r := Report{
		Matches: []Match{
			{Kind: MatchExact, Listing: Listing{Price: 3000000}},
			{Kind: MatchClose, Listing: Listing{Price: 2500000}},
			{Kind: MatchExact, Listing: Listing{Price: 0}},
			{Kind: MatchAccessory, Listing: Listing{Price: 45000}},
		},
		Duration: time.Second,
	}
	if got := r.BestPrice(); got != 2500000 {
		t.Fatalf("BestPrice = %d, want 2500000", got)
	}
	if (Report{}).BestPrice() != 0 {
		t.Fatal("empty report should have no best price")
	}
}
