package bus

import (
	"testing"
	"time"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
)

func TestEventFromReport(t *testing.T) {
	r := domain.Report{
		Query: domain.SearchQuery{RawQuery: "samsung a33"},
		Matches: []domain.Match{
			{Kind: domain.MatchExact, Listing: domain.Listing{Price: 2500000}},
			{Kind: domain.MatchClose, Listing: domain.Listing{Price: 2000000}},
		},
		Failures:     []domain.SourceFailure{{Marketplace: domain.Olcha, Code: domain.CodeWorker}},
		TotalScraped: 10,
		TotalMatched: 2,
		Duration:     3 * time.Second,
	}

	ev := EventFromReport(r)
	if ev.Query != "samsung a33" {
		t.Fatalf("query = %q", ev.Query)
	}
	if ev.BestPrice != 2000000 {
		t.Fatalf("best price = %d", ev.BestPrice)
	}
	if ev.TotalScraped != 10 || ev.TotalMatched != 2 || ev.Failures != 1 {
		t.Fatalf("counters not carried: %+v", ev)
	}
	if ev.CompletedAt.IsZero() {
		t.Fatal("completion timestamp missing")
	}
}

func TestEventFromReportNoPricedMatches(t *testing.T) {
	ev := EventFromReport(domain.Report{
		Matches: []domain.Match{{Kind: domain.MatchAccessory, Listing: domain.Listing{Price: 50000}}},
	})
	if ev.BestPrice != 0 {
		t.Fatalf("best price = %d, want 0 when no exact/close match is priced", ev.BestPrice)
	}
}
