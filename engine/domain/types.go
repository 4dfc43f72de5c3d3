// Package domain defines the core types and the error taxonomy shared by the
// scout engine packages. It has no dependencies so every layer can import it.
package domain

import "time"

// Marketplace identifies one scraped e-commerce source.
type Marketplace string

const (
	Uzum   Marketplace = "uzum"
	Asaxiy Marketplace = "asaxiy"
	Olcha  Marketplace = "olcha"
)

// AllMarketplaces lists the supported sources in priority order. The order is
// used as the deterministic tie-break when duplicate listings collide.
var AllMarketplaces = []Marketplace{Uzum, Asaxiy, Olcha}

// Priority returns the tie-break rank of a marketplace; lower wins.
// Unknown marketplaces sort after all known ones.
func (m Marketplace) Priority() int {
	for i, known := range AllMarketplaces {
		if m == known {
			return i
		}
	}
	return len(AllMarketplaces)
}

// SearchQuery is the structured form of a free-text shopping query.
// It is created once per request by the query parser and never mutated.
type SearchQuery struct {
	RawQuery    string `json:"raw_query"`
	ProductName string `json:"product_name"`
	Brand       string `json:"brand,omitempty"`
	Model       string `json:"model,omitempty"`
	StorageGB   int    `json:"storage_gb,omitempty"`
	RAMGB       int    `json:"ram_gb,omitempty"`
	Color       string `json:"color,omitempty"`
}

// Listing is an as-scraped product entry from one marketplace,
// pre-classification. Price is the parsed value in UZS; 0 means unknown,
// with PriceStr preserving whatever the page showed.
type Listing struct {
	Marketplace Marketplace `json:"marketplace"`
	Title       string      `json:"title"`
	PriceStr    string      `json:"price_str"`
	Price       int64       `json:"price,omitempty"`
	URL         string      `json:"url"`
	ImageURL    string      `json:"image_url,omitempty"`
}

// MatchKind is the four-way relevance verdict for a listing.
type MatchKind string

const (
	MatchExact     MatchKind = "exact"
	MatchClose     MatchKind = "close"
	MatchAccessory MatchKind = "accessory"
	MatchUnrelated MatchKind = "unrelated"
)

// ValidMatchKinds is the set of recognised verdicts, used to validate
// structured reasoning responses.
var ValidMatchKinds = map[MatchKind]bool{
	MatchExact: true, MatchClose: true, MatchAccessory: true, MatchUnrelated: true,
}

// Rank returns the sort precedence of a verdict; exact ranks first.
func (k MatchKind) Rank() int {
	switch k {
	case MatchExact:
		return 0
	case MatchClose:
		return 1
	case MatchAccessory:
		return 2
	default:
		return 3
	}
}

// ExtractedSpecs holds specs pulled out of a listing title during alignment.
type ExtractedSpecs struct {
	StorageGB int    `json:"storage_gb,omitempty"`
	RAMGB     int    `json:"ram_gb,omitempty"`
	Color     string `json:"color,omitempty"`
}

// Match pairs a listing with its classification. Immutable once produced;
// ID is the listing fingerprint and Score the composite ranking score
// assigned during fusion.
type Match struct {
	Listing    Listing        `json:"listing"`
	ID         string         `json:"id"`
	Kind       MatchKind      `json:"kind"`
	Confidence float64        `json:"confidence"`
	Reasoning  string         `json:"reasoning"`
	Specs      ExtractedSpecs `json:"specs,omitempty"`
	Score      float64        `json:"score"`
}

// SourceFailure records one excluded source in the audit trail.
type SourceFailure struct {
	Marketplace Marketplace `json:"marketplace"`
	Code        string      `json:"code"`
	Message     string      `json:"message"`
}

// Report is the ranked, deduplicated answer to one search run. Matches are
// fully ordered; Excluded retains unrelated listings for auditing only.
type Report struct {
	Query        SearchQuery     `json:"query"`
	Matches      []Match         `json:"matches"`
	Excluded     []Match         `json:"excluded,omitempty"`
	Failures     []SourceFailure `json:"failures,omitempty"`
	TotalScraped int             `json:"total_scraped"`
	TotalMatched int             `json:"total_matched"`
	Duration     time.Duration   `json:"duration"`
}

// BestPrice returns the lowest known price among exact and close matches,
// or 0 when no priced match exists.
func (r Report) BestPrice() int64 {
	var best int64
	for _, m := range r.Matches {
		if m.Kind != MatchExact && m.Kind != MatchClose {
			continue
		}
		if m.Listing.Price <= 0 {
			continue
		}
		if best == 0 || m.Listing.Price < best {
			best = m.Listing.Price
		}
	}
	return best
}
