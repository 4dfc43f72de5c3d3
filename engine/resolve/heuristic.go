package resolve

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
)

// accessoryKeywords flag add-on products in Uzbek, Russian, and English.
// Matched as substrings of the folded title.
var accessoryKeywords = []string{
	"чехол", "chexol", "case", "стекло", "glass", "зарядка",
	"charger", "кабель", "cable", "наушник", "earphone", "adapter",
	"protect", "cover", "plenka", "plyonka", "бампер", "bumper",
	"держатель", "holder", "пленка", "film", "strap", "ремешок",
}

// Heuristic is the deterministic classification path. It needs no network
// or credentials and always returns a verdict.
type Heuristic struct {
	// ExactMin is the token-overlap ratio at or above which a listing with
	// matching brand and model is exact.
	ExactMin float64
	// CloseMin is the ratio at or above which a listing is at least close.
	CloseMin float64
	// AccessoryConfidence is the fixed confidence for accessory verdicts.
	AccessoryConfidence float64
}

// DefaultHeuristic mirrors the tuned production thresholds.
var DefaultHeuristic = Heuristic{
	ExactMin:            0.7,
	CloseMin:            0.4,
	AccessoryConfidence: 0.1,
}

// Classify scores the listing title against the query tokens. Same inputs
// always produce the same Match.
func (h Heuristic) Classify(q domain.SearchQuery, l domain.Listing) domain.Match {
	title := fold(l.Title)

	if kw := accessoryKeyword(title); kw != "" {
		return domain.Match{
			Listing:    l,
			Kind:       domain.MatchAccessory,
			Confidence: h.AccessoryConfidence,
			Reasoning:  fmt.Sprintf("heuristic: accessory keyword %q in title", kw),
		}
	}

	tokens := queryTokens(q)
	hits := 0
	for _, tok := range tokens {
		if strings.Contains(title, tok) {
			hits++
		}
	}
	total := max(len(tokens), 1)
	ratio := float64(hits) / float64(total)

	brandOK := q.Brand == "" || strings.Contains(title, fold(q.Brand))
	modelOK := q.Model == "" || strings.Contains(title, fold(q.Model))
	brandAndModelHit := q.Brand != "" && q.Model != "" &&
		strings.Contains(title, fold(q.Brand)) && strings.Contains(title, fold(q.Model))

	var kind domain.MatchKind
	switch {
	case ratio >= h.ExactMin && brandOK && modelOK:
		kind = domain.MatchExact
	case ratio >= h.CloseMin || brandAndModelHit:
		kind = domain.MatchClose
	default:
		kind = domain.MatchUnrelated
	}

	return domain.Match{
		Listing:    l,
		Kind:       kind,
		Confidence: ratio,
		Reasoning:  fmt.Sprintf("heuristic: %d/%d query tokens found in title", hits, total),
	}
}

// queryTokens folds and deduplicates the query's product, brand, model, and
// attribute tokens.
func queryTokens(q domain.SearchQuery) []string {
	parts := []string{q.ProductName, q.Brand, q.Model, q.Color}
	if q.StorageGB > 0 {
		parts = append(parts, fmt.Sprintf("%dgb", q.StorageGB))
	}
	if q.RAMGB > 0 {
		parts = append(parts, fmt.Sprintf("%dgb", q.RAMGB))
	}

	seen := make(map[string]bool)
	var tokens []string
	for _, part := range parts {
		for _, tok := range strings.Fields(fold(part)) {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func accessoryKeyword(foldedTitle string) string {
	for _, kw := range accessoryKeywords {
		if strings.Contains(foldedTitle, kw) {
			return kw
		}
	}
	return ""
}

var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases and strips combining marks so comparisons are case- and
// diacritics-insensitive across Latin and Cyrillic text.
func fold(s string) string {
	out, _, err := transform.String(foldChain, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
