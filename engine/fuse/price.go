package fuse

import (
	"strconv"
	"strings"
)

// ParsePrice normalizes a scraped price string into whole UZS. It tolerates
// grouped digits ("2 499 000"), trailing currency words ("сўм", "so'm",
// "uzs"), and installment phrasing ("208 250 x 12"), where everything after
// the multiplier sign is dropped. Returns false when no digits survive.
func ParsePrice(raw string) (int64, bool) {
	if i := strings.IndexAny(raw, "x×"); i >= 0 {
		raw = raw[:i]
	}

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}

	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
