package query

import (
	"strconv"
	"strings"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
)

// knownBrands are matched as whole lowercase tokens of the raw query.
var knownBrands = []string{
	"samsung", "xiaomi", "redmi", "apple", "iphone", "huawei",
	"realme", "oppo", "poco", "honor", "vivo", "oneplus", "google",
	"nokia", "motorola", "tecno", "infinix", "zte", "lenovo",
}

// Plausible capacity values keep "5G" or a model number like "12" from being
// read as storage.
var (
	storageValues = map[int]bool{32: true, 64: true, 128: true, 256: true, 512: true, 1024: true}
	ramValues     = map[int]bool{2: true, 3: true, 4: true, 6: true, 8: true, 12: true, 16: true, 18: true, 24: true}
)

// colorWords maps Uzbek, Russian, and English color tokens to a canonical
// English name.
var colorWords = map[string]string{
	"black": "black", "qora": "black", "черный": "black", "чёрный": "black",
	"white": "white", "oq": "white", "белый": "white",
	"blue": "blue", "ko'k": "blue", "синий": "blue",
	"red": "red", "qizil": "red", "красный": "red",
	"green": "green", "yashil": "green", "зеленый": "green", "зелёный": "green",
	"gold": "gold", "золотой": "gold",
	"silver": "silver", "kumush": "silver", "серебристый": "silver",
}

// HeuristicParse builds a structured query from token inspection alone:
// known-brand lookup, gb-suffixed capacity extraction, and a color word
// table. The raw text doubles as the product name.
func HeuristicParse(rawQuery string) domain.SearchQuery {
	tokens := strings.Fields(strings.ToLower(rawQuery))

	q := domain.SearchQuery{
		RawQuery:    rawQuery,
		ProductName: rawQuery,
	}

	for _, brand := range knownBrands {
		for _, tok := range tokens {
			if tok == brand {
				q.Brand = strings.ToUpper(brand[:1]) + brand[1:]
				break
			}
		}
		if q.Brand != "" {
			break
		}
	}

	for _, tok := range tokens {
		if c, ok := colorWords[tok]; ok && q.Color == "" {
			q.Color = c
		}
		digits, ok := trimCapacityUnit(tok)
		if !ok {
			continue
		}
		val, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		switch {
		case storageValues[val] && q.StorageGB == 0:
			q.StorageGB = val
		case ramValues[val] && q.RAMGB == 0:
			q.RAMGB = val
		}
	}

	return q
}

// trimCapacityUnit strips a trailing gb/гб unit and reports whether the
// token carried one.
func trimCapacityUnit(tok string) (string, bool) {
	for _, unit := range []string{"gb", "гб"} {
		if rest, found := strings.CutSuffix(tok, unit); found {
			return rest, true
		}
	}
	return tok, false
}
