package symbol

import "strings"

// Class is the asset class of an instrument, derived from the upstream data
// provider's ticker conventions (yfinance-style suffixes).
type Class string

const (
	ClassStock      Class = "stocks"
	ClassCommodity  Class = "commodities"
	ClassForex      Class = "forex"
	ClassCrypto     Class = "crypto"
	ClassCasablanca Class = "morocco"
)

// Classify maps a ticker to its asset class. Suffix conventions:
// "=X" forex, "=F" futures/commodities, "-USD" crypto, ".CS" Casablanca
// exchange; anything else is treated as a US stock.
func Classify(sym string) Class {
	s := strings.ToUpper(strings.TrimSpace(sym))
	switch {
	case strings.HasSuffix(s, "=X"):
		return ClassForex
	case strings.HasSuffix(s, "=F"):
		return ClassCommodity
	case strings.HasSuffix(s, "-USD"):
		return ClassCrypto
	case strings.HasSuffix(s, ".CS"):
		return ClassCasablanca
	default:
		return ClassStock
	}
}

// Continuous reports whether the symbol trades around the clock given the
// configured set of continuous asset classes. This is a client-side heuristic;
// the authoritative market calendar lives on the backend.
func Continuous(sym string, continuousClasses []string) bool {
	class := string(Classify(sym))
	for _, c := range continuousClasses {
		if strings.EqualFold(strings.TrimSpace(c), class) {
			return true
		}
	}
	return false
}

// LotUnits returns how many underlying units one lot represents in the order
// ticket: crypto trades whole units, everything else 10 units per lot.
func LotUnits(sym string) float64 {
	if Classify(sym) == ClassCrypto {
		return 1
	}
	return 10
}

// Dedupe upper-cases, trims and de-duplicates while preserving order.
func Dedupe(symbols []string) []string {
	if len(symbols) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
