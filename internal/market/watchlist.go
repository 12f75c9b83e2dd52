package market

import (
	"sort"
	"strings"

	"tradesense/internal/pkg/symbol"
)

// Watchlist sort modes.
const (
	SortDefault  = "default"
	SortGainers  = "gainers"
	SortLosers   = "losers"
	SortVolatile = "volatile"
)

// WatchRow is one watchlist entry joined with its cached quote, if any.
type WatchRow struct {
	Symbol string       `json:"symbol"`
	Class  symbol.Class `json:"class"`
	Quote  *Quote       `json:"quote,omitempty"`
}

// RankWatchlist joins the configured symbol order with the quote cache and
// applies class/search filtering and sorting. Symbols without a cached quote
// keep their configured position and sink below quoted ones under any
// non-default sort.
func RankWatchlist(order []string, quotes map[string]Quote, mode, class, query string) []WatchRow {
	class = strings.ToLower(strings.TrimSpace(class))
	query = strings.ToUpper(strings.TrimSpace(query))

	rows := make([]WatchRow, 0, len(order))
	for _, sym := range order {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		cls := symbol.Classify(sym)
		if class != "" && class != "all" && string(cls) != class {
			continue
		}
		if query != "" && !strings.Contains(sym, query) {
			continue
		}
		row := WatchRow{Symbol: sym, Class: cls}
		if q, ok := quotes[sym]; ok {
			row.Quote = &q
		}
		rows = append(rows, row)
	}

	switch strings.ToLower(strings.TrimSpace(mode)) {
	case SortGainers:
		sortRows(rows, func(a, b *Quote) bool { return a.ChangePercent > b.ChangePercent })
	case SortLosers:
		sortRows(rows, func(a, b *Quote) bool { return a.ChangePercent < b.ChangePercent })
	case SortVolatile:
		sortRows(rows, func(a, b *Quote) bool {
			return absf(a.ChangePercent) > absf(b.ChangePercent)
		})
	}
	return rows
}

// sortRows sorts quoted rows by less and keeps unquoted rows at the bottom in
// their configured order.
func sortRows(rows []WatchRow, less func(a, b *Quote) bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		qi, qj := rows[i].Quote, rows[j].Quote
		if qi == nil || qj == nil {
			return qj == nil && qi != nil
		}
		return less(qi, qj)
	})
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
