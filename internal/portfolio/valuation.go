package portfolio

import (
	"tradesense/internal/market"
)

// Valuer reprices open positions against the quote cache. It is a pure
// calculator: the display-side shadow of the backend's ledger, never a source
// of truth.
type Valuer struct {
	Spread   float64 // full bid/ask spread as a fraction of the last price
	Leverage float64
}

func NewValuer(spread, leverage float64) *Valuer {
	if spread <= 0 {
		spread = 0.0004
	}
	if leverage <= 0 {
		leverage = 100
	}
	return &Valuer{Spread: spread, Leverage: leverage}
}

// PositionView is a position with its derived valuation fields.
type PositionView struct {
	Position
	CurrentPrice float64 `json:"current_price"`
	HasQuote     bool    `json:"has_quote"`
	ProfitLoss   float64 `json:"profit_loss"`
	PLPercent    float64 `json:"pl_percent"`
}

// Metrics are the aggregate account figures recomputed on every quote or book
// change.
type Metrics struct {
	TotalOpenPL      float64 `json:"total_open_pl"`
	TotalMargin      float64 `json:"total_margin"`
	TotalMarketValue float64 `json:"total_market_value"`
	LiveEquity       float64 `json:"live_equity"`
	FreeMargin       float64 `json:"free_margin"`
	// MarginLevel is liveEquity/totalMargin as a percentage. Zero is the
	// sentinel for "no open exposure" and renders as "--", never as 0%.
	MarginLevel    float64 `json:"margin_level"`
	TotalPLPercent float64 `json:"total_pl_percent"`
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// FloatingPL prices one position against the cached quote, simulating the
// bid/ask spread: longs close at the bid, shorts at the ask. With no quote
// cached yet the entry price stands in and the P/L is zero; a missing quote
// must never stall or break the valuation.
func (v *Valuer) FloatingPL(pos Position, quotes map[string]market.Quote) float64 {
	q, ok := quotes[pos.Symbol]
	if !ok {
		return 0
	}
	price := q.Price
	bid := price * (1 - v.Spread/2)
	ask := price * (1 + v.Spread/2)
	if pos.Action == "buy" {
		return (bid - pos.EntryPrice) * abs(pos.Quantity)
	}
	return (pos.EntryPrice - ask) * abs(pos.Quantity)
}

// View builds the per-position valuation rows.
func (v *Valuer) View(positions []Position, quotes map[string]market.Quote) []PositionView {
	out := make([]PositionView, 0, len(positions))
	for _, pos := range positions {
		pv := PositionView{Position: pos, CurrentPrice: pos.EntryPrice}
		if q, ok := quotes[pos.Symbol]; ok {
			pv.CurrentPrice = q.Price
			pv.HasQuote = true
		}
		pv.ProfitLoss = v.FloatingPL(pos, quotes)
		if basis := pos.EntryPrice * abs(pos.Quantity); basis > 0 {
			pv.PLPercent = pv.ProfitLoss / basis * 100
		}
		out = append(out, pv)
	}
	return out
}

// Compute derives the aggregate metrics from the book and quote cache.
// Positions without a cached quote fall back to their entry price.
func (v *Valuer) Compute(challenge *Challenge, positions []Position, quotes map[string]market.Quote) Metrics {
	var m Metrics
	for _, pos := range positions {
		price := pos.EntryPrice
		if q, ok := quotes[pos.Symbol]; ok {
			price = q.Price
		}
		exposure := abs(pos.Quantity) * price
		m.TotalOpenPL += v.FloatingPL(pos, quotes)
		m.TotalMargin += exposure / v.Leverage
		m.TotalMarketValue += exposure
	}
	var equity, initial float64
	if challenge != nil {
		equity = challenge.CurrentEquity
		initial = challenge.InitialBalance
	}
	m.LiveEquity = equity + m.TotalOpenPL
	m.FreeMargin = m.LiveEquity - m.TotalMargin
	if m.TotalMargin > 0 {
		m.MarginLevel = m.LiveEquity / m.TotalMargin * 100
	}
	if initial > 0 {
		m.TotalPLPercent = (m.LiveEquity - initial) / initial * 100
	}
	return m
}

// MarginSeverity buckets a margin level for UI coloring. Thresholds are
// presentation only; the authoritative margin call stays server-side.
type MarginSeverity string

const (
	MarginUndefined MarginSeverity = "none"
	MarginSafe      MarginSeverity = "safe"
	MarginHealthy   MarginSeverity = "healthy"
	MarginWatch     MarginSeverity = "watch"
	MarginWarning   MarginSeverity = "warning"
	MarginCritical  MarginSeverity = "critical"
)

// Severity classifies a margin level. The zero sentinel maps to
// MarginUndefined.
func (m Metrics) Severity() MarginSeverity {
	switch {
	case m.TotalMargin == 0:
		return MarginUndefined
	case m.MarginLevel > 500:
		return MarginSafe
	case m.MarginLevel > 200:
		return MarginHealthy
	case m.MarginLevel > 150:
		return MarginWatch
	case m.MarginLevel > 110:
		return MarginWarning
	default:
		return MarginCritical
	}
}
