package portfolio

import (
	"github.com/shopspring/decimal"

	"tradesense/internal/pkg/symbol"
)

// Ticket is the order preview shown before submission: execution prices under
// the simulated spread, the spread cost, and the margin the order will
// reserve. Computed with decimals so displayed figures round cleanly.
type Ticket struct {
	Symbol         string  `json:"symbol"`
	Action         string  `json:"action"`
	Quantity       float64 `json:"quantity"`
	Bid            float64 `json:"bid"`
	Ask            float64 `json:"ask"`
	ExecutionPrice float64 `json:"execution_price"`
	SpreadFee      float64 `json:"spread_fee"`
	MarginRequired float64 `json:"margin_required"`
	LotUnits       float64 `json:"lot_units"`
}

// BuildTicket prices an order preview against the current quote price.
func (v *Valuer) BuildTicket(sym, action string, quantity, price float64) Ticket {
	units := symbol.LotUnits(sym)
	p := decimal.NewFromFloat(price)
	half := decimal.NewFromFloat(v.Spread / 2)
	one := decimal.NewFromInt(1)

	bid := p.Mul(one.Sub(half))
	ask := p.Mul(one.Add(half))
	exec := ask
	if action == "sell" {
		exec = bid
	}

	qty := decimal.NewFromFloat(quantity).Abs().Mul(decimal.NewFromFloat(units))
	fee := p.Mul(half).Mul(qty)
	margin := p.Mul(qty).Div(decimal.NewFromFloat(v.Leverage))

	t := Ticket{
		Symbol:   sym,
		Action:   action,
		Quantity: quantity,
		LotUnits: units,
	}
	t.Bid, _ = bid.Round(6).Float64()
	t.Ask, _ = ask.Round(6).Float64()
	t.ExecutionPrice, _ = exec.Round(6).Float64()
	t.SpreadFee, _ = fee.Round(2).Float64()
	t.MarginRequired, _ = margin.Round(2).Float64()
	return t
}
