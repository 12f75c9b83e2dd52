package backend

import (
	"context"
	"fmt"
	"net/http"

	"tradesense/internal/portfolio"
)

// PortfolioState is the full mirror the backend returns from the portfolio
// endpoint and from every order-affecting call. Challenge, positions and
// recent trades always travel together.
type PortfolioState struct {
	Status       string                  `json:"status,omitempty"`
	Challenge    *portfolio.Challenge    `json:"challenge"`
	Positions    []portfolio.Position    `json:"positions"`
	RecentTrades []portfolio.TradeRecord `json:"recent_trades"`
}

// TradeRequest is an order submission.
type TradeRequest struct {
	Symbol     string   `json:"symbol"`
	Action     string   `json:"action"`
	Quantity   float64  `json:"quantity"`
	StopLoss   *float64 `json:"stopLoss,omitempty"`
	TakeProfit *float64 `json:"takeProfit,omitempty"`
}

// GetPortfolio fetches the current challenge, open positions and history.
func (c *Client) GetPortfolio(ctx context.Context) (PortfolioState, error) {
	var state PortfolioState
	err := c.doRequest(ctx, http.MethodGet, "/api/trading/portfolio", nil, &state)
	return state, err
}

// ExecuteTrade submits a market order. The response replaces the whole
// portfolio mirror.
func (c *Client) ExecuteTrade(ctx context.Context, req TradeRequest) (PortfolioState, error) {
	var state PortfolioState
	if err := c.doRequest(ctx, http.MethodPost, "/api/trading/execute", req, &state); err != nil {
		return PortfolioState{}, err
	}
	if state.Status != "success" {
		return PortfolioState{}, fmt.Errorf("trade was not accepted (status=%q)", state.Status)
	}
	return state, nil
}

// ClosePosition closes one open trade, locking in the price the client was
// showing when the user clicked close.
func (c *Client) ClosePosition(ctx context.Context, tradeID int64, price float64) (PortfolioState, error) {
	payload := map[string]any{"trade_id": tradeID}
	if price > 0 {
		payload["price"] = price
	}
	var state PortfolioState
	if err := c.doRequest(ctx, http.MethodPost, "/api/trading/close", payload, &state); err != nil {
		return PortfolioState{}, err
	}
	return state, nil
}

// CloseAll closes every open position.
func (c *Client) CloseAll(ctx context.Context) (PortfolioState, error) {
	var state PortfolioState
	err := c.doRequest(ctx, http.MethodPost, "/api/trading/close-all", nil, &state)
	return state, err
}

// Reset restarts the challenge: fresh balance, cleared positions and history.
func (c *Client) Reset(ctx context.Context) (PortfolioState, error) {
	var state PortfolioState
	err := c.doRequest(ctx, http.MethodPost, "/api/trading/reset", nil, &state)
	return state, err
}
