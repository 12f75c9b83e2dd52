package backend

import (
	"context"
	"fmt"
	"net/http"
)

// AlertRecord is a price alert as stored by the backend.
type AlertRecord struct {
	ID          int64   `json:"id"`
	Symbol      string  `json:"symbol"`
	TargetPrice float64 `json:"target_price"`
	Condition   string  `json:"condition"` // "ABOVE" | "BELOW"
}

// ListAlerts fetches the user's active alerts.
func (c *Client) ListAlerts(ctx context.Context) ([]AlertRecord, error) {
	var alerts []AlertRecord
	if err := c.doRequest(ctx, http.MethodGet, "/api/alerts", nil, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// CreateAlert registers a new alert server-side.
func (c *Client) CreateAlert(ctx context.Context, symbol string, targetPrice float64, condition string) (AlertRecord, error) {
	payload := map[string]any{
		"symbol":       symbol,
		"target_price": targetPrice,
		"condition":    condition,
	}
	var created AlertRecord
	err := c.doRequest(ctx, http.MethodPost, "/api/alerts", payload, &created)
	return created, err
}

// DeleteAlert removes an alert server-side. Safe to repeat: deleting an
// already-deleted alert is harmless.
func (c *Client) DeleteAlert(ctx context.Context, id int64) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/alerts/%d", id), nil, nil)
}
