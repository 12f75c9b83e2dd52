package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tradesense/internal/config"
	"tradesense/internal/market"
)

// ErrUnauthorized marks a 401 from any endpoint. It is fatal for the session:
// the caller tears down rather than retrying.
var ErrUnauthorized = errors.New("backend rejected credentials")

// Client wraps the prop-firm backend REST API. Every call carries the bearer
// token; the backend owns all business logic, this client only moves state.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
}

// NewClient constructs a backend client from configuration.
func NewClient(cfg config.BackendConfig) (*Client, error) {
	raw := strings.TrimSpace(cfg.APIURL)
	if raw == "" {
		return nil, fmt.Errorf("backend.api_url cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing backend.api_url failed: %w", err)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		token:      strings.TrimSpace(cfg.APIToken),
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// GetPrice fetches the latest quote for one symbol.
func (c *Client) GetPrice(ctx context.Context, symbol string) (market.Quote, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, "/api/market/price/"+url.PathEscape(symbol), nil)
	if err != nil {
		return market.Quote{}, err
	}
	q, ok := market.ParseQuote(symbol, raw)
	if !ok {
		return market.Quote{}, fmt.Errorf("price payload for %s has no price", symbol)
	}
	return q, nil
}

// GetBatchPrices fetches quotes for several symbols in one round-trip.
func (c *Client) GetBatchPrices(ctx context.Context, symbols []string) (map[string]market.Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	payload := map[string]any{"symbols": symbols}
	raw, err := c.doRaw(ctx, http.MethodPost, "/api/market/prices/batch", payload)
	if err != nil {
		return nil, err
	}
	return market.ParseQuoteBatch(raw), nil
}

// GetHistorical fetches OHLC history for the chart.
func (c *Client) GetHistorical(ctx context.Context, symbol, period, interval string) ([]market.Candle, error) {
	path := fmt.Sprintf("/api/market/historical/%s?period=%s&interval=%s",
		url.PathEscape(symbol), url.QueryEscape(period), url.QueryEscape(interval))
	var resp struct {
		Data []market.Candle `json:"data"`
	}
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Signal is an advisory AI trading signal. Display only.
type Signal struct {
	Signal     string   `json:"signal"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	KeyFactors []string `json:"key_factors"`
}

// GetAISignal fetches the advisory signal for a symbol.
func (c *Client) GetAISignal(ctx context.Context, symbol string) (Signal, error) {
	var sig Signal
	err := c.doRequest(ctx, http.MethodGet, "/api/market/ai-signal/"+url.PathEscape(symbol), nil, &sig)
	return sig, err
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload, out any) error {
	raw, err := c.doRaw(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding backend response failed: %w", err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("backend client not initialized")
	}
	endpoint, err := c.baseURL.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("resolving endpoint failed: %w", err)
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request failed: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("building request failed: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling backend failed: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode >= 300 {
		if reason := errorReason(data); reason != "" {
			return nil, fmt.Errorf("backend error (%s): %s", resp.Status, reason)
		}
		return nil, fmt.Errorf("backend error: %s", resp.Status)
	}
	return data, nil
}

// errorReason pulls the backend-provided message out of an error body.
func errorReason(data []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
