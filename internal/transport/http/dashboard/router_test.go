package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"tradesense/internal/alert"
	"tradesense/internal/gate"
	"tradesense/internal/gateway/backend"
	"tradesense/internal/market"
	"tradesense/internal/portfolio"
	"tradesense/internal/session"
)

type stubBackend struct {
	state backend.PortfolioState
}

func (s *stubBackend) GetPortfolio(ctx context.Context) (backend.PortfolioState, error) {
	return s.state, nil
}

func (s *stubBackend) ExecuteTrade(ctx context.Context, req backend.TradeRequest) (backend.PortfolioState, error) {
	return s.state, nil
}

func (s *stubBackend) ClosePosition(ctx context.Context, tradeID int64, price float64) (backend.PortfolioState, error) {
	return s.state, nil
}

func (s *stubBackend) CloseAll(ctx context.Context) (backend.PortfolioState, error) {
	return s.state, nil
}

func (s *stubBackend) Reset(ctx context.Context) (backend.PortfolioState, error) {
	return s.state, nil
}

func (s *stubBackend) ListAlerts(ctx context.Context) ([]backend.AlertRecord, error) {
	return nil, nil
}

func (s *stubBackend) CreateAlert(ctx context.Context, symbol string, targetPrice float64, condition string) (backend.AlertRecord, error) {
	return backend.AlertRecord{ID: 1, Symbol: symbol, TargetPrice: targetPrice, Condition: condition}, nil
}

func (s *stubBackend) DeleteAlert(ctx context.Context, id int64) error { return nil }

func (s *stubBackend) GetAISignal(ctx context.Context, symbol string) (backend.Signal, error) {
	return backend.Signal{Signal: "BUY", Confidence: 0.8}, nil
}

type stubSelector struct {
	selected  string
	timeframe string
}

func (s *stubSelector) Select(ctx context.Context, symbol, timeframe string) {
	s.selected, s.timeframe = symbol, timeframe
}

func (s *stubSelector) ActiveSymbol() string { return s.selected }
func (s *stubSelector) Timeframe() string    { return s.timeframe }

func newTestServer(t *testing.T, b *stubBackend, store *market.Store) (*Server, *stubSelector) {
	t.Helper()
	ctrl := session.NewController(
		b,
		portfolio.NewBook(),
		store,
		portfolio.NewValuer(0.0004, 100),
		gate.New([]string{"crypto"}),
		alert.NewSupervisor(nil, nil, nil),
		nil,
	)
	require.NoError(t, ctrl.Refresh(context.Background()))
	sel := &stubSelector{selected: "AAPL", timeframe: "1h"}
	srv, err := NewServer(":0", NewRouter(ctrl, sel, store, market.NewSeries(), func() []string { return []string{"AAPL"} }))
	require.NoError(t, err)
	return srv, sel
}

func doJSON(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &stubBackend{}, market.NewStore())
	w := doJSON(srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStateEndpoint(t *testing.T) {
	b := &stubBackend{state: backend.PortfolioState{
		Challenge: &portfolio.Challenge{Status: portfolio.StatusActive, CurrentEquity: 100000, InitialBalance: 100000},
	}}
	srv, _ := newTestServer(t, b, market.NewStore())

	w := doJSON(srv, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	doc := gjson.ParseBytes(w.Body.Bytes())
	assert.Equal(t, "AAPL", doc.Get("active_symbol").String())
	assert.Equal(t, "active", doc.Get("snapshot.challenge.status").String())
	assert.Equal(t, "none", doc.Get("snapshot.margin_severity").String())
}

func TestTradeRejectedWhenBlocked(t *testing.T) {
	b := &stubBackend{state: backend.PortfolioState{
		Challenge: &portfolio.Challenge{Status: portfolio.StatusFailed, FailureReason: "total loss limit breached"},
	}}
	srv, _ := newTestServer(t, b, market.NewStore())

	w := doJSON(srv, http.MethodPost, "/api/trade", `{"symbol":"AAPL","action":"buy","quantity":10}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "total loss limit breached")
}

func TestTradeValidation(t *testing.T) {
	b := &stubBackend{state: backend.PortfolioState{
		Challenge: &portfolio.Challenge{Status: portfolio.StatusActive},
	}}
	srv, _ := newTestServer(t, b, market.NewStore())

	w := doJSON(srv, http.MethodPost, "/api/trade", `{"symbol":"AAPL","action":"hold","quantity":10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(srv, http.MethodPost, "/api/trade", `{"symbol":"AAPL","action":"buy","quantity":-5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTradeSucceedsForContinuousClass(t *testing.T) {
	b := &stubBackend{state: backend.PortfolioState{
		Challenge: &portfolio.Challenge{Status: portfolio.StatusActive, CurrentEquity: 100000},
	}}
	store := market.NewStore()
	store.Apply(market.Quote{Symbol: "BTC-USD", Price: 64000, IsOpen: false})
	srv, _ := newTestServer(t, b, store)

	w := doJSON(srv, http.MethodPost, "/api/trade", `{"symbol":"btc-usd","action":"buy","quantity":0.5}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSelectUppercasesAndKeepsTimeframe(t *testing.T) {
	srv, sel := newTestServer(t, &stubBackend{}, market.NewStore())

	w := doJSON(srv, http.MethodPost, "/api/select", `{"symbol":"eurusd=x"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "EURUSD=X", sel.selected)
	assert.Equal(t, "1h", sel.timeframe)

	w = doJSON(srv, http.MethodPost, "/api/select", `{"symbol":"GC=F","timeframe":"1d"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1d", sel.timeframe)
}

func TestTicketEndpoint(t *testing.T) {
	store := market.NewStore()
	srv, _ := newTestServer(t, &stubBackend{}, store)

	w := doJSON(srv, http.MethodGet, "/api/ticket?symbol=AAPL&action=buy&quantity=10", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "no cached quote yet")

	store.Apply(market.Quote{Symbol: "AAPL", Price: 150, IsOpen: true})
	w = doJSON(srv, http.MethodGet, "/api/ticket?symbol=AAPL&action=buy&quantity=10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var ticket portfolio.Ticket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))
	assert.Greater(t, ticket.Ask, ticket.Bid)
	assert.Equal(t, ticket.Ask, ticket.ExecutionPrice)
}

func TestAlertLifecycle(t *testing.T) {
	store := market.NewStore()
	store.Apply(market.Quote{Symbol: "GC=F", Price: 2300, IsOpen: true})
	srv, _ := newTestServer(t, &stubBackend{}, store)

	w := doJSON(srv, http.MethodPost, "/api/alerts", `{"symbol":"GC=F","target_price":2400}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ABOVE", gjson.GetBytes(w.Body.Bytes(), "condition").String())

	w = doJSON(srv, http.MethodGet, "/api/alerts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, gjson.GetBytes(w.Body.Bytes(), "alerts").Array(), 1)

	w = doJSON(srv, http.MethodDelete, "/api/alerts/1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(srv, http.MethodDelete, "/api/alerts/zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuotesEndpointSortsWatchlist(t *testing.T) {
	store := market.NewStore()
	store.Apply(market.Quote{Symbol: "AAPL", Price: 150, ChangePercent: -2})
	srv, _ := newTestServer(t, &stubBackend{}, store)

	w := doJSON(srv, http.MethodGet, "/api/quotes?sort=losers", "")
	require.Equal(t, http.StatusOK, w.Code)
	rows := gjson.GetBytes(w.Body.Bytes(), "watchlist").Array()
	require.Len(t, rows, 1)
	assert.Equal(t, "AAPL", rows[0].Get("symbol").String())
	assert.Equal(t, "stocks", rows[0].Get("class").String())
}

func TestCloseInvalidID(t *testing.T) {
	srv, _ := newTestServer(t, &stubBackend{}, market.NewStore())
	w := doJSON(srv, http.MethodPost, "/api/positions/nope/close", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
