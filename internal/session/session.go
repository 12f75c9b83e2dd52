// Package session coordinates the trading workflow: it mirrors backend state
// into the local book, gates order submission, keeps the alert supervisor in
// sync and journals every action. The backend stays the single source of
// truth; the session only orchestrates.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tradesense/internal/alert"
	"tradesense/internal/gate"
	"tradesense/internal/gateway/backend"
	"tradesense/internal/logger"
	"tradesense/internal/market"
	"tradesense/internal/portfolio"
	"tradesense/internal/store/events"
)

// ErrTradingBlocked is returned when the trading gate refuses an order. The
// wrapped message carries the user-facing reason.
var ErrTradingBlocked = errors.New("trading blocked")

// Backend is the slice of the REST client the session depends on.
type Backend interface {
	GetPortfolio(ctx context.Context) (backend.PortfolioState, error)
	ExecuteTrade(ctx context.Context, req backend.TradeRequest) (backend.PortfolioState, error)
	ClosePosition(ctx context.Context, tradeID int64, price float64) (backend.PortfolioState, error)
	CloseAll(ctx context.Context) (backend.PortfolioState, error)
	Reset(ctx context.Context) (backend.PortfolioState, error)
	ListAlerts(ctx context.Context) ([]backend.AlertRecord, error)
	CreateAlert(ctx context.Context, symbol string, targetPrice float64, condition string) (backend.AlertRecord, error)
	DeleteAlert(ctx context.Context, id int64) error
	GetAISignal(ctx context.Context, symbol string) (backend.Signal, error)
}

// Controller owns the session state machine.
type Controller struct {
	backend    Backend
	book       *portfolio.Book
	store      *market.Store
	valuer     *portfolio.Valuer
	gate       *gate.Gate
	supervisor *alert.Supervisor
	journal    *events.Store
}

func NewController(b Backend, book *portfolio.Book, store *market.Store, valuer *portfolio.Valuer, g *gate.Gate, supervisor *alert.Supervisor, journal *events.Store) *Controller {
	return &Controller{
		backend:    b,
		book:       book,
		store:      store,
		valuer:     valuer,
		gate:       g,
		supervisor: supervisor,
		journal:    journal,
	}
}

// Book exposes the portfolio mirror, mainly for the fast polling loop's
// exposure set.
func (c *Controller) Book() *portfolio.Book { return c.book }

// Refresh re-fetches the authoritative portfolio and replaces the mirror.
// This is also the rollback path after a failed optimistic mutation.
func (c *Controller) Refresh(ctx context.Context) error {
	state, err := c.backend.GetPortfolio(ctx)
	if err != nil {
		return fmt.Errorf("refreshing portfolio failed: %w", err)
	}
	c.book.ReplaceAll(state.Challenge, state.Positions, state.RecentTrades)
	return nil
}

// Snapshot is the full dashboard state assembled from local mirrors. No
// network calls: everything here is already cached.
type Snapshot struct {
	Challenge *portfolio.Challenge     `json:"challenge"`
	Positions []portfolio.PositionView `json:"positions"`
	History   []portfolio.TradeRecord  `json:"recent_trades"`
	Metrics   portfolio.Metrics        `json:"metrics"`
	Severity  portfolio.MarginSeverity `json:"margin_severity"`
	Alerts    []alert.Alert            `json:"alerts"`
}

// Snapshot assembles the dashboard view from the book and quote cache.
func (c *Controller) Snapshot() Snapshot {
	challenge := c.book.Challenge()
	positions := c.book.Positions()
	quotes := c.store.Snapshot()
	metrics := c.valuer.Compute(challenge, positions, quotes)
	return Snapshot{
		Challenge: challenge,
		Positions: c.valuer.View(positions, quotes),
		History:   c.book.History(),
		Metrics:   metrics,
		Severity:  metrics.Severity(),
		Alerts:    c.supervisor.Alerts(),
	}
}

// GateFor reports whether an order for sym would currently be accepted.
func (c *Controller) GateFor(sym string) gate.Decision {
	var quote *market.Quote
	if q, ok := c.store.Get(sym); ok {
		quote = &q
	}
	return c.gate.Decide(c.book.Challenge(), sym, quote)
}

// Ticket previews an order against the cached quote.
func (c *Controller) Ticket(sym, action string, quantity float64) (portfolio.Ticket, error) {
	q, ok := c.store.Get(sym)
	if !ok || q.Price <= 0 {
		return portfolio.Ticket{}, fmt.Errorf("no cached price for %s yet", sym)
	}
	return c.valuer.BuildTicket(sym, action, quantity, q.Price), nil
}

// ExecuteTrade submits an order after the gate approves it. The backend's
// response replaces the whole mirror atomically.
func (c *Controller) ExecuteTrade(ctx context.Context, req backend.TradeRequest) (Snapshot, error) {
	decision := c.GateFor(req.Symbol)
	if !decision.Allowed {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrTradingBlocked, decision.Reason)
	}

	traceID := uuid.NewString()
	state, err := c.backend.ExecuteTrade(ctx, req)
	if err != nil {
		return Snapshot{}, err
	}
	c.book.ReplaceAll(state.Challenge, state.Positions, state.RecentTrades)

	msg := fmt.Sprintf("%s %v %s", req.Action, req.Quantity, req.Symbol)
	if err := c.journal.Append(ctx, events.KindTradeExecuted, req.Symbol, traceID, msg, req); err != nil {
		logger.Warnf("journaling trade failed: %v", err)
	}
	logger.Infof("trade executed [%s]: %s", traceID, msg)
	return c.Snapshot(), nil
}

// ClosePosition closes one trade. The position disappears from the mirror
// immediately; if the backend rejects the close, a refresh restores it. The
// price the dashboard was showing is locked in with the request.
func (c *Controller) ClosePosition(ctx context.Context, tradeID int64) (Snapshot, error) {
	pos, ok := c.book.FindPosition(tradeID)
	if !ok {
		return Snapshot{}, fmt.Errorf("no open position with id %d", tradeID)
	}
	var lockedPrice float64
	if q, found := c.store.Get(pos.Symbol); found {
		lockedPrice = q.Price
	}

	traceID := uuid.NewString()
	c.book.RemovePosition(tradeID)

	state, err := c.backend.ClosePosition(ctx, tradeID, lockedPrice)
	if err != nil {
		if rbErr := c.Refresh(ctx); rbErr != nil {
			logger.Errorf("rollback refresh after failed close also failed: %v", rbErr)
		}
		return Snapshot{}, err
	}
	c.book.ReplaceAll(state.Challenge, state.Positions, state.RecentTrades)

	msg := fmt.Sprintf("closed position %d (%s)", tradeID, pos.Symbol)
	if err := c.journal.Append(ctx, events.KindPositionClosed, pos.Symbol, traceID, msg, map[string]any{
		"trade_id": tradeID,
		"price":    lockedPrice,
	}); err != nil {
		logger.Warnf("journaling close failed: %v", err)
	}
	logger.Infof("position closed [%s]: %s", traceID, msg)
	return c.Snapshot(), nil
}

// CloseAll flattens every open position, with the same optimistic-then-
// reconcile shape as ClosePosition.
func (c *Controller) CloseAll(ctx context.Context) (Snapshot, error) {
	traceID := uuid.NewString()
	c.book.ClearPositions()

	state, err := c.backend.CloseAll(ctx)
	if err != nil {
		if rbErr := c.Refresh(ctx); rbErr != nil {
			logger.Errorf("rollback refresh after failed close-all also failed: %v", rbErr)
		}
		return Snapshot{}, err
	}
	c.book.ReplaceAll(state.Challenge, state.Positions, state.RecentTrades)

	if err := c.journal.Append(ctx, events.KindCloseAll, "", traceID, "closed all positions", nil); err != nil {
		logger.Warnf("journaling close-all failed: %v", err)
	}
	logger.Infof("all positions closed [%s]", traceID)
	return c.Snapshot(), nil
}

// Reset restarts the challenge and swaps in the fresh mirror.
func (c *Controller) Reset(ctx context.Context) (Snapshot, error) {
	traceID := uuid.NewString()
	state, err := c.backend.Reset(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	c.book.ReplaceAll(state.Challenge, state.Positions, state.RecentTrades)

	if err := c.journal.Append(ctx, events.KindReset, "", traceID, "challenge reset", nil); err != nil {
		logger.Warnf("journaling reset failed: %v", err)
	}
	logger.Infof("challenge reset [%s]", traceID)
	return c.Snapshot(), nil
}

// SyncAlerts pulls the server-side alert set into the supervisor.
func (c *Controller) SyncAlerts(ctx context.Context) error {
	records, err := c.backend.ListAlerts(ctx)
	if err != nil {
		return fmt.Errorf("loading alerts failed: %w", err)
	}
	alerts := make([]alert.Alert, 0, len(records))
	for _, r := range records {
		alerts = append(alerts, alert.Alert(r))
	}
	c.supervisor.SetAlerts(alerts)
	return nil
}

// CreateAlert registers a price alert. The trigger direction is inferred from
// where the target sits relative to the cached price.
func (c *Controller) CreateAlert(ctx context.Context, sym string, targetPrice float64) (alert.Alert, error) {
	if targetPrice <= 0 {
		return alert.Alert{}, fmt.Errorf("target price must be positive")
	}
	var current float64
	if q, ok := c.store.Get(sym); ok {
		current = q.Price
	}
	condition := alert.InferCondition(targetPrice, current)

	created, err := c.backend.CreateAlert(ctx, sym, targetPrice, condition)
	if err != nil {
		return alert.Alert{}, err
	}
	a := alert.Alert(created)
	c.supervisor.Add(a)
	return a, nil
}

// DeleteAlert removes an alert both server-side and locally.
func (c *Controller) DeleteAlert(ctx context.Context, id int64) error {
	if err := c.backend.DeleteAlert(ctx, id); err != nil {
		return err
	}
	c.supervisor.Remove(id)
	return nil
}

// AISignal proxies the advisory signal for the dashboard. Display only, the
// gate never consults it.
func (c *Controller) AISignal(ctx context.Context, sym string) (backend.Signal, error) {
	return c.backend.GetAISignal(ctx, sym)
}

// RecentEvents reads the local journal for the notification history feed.
func (c *Controller) RecentEvents(ctx context.Context, limit int) ([]events.Event, error) {
	return c.journal.Recent(ctx, limit)
}
