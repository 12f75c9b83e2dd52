package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tradesense/internal/gateway/backend"
	"tradesense/internal/logger"
	"tradesense/internal/market"
	"tradesense/internal/session"
)

// Selector is the slice of the poller the API needs for symbol switching.
type Selector interface {
	Select(ctx context.Context, symbol, timeframe string)
	ActiveSymbol() string
	Timeframe() string
}

// Router exposes the dashboard endpoints.
type Router struct {
	session   *session.Controller
	selector  Selector
	quotes    *market.Store
	series    *market.Series
	watchlist func() []string
}

// NewRouter builds the dashboard router. watchlist supplies the configured
// symbol order for the quotes listing and may be nil.
func NewRouter(ctrl *session.Controller, selector Selector, quotes *market.Store, series *market.Series, watchlist func() []string) *Router {
	return &Router{
		session:   ctrl,
		selector:  selector,
		quotes:    quotes,
		series:    series,
		watchlist: watchlist,
	}
}

// Register mounts the dashboard routes on group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/state", r.handleState)
	group.GET("/quotes", r.handleQuotes)
	group.GET("/chart", r.handleChart)
	group.POST("/select", r.handleSelect)
	group.GET("/gate", r.handleGate)
	group.GET("/ticket", r.handleTicket)
	group.POST("/trade", r.handleTrade)
	group.POST("/positions/:id/close", r.handleClose)
	group.POST("/close-all", r.handleCloseAll)
	group.POST("/reset", r.handleReset)
	group.GET("/alerts", r.handleListAlerts)
	group.POST("/alerts", r.handleCreateAlert)
	group.DELETE("/alerts/:id", r.handleDeleteAlert)
	group.GET("/events", r.handleEvents)
	group.GET("/ai-signal/:symbol", r.handleAISignal)
}

// statusFor maps controller errors onto HTTP statuses: auth failures are the
// caller's problem, gate refusals are a conflict with account state, the rest
// is a bad gateway to the backend.
func statusFor(err error) int {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrTradingBlocked):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (r *Router) handleState(c *gin.Context) {
	snap := r.session.Snapshot()
	active := r.selector.ActiveSymbol()
	c.JSON(http.StatusOK, gin.H{
		"snapshot":      snap,
		"active_symbol": active,
		"timeframe":     r.selector.Timeframe(),
		"gate":          r.session.GateFor(active),
	})
}

func (r *Router) handleQuotes(c *gin.Context) {
	var symbols []string
	if r.watchlist != nil {
		symbols = r.watchlist()
	}
	rows := market.RankWatchlist(
		symbols,
		r.quotes.Snapshot(),
		c.DefaultQuery("sort", market.SortDefault),
		c.Query("class"),
		c.Query("q"),
	)
	c.JSON(http.StatusOK, gin.H{"watchlist": rows})
}

func (r *Router) handleChart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"symbol":    r.selector.ActiveSymbol(),
		"timeframe": r.selector.Timeframe(),
		"candles":   r.series.Snapshot(),
	})
}

type selectRequest struct {
	Symbol    string `json:"symbol" binding:"required"`
	Timeframe string `json:"timeframe"`
}

func (r *Router) handleSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sym := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if sym == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol cannot be empty"})
		return
	}
	tf := req.Timeframe
	if tf == "" {
		tf = r.selector.Timeframe()
	}
	// background load outlives this request
	r.selector.Select(context.Background(), sym, tf)
	logger.Infof("[api] symbol selected ip=%s symbol=%s tf=%s", c.ClientIP(), sym, tf)
	c.JSON(http.StatusOK, gin.H{"symbol": sym, "timeframe": tf})
}

func (r *Router) handleGate(c *gin.Context) {
	sym := strings.ToUpper(strings.TrimSpace(c.Query("symbol")))
	if sym == "" {
		sym = r.selector.ActiveSymbol()
	}
	c.JSON(http.StatusOK, r.session.GateFor(sym))
}

func (r *Router) handleTicket(c *gin.Context) {
	sym := strings.ToUpper(strings.TrimSpace(c.Query("symbol")))
	action := strings.ToLower(strings.TrimSpace(c.DefaultQuery("action", "buy")))
	quantity, _ := strconv.ParseFloat(c.DefaultQuery("quantity", "0"), 64)
	if sym == "" || quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol and a positive quantity are required"})
		return
	}
	ticket, err := r.session.Ticket(sym, action, quantity)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type tradeRequest struct {
	Symbol     string   `json:"symbol" binding:"required"`
	Action     string   `json:"action" binding:"required"`
	Quantity   float64  `json:"quantity" binding:"required"`
	StopLoss   *float64 `json:"stop_loss"`
	TakeProfit *float64 `json:"take_profit"`
}

func (r *Router) handleTrade(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	action := strings.ToLower(strings.TrimSpace(req.Action))
	if action != "buy" && action != "sell" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be buy or sell"})
		return
	}
	if req.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive"})
		return
	}
	snap, err := r.session.ExecuteTrade(c.Request.Context(), backend.TradeRequest{
		Symbol:     strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Action:     action,
		Quantity:   req.Quantity,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
	})
	if err != nil {
		logger.Warnf("[api] trade rejected ip=%s symbol=%s err=%v", c.ClientIP(), req.Symbol, err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (r *Router) handleClose(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	if id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid position id"})
		return
	}
	snap, err := r.session.ClosePosition(c.Request.Context(), id)
	if err != nil {
		logger.Warnf("[api] close failed ip=%s id=%d err=%v", c.ClientIP(), id, err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (r *Router) handleCloseAll(c *gin.Context) {
	snap, err := r.session.CloseAll(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (r *Router) handleReset(c *gin.Context) {
	snap, err := r.session.Reset(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	logger.Infof("[api] challenge reset ip=%s", c.ClientIP())
	c.JSON(http.StatusOK, snap)
}

func (r *Router) handleListAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"alerts": r.session.Snapshot().Alerts})
}

type createAlertRequest struct {
	Symbol      string  `json:"symbol" binding:"required"`
	TargetPrice float64 `json:"target_price" binding:"required"`
}

func (r *Router) handleCreateAlert(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := r.session.CreateAlert(c.Request.Context(), strings.ToUpper(strings.TrimSpace(req.Symbol)), req.TargetPrice)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (r *Router) handleDeleteAlert(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	if id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}
	if err := r.session.DeleteAlert(c.Request.Context(), id); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (r *Router) handleEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	events, err := r.session.RecentEvents(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (r *Router) handleAISignal(c *gin.Context) {
	sym := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	sig, err := r.session.AISignal(c.Request.Context(), sym)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sig)
}
