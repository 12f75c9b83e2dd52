package portfolio

// Challenge status values as reported by the backend. The client never decides
// pass/fail itself, it only mirrors what the backend says.
const (
	StatusActive = "active"
	StatusFailed = "failed"
	StatusPassed = "passed"
)

// Challenge is the simulated funded-account evaluation the user trades under.
// Replaced wholesale after every trading action response.
type Challenge struct {
	ID                  int64   `json:"id"`
	PlanType            string  `json:"plan_type"`
	InitialBalance      float64 `json:"initial_balance"`
	CurrentEquity       float64 `json:"current_equity"`
	Status              string  `json:"status"`
	ProfitPercent       float64 `json:"profit_percent"`
	TotalProfit         float64 `json:"total_profit"`
	ProfitTargetPercent float64 `json:"profit_target_percent"`
	MaxDailyLossPercent float64 `json:"max_daily_loss_percent"`
	MaxTotalLossPercent float64 `json:"max_total_loss_percent"`
	FailureReason       string  `json:"failure_reason,omitempty"`
}

// Position is one open trade mirrored from the backend. Quantity carries
// magnitude only; direction comes from Action.
type Position struct {
	ID         int64   `json:"id"`
	Symbol     string  `json:"symbol"`
	Action     string  `json:"action"` // "buy" | "sell"
	Quantity   float64 `json:"quantity"`
	EntryPrice float64 `json:"price"`
	StopLoss   float64 `json:"stop_loss,omitempty"`
	TakeProfit float64 `json:"take_profit,omitempty"`
	OpenedAt   string  `json:"created_at,omitempty"`
}

// TradeRecord is a row of recent trade history.
type TradeRecord struct {
	ID         int64   `json:"id"`
	Symbol     string  `json:"symbol"`
	Action     string  `json:"action"`
	Quantity   float64 `json:"quantity"`
	Price      float64 `json:"price"`
	ProfitLoss float64 `json:"profit_loss"`
	IsOpen     bool    `json:"is_open"`
	ClosedAt   string  `json:"closed_at,omitempty"`
}
