// Package gate decides whether order submission is currently allowed.
// It only reflects state the backend already decided (challenge status) and
// the cached market-open flag; it never computes pass/fail itself.
package gate

import (
	"fmt"
	"sync"

	"tradesense/internal/market"
	"tradesense/internal/pkg/symbol"
	"tradesense/internal/portfolio"
)

// State is the gate's view of the challenge.
type State string

const (
	StateActive State = "active"
	StateFailed State = "failed"
	StatePassed State = "passed"
)

// Decision is the gating outcome for one instrument.
type Decision struct {
	State        State  `json:"state"`
	Allowed      bool   `json:"allowed"`
	MarketClosed bool   `json:"market_closed,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// Gate holds the configured set of asset classes that trade around the clock.
// The set is swapped by the config hot-reload callback while HTTP handlers
// call Decide, so access goes through the mutex.
type Gate struct {
	mu                sync.RWMutex
	continuousClasses []string
}

func New(continuousClasses []string) *Gate {
	return &Gate{continuousClasses: append([]string(nil), continuousClasses...)}
}

// SetContinuousClasses replaces the continuous-class set (config hot reload).
func (g *Gate) SetContinuousClasses(classes []string) {
	copied := append([]string(nil), classes...)
	g.mu.Lock()
	g.continuousClasses = copied
	g.mu.Unlock()
}

func (g *Gate) classes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.continuousClasses
}

// Decide gates an order for sym. A failed challenge blocks everything and
// carries the backend's failure reason; a passed challenge blocks new orders
// too. For an active challenge the instrument must be open unless it belongs
// to a continuous asset class.
func (g *Gate) Decide(challenge *portfolio.Challenge, sym string, quote *market.Quote) Decision {
	if challenge == nil {
		return Decision{State: StateActive, Reason: "no active challenge"}
	}
	switch challenge.Status {
	case portfolio.StatusFailed:
		reason := challenge.FailureReason
		if reason == "" {
			reason = "challenge failed"
		}
		return Decision{State: StateFailed, Reason: reason}
	case portfolio.StatusPassed:
		return Decision{State: StatePassed, Reason: "challenge passed, start a new one to keep trading"}
	}

	if symbol.Continuous(sym, g.classes()) {
		return Decision{State: StateActive, Allowed: true}
	}
	if quote == nil || !quote.IsOpen {
		return Decision{
			State:        StateActive,
			MarketClosed: true,
			Reason:       fmt.Sprintf("market closed for %s", sym),
		}
	}
	return Decision{State: StateActive, Allowed: true}
}
