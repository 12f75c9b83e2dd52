// Package alert watches the quote cache against user-defined price triggers.
// It is a best-effort convenience while the daemon runs; the authoritative
// alert store is the backend.
package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tradesense/internal/logger"
	"tradesense/internal/market"
	"tradesense/internal/store/events"
)

// Alert condition values.
const (
	CondAbove = "ABOVE"
	CondBelow = "BELOW"
)

// Alert is one price trigger mirrored from the backend.
type Alert struct {
	ID          int64   `json:"id"`
	Symbol      string  `json:"symbol"`
	TargetPrice float64 `json:"target_price"`
	Condition   string  `json:"condition"`
}

// Deleter removes a fired alert server-side.
type Deleter interface {
	DeleteAlert(ctx context.Context, id int64) error
}

// Supervisor evaluates the alert set against every quote update and fires each
// alert at most once.
type Supervisor struct {
	deleter  Deleter
	notifier Notifier
	journal  *events.Store

	deleteTimeout time.Duration

	mu     sync.Mutex
	alerts map[int64]Alert
}

func NewSupervisor(deleter Deleter, notifier Notifier, journal *events.Store) *Supervisor {
	return &Supervisor{
		deleter:       deleter,
		notifier:      notifier,
		journal:       journal,
		deleteTimeout: 10 * time.Second,
		alerts:        make(map[int64]Alert),
	}
}

// SetAlerts replaces the whole alert set (backend sync).
func (s *Supervisor) SetAlerts(alerts []Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = make(map[int64]Alert, len(alerts))
	for _, a := range alerts {
		s.alerts[a.ID] = a
	}
}

// Add registers one alert locally after it was created server-side.
func (s *Supervisor) Add(a Alert) {
	s.mu.Lock()
	s.alerts[a.ID] = a
	s.mu.Unlock()
}

// Remove drops one alert locally (user deletion).
func (s *Supervisor) Remove(id int64) {
	s.mu.Lock()
	delete(s.alerts, id)
	s.mu.Unlock()
}

// Alerts returns the currently armed alerts.
func (s *Supervisor) Alerts() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, a)
	}
	return out
}

// HandleQuote evaluates the set against one quote update. Registered as a
// quote store listener. Matching alerts are removed from the local set before
// any I/O starts, which is what guarantees at-most-once firing even when the
// next evaluation runs before the backend delete resolves.
func (s *Supervisor) HandleQuote(q market.Quote) {
	if q.Symbol == "" || q.Price <= 0 {
		return
	}
	price := decimal.NewFromFloat(q.Price)

	s.mu.Lock()
	var fired []Alert
	for id, a := range s.alerts {
		if a.Symbol != q.Symbol {
			continue
		}
		target := decimal.NewFromFloat(a.TargetPrice)
		hit := (a.Condition == CondAbove && price.GreaterThanOrEqual(target)) ||
			(a.Condition == CondBelow && price.LessThanOrEqual(target))
		if hit {
			delete(s.alerts, id)
			fired = append(fired, a)
		}
	}
	s.mu.Unlock()

	for _, a := range fired {
		s.fire(a, q.Price)
	}
}

func (s *Supervisor) fire(a Alert, current float64) {
	title := fmt.Sprintf("Price alert: %s", a.Symbol)
	body := fmt.Sprintf("%s reached your target of $%v (current: $%v)", a.Symbol, a.TargetPrice, current)

	if s.notifier != nil {
		if err := s.notifier.Notify(title, body); err != nil {
			logger.Debugf("alert notification failed: %v", err)
		}
		if err := s.notifier.Beep(); err != nil {
			logger.Debugf("alert sound failed: %v", err)
		}
	}

	if s.journal != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.deleteTimeout)
		if err := s.journal.Append(ctx, events.KindAlertTriggered, a.Symbol, "", body, a); err != nil {
			logger.Warnf("journaling alert trigger failed: %v", err)
		}
		cancel()
	}

	logger.Infof("alert fired: %s", body)

	// Fire-and-forget: an orphaned alert on the server is harmless, the local
	// removal above already prevents a re-fire.
	if s.deleter != nil {
		go func(id int64) {
			ctx, cancel := context.WithTimeout(context.Background(), s.deleteTimeout)
			defer cancel()
			if err := s.deleter.DeleteAlert(ctx, id); err != nil {
				logger.Warnf("deleting fired alert %d failed: %v", id, err)
			}
		}(a.ID)
	}
}

// InferCondition picks the trigger direction from the relation between target
// and current price, matching how alerts are created in the UI.
func InferCondition(targetPrice, currentPrice float64) string {
	if targetPrice > currentPrice {
		return CondAbove
	}
	return CondBelow
}
