package market

import (
	"sync"
)

// UpdateListener is invoked after a quote has been written to the store.
// Listeners run on the writer's goroutine, after the lock is released.
type UpdateListener func(Quote)

// Store is the quote cache: last-known price per symbol. All writes funnel
// through Apply/ApplyBatch so downstream consumers (valuation, alerts, chart
// patching) observe every mutation.
type Store struct {
	mu        sync.RWMutex
	quotes    map[string]Quote
	listeners []UpdateListener
}

func NewStore() *Store {
	return &Store{quotes: make(map[string]Quote)}
}

// OnUpdate registers a listener for quote writes. Not safe to call after the
// polling loops have started.
func (s *Store) OnUpdate(fn UpdateListener) {
	if fn == nil {
		return
	}
	s.listeners = append(s.listeners, fn)
}

// Apply overwrites the cached quote for its symbol.
func (s *Store) Apply(q Quote) {
	if q.Symbol == "" {
		return
	}
	s.mu.Lock()
	s.quotes[q.Symbol] = q
	s.mu.Unlock()
	for _, fn := range s.listeners {
		fn(q)
	}
}

// ApplyBatch overwrites every quote in the batch.
func (s *Store) ApplyBatch(quotes map[string]Quote) {
	if len(quotes) == 0 {
		return
	}
	applied := make([]Quote, 0, len(quotes))
	s.mu.Lock()
	for sym, q := range quotes {
		if sym == "" {
			continue
		}
		q.Symbol = sym
		s.quotes[sym] = q
		applied = append(applied, q)
	}
	s.mu.Unlock()
	for _, q := range applied {
		for _, fn := range s.listeners {
			fn(q)
		}
	}
}

// Get returns the cached quote for symbol, if any.
func (s *Store) Get(symbol string) (Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[symbol]
	return q, ok
}

// Clear drops the cached quote for symbol so the UI shows a loading state
// instead of stale data after a symbol switch.
func (s *Store) Clear(symbol string) {
	s.mu.Lock()
	delete(s.quotes, symbol)
	s.mu.Unlock()
}

// Snapshot returns a copy of the whole cache.
func (s *Store) Snapshot() map[string]Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Quote, len(s.quotes))
	for sym, q := range s.quotes {
		out[sym] = q
	}
	return out
}
