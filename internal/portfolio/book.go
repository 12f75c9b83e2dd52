package portfolio

import "sync"

// Book holds the client-side mirror of challenge, open positions and recent
// history. The three are always replaced together so readers never observe a
// partially applied trading response.
type Book struct {
	mu        sync.RWMutex
	challenge *Challenge
	positions []Position
	history   []TradeRecord
}

func NewBook() *Book {
	return &Book{}
}

// ReplaceAll swaps in a full portfolio response atomically.
func (b *Book) ReplaceAll(challenge *Challenge, positions []Position, history []TradeRecord) {
	b.mu.Lock()
	b.challenge = challenge
	b.positions = append([]Position(nil), positions...)
	b.history = append([]TradeRecord(nil), history...)
	b.mu.Unlock()
}

// Challenge returns the mirrored challenge, which may be nil before the first
// portfolio sync.
func (b *Book) Challenge() *Challenge {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.challenge == nil {
		return nil
	}
	c := *b.challenge
	return &c
}

// Positions returns a copy of the open positions.
func (b *Book) Positions() []Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Position(nil), b.positions...)
}

// History returns a copy of the recent trade records.
func (b *Book) History() []TradeRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]TradeRecord(nil), b.history...)
}

// FindPosition looks up an open position by id.
func (b *Book) FindPosition(id int64) (Position, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, p := range b.positions {
		if p.ID == id {
			return p, true
		}
	}
	return Position{}, false
}

// RemovePosition drops a position locally ahead of the backend confirming the
// close. Reconciliation happens by re-fetching the portfolio.
func (b *Book) RemovePosition(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.positions[:0]
	for _, p := range b.positions {
		if p.ID != id {
			out = append(out, p)
		}
	}
	b.positions = out
}

// ClearPositions drops all positions locally (close-all flow).
func (b *Book) ClearPositions() {
	b.mu.Lock()
	b.positions = nil
	b.mu.Unlock()
}

// Symbols returns the distinct symbols with open exposure.
func (b *Book) Symbols() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	seen := make(map[string]struct{}, len(b.positions))
	out := make([]string, 0, len(b.positions))
	for _, p := range b.positions {
		if _, ok := seen[p.Symbol]; ok {
			continue
		}
		seen[p.Symbol] = struct{}{}
		out = append(out, p.Symbol)
	}
	return out
}
