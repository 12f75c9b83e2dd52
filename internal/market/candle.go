package market

import "sync"

// Candle is one OHLC bar from the historical endpoint.
type Candle struct {
	Time  string  `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Series holds the candle history for the chart of the active symbol.
// The fast polling loop patches the last candle in place so the chart moves
// between historical reloads.
type Series struct {
	mu      sync.RWMutex
	candles []Candle
}

func NewSeries() *Series {
	return &Series{}
}

// Replace swaps in a freshly loaded history.
func (s *Series) Replace(candles []Candle) {
	s.mu.Lock()
	s.candles = append([]Candle(nil), candles...)
	s.mu.Unlock()
}

// Clear empties the series, typically on symbol or timeframe switch.
func (s *Series) Clear() {
	s.mu.Lock()
	s.candles = nil
	s.mu.Unlock()
}

// Len reports the number of loaded candles.
func (s *Series) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candles)
}

// PatchLast folds a live price into the most recent candle: close follows the
// price and high/low stretch to contain it. No-op on an empty series.
func (s *Series) PatchLast(price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.candles) == 0 {
		return
	}
	last := &s.candles[len(s.candles)-1]
	last.Close = price
	if price > last.High {
		last.High = price
	}
	if price < last.Low {
		last.Low = price
	}
}

// Snapshot returns a copy of the series.
func (s *Series) Snapshot() []Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Candle(nil), s.candles...)
}
