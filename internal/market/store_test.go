package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreApplyAndGet(t *testing.T) {
	s := NewStore()
	_, ok := s.Get("AAPL")
	assert.False(t, ok)

	s.Apply(Quote{Symbol: "AAPL", Price: 187.5, IsOpen: true})
	q, ok := s.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, 187.5, q.Price)

	// wholesale replacement, no field merge
	s.Apply(Quote{Symbol: "AAPL", Price: 188.0})
	q, _ = s.Get("AAPL")
	assert.Equal(t, 188.0, q.Price)
	assert.False(t, q.IsOpen)
}

func TestStoreNotifiesListeners(t *testing.T) {
	s := NewStore()
	var seen []string
	s.OnUpdate(func(q Quote) { seen = append(seen, q.Symbol) })

	s.Apply(Quote{Symbol: "TSLA", Price: 250})
	s.ApplyBatch(map[string]Quote{
		"BTC-USD": {Price: 64000},
		"ETH-USD": {Price: 3100},
	})
	assert.Len(t, seen, 3)
	assert.Contains(t, seen, "TSLA")
	assert.Contains(t, seen, "BTC-USD")
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	s.Apply(Quote{Symbol: "GC=F", Price: 2300})
	s.Clear("GC=F")
	_, ok := s.Get("GC=F")
	assert.False(t, ok)
}

func TestParseQuoteToleratesStringNumbers(t *testing.T) {
	raw := []byte(`{"price":"101.5","change_percent":"0.42","is_open":true,"message":"Ouvert 24/7"}`)
	q, ok := ParseQuote("BTC-USD", raw)
	require.True(t, ok)
	assert.Equal(t, 101.5, q.Price)
	assert.Equal(t, 0.42, q.ChangePercent)
	assert.True(t, q.IsOpen)

	_, ok = ParseQuote("BTC-USD", []byte(`{"error":"provider down"}`))
	assert.False(t, ok)
}

func TestParseQuoteBatchSkipsErrors(t *testing.T) {
	raw := []byte(`{
		"AAPL": {"price": 187.2, "change_percent": -0.3, "is_open": true},
		"TSLA": {"error": "rate limited"}
	}`)
	got := ParseQuoteBatch(raw)
	require.Len(t, got, 1)
	assert.Equal(t, 187.2, got["AAPL"].Price)
}

func TestSeriesPatchLast(t *testing.T) {
	s := NewSeries()
	s.PatchLast(10) // empty series is a no-op

	s.Replace([]Candle{
		{Time: "2026-08-31T14:00", Open: 100, High: 102, Low: 99, Close: 101},
		{Time: "2026-08-31T15:00", Open: 101, High: 101.5, Low: 100.5, Close: 101.2},
	})

	s.PatchLast(103)
	got := s.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, 103.0, got[1].Close)
	assert.Equal(t, 103.0, got[1].High)

	s.PatchLast(100.1)
	got = s.Snapshot()
	assert.Equal(t, 100.1, got[1].Close)
	assert.Equal(t, 100.1, got[1].Low)
	assert.Equal(t, 103.0, got[1].High)

	// first candle untouched
	assert.Equal(t, 101.0, got[0].Close)
}
