package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookReplaceAll(t *testing.T) {
	b := NewBook()
	assert.Nil(t, b.Challenge())
	assert.Empty(t, b.Positions())

	ch := &Challenge{ID: 1, Status: StatusActive, CurrentEquity: 5000}
	b.ReplaceAll(ch, []Position{{ID: 10, Symbol: "AAPL"}}, []TradeRecord{{ID: 10}})

	got := b.Challenge()
	require.NotNil(t, got)
	assert.Equal(t, 5000.0, got.CurrentEquity)
	assert.Len(t, b.Positions(), 1)
	assert.Len(t, b.History(), 1)

	// returned challenge is a copy
	got.CurrentEquity = 1
	assert.Equal(t, 5000.0, b.Challenge().CurrentEquity)
}

func TestBookRemovePosition(t *testing.T) {
	b := NewBook()
	b.ReplaceAll(nil, []Position{{ID: 1, Symbol: "AAPL"}, {ID: 2, Symbol: "TSLA"}}, nil)

	b.RemovePosition(1)
	ps := b.Positions()
	require.Len(t, ps, 1)
	assert.Equal(t, int64(2), ps[0].ID)

	_, ok := b.FindPosition(1)
	assert.False(t, ok)
	_, ok = b.FindPosition(2)
	assert.True(t, ok)

	b.ClearPositions()
	assert.Empty(t, b.Positions())
}

func TestBookSymbolsDeduped(t *testing.T) {
	b := NewBook()
	b.ReplaceAll(nil, []Position{
		{ID: 1, Symbol: "AAPL"},
		{ID: 2, Symbol: "AAPL"},
		{ID: 3, Symbol: "BTC-USD"},
	}, nil)
	assert.Equal(t, []string{"AAPL", "BTC-USD"}, b.Symbols())
}
