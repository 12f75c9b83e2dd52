package events

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAppendAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Append(ctx, KindAlertTriggered, "BTC-USD", "trace-1", "BTC-USD hit 65000", map[string]any{"target": 65000}))
	require.NoError(t, s.Append(ctx, KindTradeExecuted, "AAPL", "trace-2", "buy 10 AAPL", nil))

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// most recent first
	assert.Equal(t, KindTradeExecuted, got[0].Kind)
	assert.Equal(t, KindAlertTriggered, got[1].Kind)
	assert.JSONEq(t, `{"target": 65000}`, string(got[1].Detail))
}

func TestStoreRecentLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(ctx, KindPositionClosed, "TSLA", "", "closed", nil))
	}
	got, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestStoreRejectsEmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}
