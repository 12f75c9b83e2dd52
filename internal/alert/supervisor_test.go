package alert

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradesense/internal/market"
)

type recordingNotifier struct {
	mu      sync.Mutex
	notices []string
	beeps   int
	fail    bool
}

func (r *recordingNotifier) Notify(title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, body)
	if r.fail {
		return assert.AnError
	}
	return nil
}

func (r *recordingNotifier) Beep() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beeps++
	if r.fail {
		return assert.AnError
	}
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}

type blockingDeleter struct {
	mu      sync.Mutex
	deleted []int64
	release chan struct{}
}

func newBlockingDeleter() *blockingDeleter {
	return &blockingDeleter{release: make(chan struct{})}
}

func (d *blockingDeleter) DeleteAlert(ctx context.Context, id int64) error {
	<-d.release
	d.mu.Lock()
	d.deleted = append(d.deleted, id)
	d.mu.Unlock()
	return nil
}

func TestSupervisorFiresAboveAndBelow(t *testing.T) {
	n := &recordingNotifier{}
	s := NewSupervisor(nil, n, nil)
	s.SetAlerts([]Alert{
		{ID: 1, Symbol: "BTC-USD", TargetPrice: 65000, Condition: CondAbove},
		{ID: 2, Symbol: "AAPL", TargetPrice: 180, Condition: CondBelow},
	})

	s.HandleQuote(market.Quote{Symbol: "BTC-USD", Price: 64999})
	assert.Zero(t, n.count())

	// boundary is inclusive
	s.HandleQuote(market.Quote{Symbol: "BTC-USD", Price: 65000})
	assert.Equal(t, 1, n.count())

	s.HandleQuote(market.Quote{Symbol: "AAPL", Price: 179.5})
	assert.Equal(t, 2, n.count())
	assert.Empty(t, s.Alerts())
}

func TestSupervisorFiresAtMostOnce(t *testing.T) {
	n := &recordingNotifier{}
	d := newBlockingDeleter()
	s := NewSupervisor(d, n, nil)
	s.SetAlerts([]Alert{{ID: 7, Symbol: "ETH-USD", TargetPrice: 3000, Condition: CondAbove}})

	// two evaluations before the backend delete resolves
	s.HandleQuote(market.Quote{Symbol: "ETH-USD", Price: 3100})
	s.HandleQuote(market.Quote{Symbol: "ETH-USD", Price: 3200})
	assert.Equal(t, 1, n.count())

	close(d.release)
	require.Eventually(t, func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		return len(d.deleted) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSupervisorNotifierFailureDoesNotRefire(t *testing.T) {
	n := &recordingNotifier{fail: true}
	s := NewSupervisor(nil, n, nil)
	s.SetAlerts([]Alert{{ID: 3, Symbol: "TSLA", TargetPrice: 200, Condition: CondBelow}})

	s.HandleQuote(market.Quote{Symbol: "TSLA", Price: 195})
	s.HandleQuote(market.Quote{Symbol: "TSLA", Price: 190})
	assert.Equal(t, 1, n.count())
}

func TestSupervisorSkipsOtherSymbols(t *testing.T) {
	n := &recordingNotifier{}
	s := NewSupervisor(nil, n, nil)
	s.SetAlerts([]Alert{{ID: 4, Symbol: "GC=F", TargetPrice: 2400, Condition: CondAbove}})

	s.HandleQuote(market.Quote{Symbol: "SI=F", Price: 9000})
	assert.Zero(t, n.count())
	assert.Len(t, s.Alerts(), 1)
}

func TestSupervisorAddRemove(t *testing.T) {
	s := NewSupervisor(nil, nil, nil)
	s.Add(Alert{ID: 1, Symbol: "AAPL", TargetPrice: 190, Condition: CondAbove})
	s.Add(Alert{ID: 2, Symbol: "TSLA", TargetPrice: 100, Condition: CondBelow})
	assert.Len(t, s.Alerts(), 2)
	s.Remove(1)
	got := s.Alerts()
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestInferCondition(t *testing.T) {
	assert.Equal(t, CondAbove, InferCondition(200, 190))
	assert.Equal(t, CondBelow, InferCondition(180, 190))
	assert.Equal(t, CondBelow, InferCondition(190, 190))
}
