// Package poller keeps the quote cache fresh under two competing constraints:
// responsiveness for the active symbol and positions at risk, and rate-limit
// safety for the rest of the watchlist.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tradesense/internal/config"
	"tradesense/internal/gateway/backend"
	"tradesense/internal/logger"
	"tradesense/internal/market"
	"tradesense/internal/pkg/symbol"
)

// Source abstracts the backend market endpoints the loops poll.
type Source interface {
	GetPrice(ctx context.Context, symbol string) (market.Quote, error)
	GetBatchPrices(ctx context.Context, symbols []string) (map[string]market.Quote, error)
	GetHistorical(ctx context.Context, symbol, period, interval string) ([]market.Candle, error)
}

// ExposureLister reports the symbols with open positions, which the fast loop
// must keep fresh alongside the active symbol.
type ExposureLister interface {
	Symbols() []string
}

// Poller owns the two polling cadences and the "current active symbol" stamp
// that guards against late responses overwriting fresher state.
type Poller struct {
	cfg    config.PollingConfig
	source Source
	store  *market.Store
	book   ExposureLister
	series *market.Series

	mu           sync.Mutex
	activeSymbol string
	timeframe    string
	watchlist    []string
	halted       bool

	fatalCh  chan error
	stopOnce sync.Once
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func New(cfg config.PollingConfig, source Source, store *market.Store, book ExposureLister, series *market.Series, watchlist []string) *Poller {
	return &Poller{
		cfg:       cfg,
		source:    source,
		store:     store,
		book:      book,
		series:    series,
		watchlist: symbol.Dedupe(watchlist),
		fatalCh:   make(chan error, 1),
	}
}

// Fatal delivers the first unrecoverable polling error. Rejected credentials
// are never retried: the first 401 halts every loop and surfaces here so the
// daemon can shut down.
func (p *Poller) Fatal() <-chan error {
	return p.fatalCh
}

// noteErr classifies a poll failure. Transient errors are left to the next
// tick; a 401 trips the halt and reports true so callers stop immediately.
func (p *Poller) noteErr(err error) bool {
	if !errors.Is(err, backend.ErrUnauthorized) {
		return false
	}
	p.mu.Lock()
	already := p.halted
	p.halted = true
	p.mu.Unlock()
	if !already {
		logger.Errorf("backend rejected credentials, polling stopped")
		p.fatalCh <- err
	}
	return true
}

func (p *Poller) isHalted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.halted
}

// SetWatchlist swaps the background symbol set (config hot reload).
func (p *Poller) SetWatchlist(symbols []string) {
	deduped := symbol.Dedupe(symbols)
	p.mu.Lock()
	p.watchlist = deduped
	p.mu.Unlock()
}

// ActiveSymbol returns the currently charted symbol.
func (p *Poller) ActiveSymbol() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeSymbol
}

// Timeframe returns the currently selected chart timeframe.
func (p *Poller) Timeframe() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timeframe
}

// Select switches the active symbol/timeframe. The stamp is updated and the
// chart cleared synchronously, before any network call, so a late response for
// the previous selection can be recognized and dropped. The fresh quote and
// history load in the background.
func (p *Poller) Select(ctx context.Context, sym, timeframe string) {
	p.mu.Lock()
	p.activeSymbol = sym
	p.timeframe = timeframe
	p.mu.Unlock()

	p.series.Clear()
	p.store.Clear(sym)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.loadActive(ctx, sym, timeframe)
	}()
}

// loadActive fetches the quote and candle history for one selection and
// applies them only if that selection is still current.
func (p *Poller) loadActive(ctx context.Context, sym, timeframe string) {
	if p.isHalted() {
		return
	}
	tf := market.LookupTimeframe(timeframe)

	var (
		g       errgroup.Group
		quote   market.Quote
		gotQ    bool
		candles []market.Candle
	)
	g.Go(func() error {
		q, err := p.source.GetPrice(ctx, sym)
		if err != nil {
			if !p.noteErr(err) {
				logger.Debugf("active price load failed for %s: %v", sym, err)
			}
			return nil
		}
		quote, gotQ = q, true
		return nil
	})
	g.Go(func() error {
		cs, err := p.source.GetHistorical(ctx, sym, tf.Period, tf.Interval)
		if err != nil {
			if !p.noteErr(err) {
				logger.Debugf("history load failed for %s: %v", sym, err)
			}
			return nil
		}
		candles = cs
		return nil
	})
	_ = g.Wait()

	// Stale guard: the user may have switched away while we were fetching.
	p.mu.Lock()
	current := p.activeSymbol == sym && p.timeframe == timeframe
	p.mu.Unlock()
	if !current {
		logger.Debugf("discarding late response for %s", sym)
		return
	}
	if gotQ {
		p.store.Apply(quote)
	}
	if candles != nil {
		p.series.Replace(candles)
	}
}

// Start launches both loops. They stop when ctx is cancelled or Stop is
// called.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(2)
	go func() {
		defer p.wg.Done()
		p.runFast(ctx)
	}()
	go func() {
		defer p.wg.Done()
		p.runSlow(ctx)
	}()
}

// Stop cancels the loops and waits for in-flight work to settle.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
		p.wg.Wait()
	})
}

func (p *Poller) runFast(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.FastInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.FastTick(ctx)
		}
	}
}

func (p *Poller) runSlow(ctx context.Context) {
	// one immediate pass so the watchlist is populated soon after startup
	p.SlowTick(ctx)
	ticker := time.NewTicker(p.cfg.SlowInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.SlowTick(ctx)
		}
	}
}

// fastSet is {active symbol} ∪ {symbols with open exposure}, deduplicated.
func (p *Poller) fastSet() []string {
	p.mu.Lock()
	active := p.activeSymbol
	p.mu.Unlock()

	set := make([]string, 0, 8)
	if active != "" {
		set = append(set, active)
	}
	if p.book != nil {
		set = append(set, p.book.Symbols()...)
	}
	return symbol.Dedupe(set)
}

// FastTick refreshes the active symbol and every symbol with open exposure in
// one batched request, then folds the active price into the live candle.
func (p *Poller) FastTick(ctx context.Context) {
	if p.isHalted() {
		return
	}
	symbols := p.fastSet()
	if len(symbols) == 0 {
		return
	}
	updates, err := p.source.GetBatchPrices(ctx, symbols)
	if err != nil {
		if p.noteErr(err) {
			return
		}
		// price staleness beats an error dialog; next tick is the retry
		logger.Debugf("fast poll failed: %v", err)
		return
	}
	if len(updates) == 0 {
		return
	}

	// Re-read the stamp at apply time: only the currently charted symbol may
	// drive the live candle.
	p.mu.Lock()
	active := p.activeSymbol
	p.mu.Unlock()
	if q, ok := updates[active]; ok && p.series.Len() > 0 {
		p.series.PatchLast(q.Price)
	}

	p.store.ApplyBatch(updates)
}

// SlowTick refreshes every watchlist symbol outside the fast set, a few at a
// time to stay under the upstream rate limit. Each symbol in a batch is
// fetched independently so one failure cannot drop its siblings.
func (p *Poller) SlowTick(ctx context.Context) {
	if p.isHalted() {
		return
	}
	fast := make(map[string]struct{})
	for _, s := range p.fastSet() {
		fast[s] = struct{}{}
	}

	p.mu.Lock()
	watchlist := append([]string(nil), p.watchlist...)
	p.mu.Unlock()

	var others []string
	for _, s := range watchlist {
		if _, ok := fast[s]; !ok {
			others = append(others, s)
		}
	}

	batchSize := p.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 3
	}
	for i := 0; i < len(others); i += batchSize {
		if ctx.Err() != nil || p.isHalted() {
			return
		}
		end := i + batchSize
		if end > len(others) {
			end = len(others)
		}
		p.pollBatch(ctx, others[i:end])
	}
}

func (p *Poller) pollBatch(ctx context.Context, batch []string) {
	var (
		mu      sync.Mutex
		updates = make(map[string]market.Quote, len(batch))
		g       errgroup.Group
	)
	for _, sym := range batch {
		sym := sym
		g.Go(func() error {
			q, err := p.source.GetPrice(ctx, sym)
			if err != nil {
				if !p.noteErr(err) {
					logger.Debugf("background poll failed for %s: %v", sym, err)
				}
				return nil
			}
			mu.Lock()
			updates[sym] = q
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if len(updates) > 0 {
		p.store.ApplyBatch(updates)
	}
}
