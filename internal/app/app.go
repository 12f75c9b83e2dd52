// Package app wires the daemon together: config in, running services out.
package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tradesense/internal/alert"
	"tradesense/internal/config"
	"tradesense/internal/gate"
	"tradesense/internal/gateway/backend"
	"tradesense/internal/logger"
	"tradesense/internal/market"
	"tradesense/internal/poller"
	"tradesense/internal/portfolio"
	"tradesense/internal/session"
	"tradesense/internal/store/events"
	"tradesense/internal/transport/http/dashboard"
)

// App holds the assembled daemon.
type App struct {
	cfg     *config.Config
	journal *events.Store
	poller  *poller.Poller
	server  *dashboard.Server
	session *session.Controller
	watcher *config.WatchlistWatcher
}

// New builds the daemon from configuration. configPath enables watchlist hot
// reload and may be empty.
func New(cfg *config.Config, configPath string) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	client, err := backend.NewClient(cfg.Backend)
	if err != nil {
		return nil, err
	}

	journal, err := events.Open(cfg.App.EventDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening event journal failed: %w", err)
	}

	quotes := market.NewStore()
	series := market.NewSeries()
	book := portfolio.NewBook()
	valuer := portfolio.NewValuer(cfg.Trading.Spread, cfg.Trading.Leverage)
	tradingGate := gate.New(cfg.Watchlist.ContinuousClasses)

	notifier := alert.NewDesktopNotifier(cfg.Alerts.Desktop, cfg.Alerts.Sound)
	supervisor := alert.NewSupervisor(client, notifier, journal)
	quotes.OnUpdate(supervisor.HandleQuote)

	ctrl := session.NewController(client, book, quotes, valuer, tradingGate, supervisor, journal)
	poll := poller.New(cfg.Polling, client, quotes, book, series, cfg.Watchlist.Symbols)

	a := &App{
		cfg:     cfg,
		journal: journal,
		poller:  poll,
		session: ctrl,
	}

	if configPath != "" {
		watcher, err := config.NewWatchlistWatcher(configPath, cfg.Watchlist)
		if err != nil {
			logger.Warnf("watchlist hot reload disabled: %v", err)
		} else {
			watcher.Subscribe(func(w config.WatchlistConfig) {
				logger.Infof("watchlist reloaded: %d symbols", len(w.Symbols))
				poll.SetWatchlist(w.Symbols)
				tradingGate.SetContinuousClasses(w.ContinuousClasses)
			})
			a.watcher = watcher
		}
	}

	watchlist := func() []string {
		if a.watcher != nil {
			return a.watcher.Snapshot().Symbols
		}
		return append([]string(nil), cfg.Watchlist.Symbols...)
	}
	router := dashboard.NewRouter(ctrl, poll, quotes, series, watchlist)
	server, err := dashboard.NewServer(cfg.App.HTTPAddr, router)
	if err != nil {
		return nil, err
	}
	a.server = server
	return a, nil
}

// Run starts the polling loops and the HTTP server and blocks until ctx is
// cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.journal.Close()

	// Bad credentials are fatal up front; any other backend hiccup is
	// retried by the polling loops.
	if err := a.session.Refresh(ctx); err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return err
		}
		logger.Warnf("initial portfolio sync failed, continuing: %v", err)
	}
	if err := a.session.SyncAlerts(ctx); err != nil {
		logger.Warnf("initial alert sync failed, continuing: %v", err)
	}

	a.poller.Select(ctx, a.cfg.Watchlist.DefaultSymbol, a.cfg.Watchlist.DefaultTimeframe)
	a.poller.Start(ctx)
	defer a.poller.Stop()

	logger.Infof("tradesense listening on %s, watching %d symbols",
		a.server.Addr(), len(a.cfg.Watchlist.Symbols))

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("dashboard server error: %w", err)
		}
		return nil
	})
	// a 401 mid-session halts the loops; tear the daemon down with it
	group.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case err := <-a.poller.Fatal():
			return err
		}
	})
	return group.Wait()
}

// Session exposes the controller, mainly for harnesses.
func (a *App) Session() *session.Controller {
	if a == nil {
		return nil
	}
	return a.session
}
