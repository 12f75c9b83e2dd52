package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"tradesense/internal/logger"
)

// WatchlistListener is called with the new watchlist after a hot reload.
type WatchlistListener func(WatchlistConfig)

// WatchlistWatcher re-reads the watchlist section of the config file when it
// changes on disk, so symbols can be added without restarting the daemon.
type WatchlistWatcher struct {
	v *viper.Viper

	mu        sync.RWMutex
	current   WatchlistConfig
	listeners []WatchlistListener
}

// NewWatchlistWatcher starts watching the config file at path.
func NewWatchlistWatcher(path string, initial WatchlistConfig) (*WatchlistWatcher, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("watchlist watcher requires a config path")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config for watch failed: %w", err)
	}
	w := &WatchlistWatcher{v: v, current: initial}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := w.reload(); err != nil {
			logger.Errorf("watchlist reload failed (%s): %v", evt.Name, err)
			return
		}
		w.notify()
	})
	v.WatchConfig()
	return w, nil
}

// Snapshot returns the current watchlist.
func (w *WatchlistWatcher) Snapshot() WatchlistConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return cloneWatchlist(w.current)
}

// Subscribe registers a listener for future reloads.
func (w *WatchlistWatcher) Subscribe(fn WatchlistListener) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

func (w *WatchlistWatcher) reload() error {
	if err := w.v.ReadInConfig(); err != nil {
		return err
	}
	var cfg Config
	if err := w.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return err
	}
	cfg.applyDefaults()
	w.mu.Lock()
	w.current = cfg.Watchlist
	w.mu.Unlock()
	return nil
}

func (w *WatchlistWatcher) notify() {
	w.mu.RLock()
	listeners := append([]WatchlistListener(nil), w.listeners...)
	snap := cloneWatchlist(w.current)
	w.mu.RUnlock()
	for _, fn := range listeners {
		fn(snap)
	}
}

func cloneWatchlist(in WatchlistConfig) WatchlistConfig {
	out := in
	out.Symbols = append([]string(nil), in.Symbols...)
	out.ContinuousClasses = append([]string(nil), in.ContinuousClasses...)
	return out
}
