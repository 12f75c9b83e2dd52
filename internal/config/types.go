package config

import "time"

// Config is the top-level configuration for the tradesense daemon.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Polling   PollingConfig   `mapstructure:"polling"`
	Trading   TradingConfig   `mapstructure:"trading"`
	Watchlist WatchlistConfig `mapstructure:"watchlist"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
}

type AppConfig struct {
	LogLevel    string `mapstructure:"log_level"`
	LogPath     string `mapstructure:"log_path"`
	HTTPAddr    string `mapstructure:"http_addr"`
	EventDBPath string `mapstructure:"event_db_path"`
}

// BackendConfig points at the prop-firm backend that owns the authoritative
// ledger. The daemon only mirrors its state.
type BackendConfig struct {
	APIURL         string `mapstructure:"api_url"`
	APIToken       string `mapstructure:"api_token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type PollingConfig struct {
	FastIntervalMS int `mapstructure:"fast_interval_ms"`
	SlowIntervalMS int `mapstructure:"slow_interval_ms"`
	BatchSize      int `mapstructure:"batch_size"`
}

func (p PollingConfig) FastInterval() time.Duration {
	return time.Duration(p.FastIntervalMS) * time.Millisecond
}

func (p PollingConfig) SlowInterval() time.Duration {
	return time.Duration(p.SlowIntervalMS) * time.Millisecond
}

// TradingConfig carries display-side valuation constants. The backend's
// authoritative P/L may use its own values; keeping these configurable lets an
// operator keep the shadow valuation in sync.
type TradingConfig struct {
	Spread   float64 `mapstructure:"spread"`
	Leverage float64 `mapstructure:"leverage"`
}

type WatchlistConfig struct {
	Symbols           []string `mapstructure:"symbols"`
	DefaultSymbol     string   `mapstructure:"default_symbol"`
	DefaultTimeframe  string   `mapstructure:"default_timeframe"`
	ContinuousClasses []string `mapstructure:"continuous_classes"`
}

type AlertsConfig struct {
	Desktop bool `mapstructure:"desktop"`
	Sound   bool `mapstructure:"sound"`
}
