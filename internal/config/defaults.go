package config

const (
	defaultAppLogLevel  = "info"
	defaultAppHTTPAddr  = ":9991"
	defaultEventDBPath  = "data/events.db"
	defaultTimeout      = 15
	defaultFastInterval = 500
	defaultSlowInterval = 10000
	defaultBatchSize    = 3
	defaultSpread       = 0.0004
	defaultLeverage     = 100
	defaultTimeframe    = "1h"
)

var defaultSymbols = []string{
	"AAPL", "TSLA",
	"GC=F", "SI=F",
	"EURUSD=X", "GBPUSD=X", "USDJPY=X", "USDCHF=X", "AUDUSD=X",
	"BTC-USD", "ETH-USD",
	"IAM.CS", "ATW.CS", "BCP.CS", "CIH.CS", "LHM.CS",
}

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = defaultAppLogLevel
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = defaultAppHTTPAddr
	}
	if c.App.EventDBPath == "" {
		c.App.EventDBPath = defaultEventDBPath
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = defaultTimeout
	}
	if c.Polling.FastIntervalMS <= 0 {
		c.Polling.FastIntervalMS = defaultFastInterval
	}
	if c.Polling.SlowIntervalMS <= 0 {
		c.Polling.SlowIntervalMS = defaultSlowInterval
	}
	if c.Polling.BatchSize <= 0 {
		c.Polling.BatchSize = defaultBatchSize
	}
	if c.Trading.Spread <= 0 {
		c.Trading.Spread = defaultSpread
	}
	if c.Trading.Leverage <= 0 {
		c.Trading.Leverage = defaultLeverage
	}
	if len(c.Watchlist.Symbols) == 0 {
		c.Watchlist.Symbols = append([]string(nil), defaultSymbols...)
	}
	if c.Watchlist.DefaultSymbol == "" {
		c.Watchlist.DefaultSymbol = c.Watchlist.Symbols[0]
	}
	if c.Watchlist.DefaultTimeframe == "" {
		c.Watchlist.DefaultTimeframe = defaultTimeframe
	}
	if len(c.Watchlist.ContinuousClasses) == 0 {
		c.Watchlist.ContinuousClasses = []string{"crypto"}
	}
}
