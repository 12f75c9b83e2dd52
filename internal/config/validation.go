package config

import (
	"fmt"
	"net/url"
	"strings"
)

func validate(c *Config) error {
	if strings.TrimSpace(c.Backend.APIURL) == "" {
		return fmt.Errorf("backend.api_url cannot be empty")
	}
	if _, err := url.Parse(c.Backend.APIURL); err != nil {
		return fmt.Errorf("backend.api_url is invalid: %w", err)
	}
	if c.Polling.FastIntervalMS > c.Polling.SlowIntervalMS {
		return fmt.Errorf("polling.fast_interval_ms must not exceed polling.slow_interval_ms")
	}
	if c.Trading.Spread >= 1 {
		return fmt.Errorf("trading.spread must be a fraction of price, got %v", c.Trading.Spread)
	}
	found := false
	for _, sym := range c.Watchlist.Symbols {
		if strings.TrimSpace(sym) == "" {
			return fmt.Errorf("watchlist.symbols contains an empty entry")
		}
		if sym == c.Watchlist.DefaultSymbol {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("watchlist.default_symbol %q is not in watchlist.symbols", c.Watchlist.DefaultSymbol)
	}
	return nil
}
