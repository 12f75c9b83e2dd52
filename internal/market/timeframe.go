package market

// Timeframe maps a chart timeframe to the period/interval pair the historical
// endpoint expects.
type Timeframe struct {
	Label    string
	Period   string
	Interval string
}

// Timeframes supported by the chart. 4h falls back to 1h bars over a month
// because the upstream data provider has no native 4h interval.
var Timeframes = map[string]Timeframe{
	"1m":  {Label: "1M", Period: "1d", Interval: "1m"},
	"5m":  {Label: "5M", Period: "5d", Interval: "5m"},
	"15m": {Label: "15M", Period: "5d", Interval: "15m"},
	"1h":  {Label: "1H", Period: "1mo", Interval: "1h"},
	"4h":  {Label: "4H", Period: "1mo", Interval: "1h"},
	"1d":  {Label: "1D", Period: "1y", Interval: "1d"},
}

// LookupTimeframe resolves tf, falling back to 1h for unknown values.
func LookupTimeframe(tf string) Timeframe {
	if t, ok := Timeframes[tf]; ok {
		return t
	}
	return Timeframes["1h"]
}
