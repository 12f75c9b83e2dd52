package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		sym  string
		want Class
	}{
		{"AAPL", ClassStock},
		{"TSLA", ClassStock},
		{"GC=F", ClassCommodity},
		{"EURUSD=X", ClassForex},
		{"BTC-USD", ClassCrypto},
		{"eth-usd", ClassCrypto},
		{"IAM.CS", ClassCasablanca},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.sym), tc.sym)
	}
}

func TestContinuous(t *testing.T) {
	continuous := []string{"crypto"}
	assert.True(t, Continuous("BTC-USD", continuous))
	assert.False(t, Continuous("AAPL", continuous))
	assert.False(t, Continuous("EURUSD=X", continuous))
	assert.True(t, Continuous("EURUSD=X", []string{"crypto", "forex"}))
	assert.False(t, Continuous("BTC-USD", nil))
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"aapl", "AAPL", " btc-usd ", "", "TSLA"})
	assert.Equal(t, []string{"AAPL", "BTC-USD", "TSLA"}, got)
}
