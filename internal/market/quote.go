package market

import (
	"time"

	"github.com/tidwall/gjson"
)

// Quote is the last-known state of one instrument as reported by the backend.
// Entries are replaced wholesale on every refresh; there is no field merge.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	ChangePercent float64   `json:"change_percent"`
	IsOpen        bool      `json:"is_open"`
	Message       string    `json:"message,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ParseQuote decodes one backend price payload. The upstream feed is scraped
// from several providers and numeric fields occasionally arrive as strings, so
// decoding goes through gjson instead of a rigid struct.
func ParseQuote(symbol string, raw []byte) (Quote, bool) {
	if !gjson.ValidBytes(raw) {
		return Quote{}, false
	}
	doc := gjson.ParseBytes(raw)
	price := doc.Get("price")
	if !price.Exists() {
		return Quote{}, false
	}
	return Quote{
		Symbol:        symbol,
		Price:         price.Float(),
		ChangePercent: doc.Get("change_percent").Float(),
		IsOpen:        doc.Get("is_open").Bool(),
		Message:       doc.Get("message").String(),
		UpdatedAt:     time.Now(),
	}, true
}

// ParseQuoteBatch decodes a symbol-keyed batch payload, skipping entries that
// carry an error instead of a price.
func ParseQuoteBatch(raw []byte) map[string]Quote {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	out := make(map[string]Quote)
	gjson.ParseBytes(raw).ForEach(func(key, value gjson.Result) bool {
		if !value.Get("price").Exists() {
			return true
		}
		q, ok := ParseQuote(key.String(), []byte(value.Raw))
		if ok {
			out[q.Symbol] = q
		}
		return true
	})
	if len(out) == 0 {
		return nil
	}
	return out
}
