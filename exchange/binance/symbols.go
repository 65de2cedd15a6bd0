package binance

import (
	"strings"

	"xchange/exchange/symbols"
)

// toVenueId converts a unified BASE/QUOTE symbol to Binance's concatenated
// uppercase pair id ("BTCUSDT").
func toVenueId(symbol string) string {
	base, quote, ok := symbols.FromUnified(symbol)
	if !ok {
		return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
	}
	return strings.ToUpper(base + quote)
}

// fromVenueId consults marketsById first, then falls back to
// symbols.SplitConcatenated's known-quote suffix split.
func (d *Driver) fromVenueId(id string) string {
	if mkt, ok := d.MarketById(strings.ToUpper(id)); ok {
		return mkt.Symbol
	}
	if base, quote, ok := symbols.SplitConcatenated(id); ok {
		return symbols.ToUnified(base, quote)
	}
	return strings.ToUpper(id)
}
