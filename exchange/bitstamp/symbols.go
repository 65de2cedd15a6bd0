package bitstamp

import (
	"strings"

	"xchange/exchange/symbols"
)

// toVenueId converts a unified BASE/QUOTE symbol into Bitstamp's
// concatenated lowercase pair id ("btcusd").
func toVenueId(symbol string) string {
	base, quote, ok := symbols.FromUnified(symbol)
	if !ok {
		return strings.ToLower(strings.ReplaceAll(symbol, "/", ""))
	}
	return strings.ToLower(base + quote)
}

// fromVenueId converts a Bitstamp pair id back to a unified symbol,
// consulting the driver's marketsById cache first and falling back to
// symbols.SplitConcatenated's known-quote suffix split.
func (d *Driver) fromVenueId(id string) string {
	if mkt, ok := d.MarketById(strings.ToLower(id)); ok {
		return mkt.Symbol
	}
	if base, quote, ok := symbols.SplitConcatenated(id); ok {
		return symbols.ToUnified(base, quote)
	}
	return strings.ToUpper(id)
}
