package bitrue

import (
	"strings"

	"xchange/exchange/symbols"
)

func toVenueId(symbol string) string {
	base, quote, ok := symbols.FromUnified(symbol)
	if !ok {
		return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
	}
	return strings.ToUpper(base + quote)
}

func (d *Driver) fromVenueId(id string) string {
	if mkt, ok := d.MarketById(strings.ToUpper(id)); ok {
		return mkt.Symbol
	}
	if base, quote, ok := symbols.SplitConcatenated(id); ok {
		return symbols.ToUnified(base, quote)
	}
	return strings.ToUpper(id)
}
