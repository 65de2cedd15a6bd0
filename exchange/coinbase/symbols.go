package coinbase

import "strings"

// toVenueId renders a unified "BASE/QUOTE" symbol as Coinbase's native
// hyphenated product id, e.g. "BTC/USD" -> "BTC-USD".
func toVenueId(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "-")
}

func (d *Driver) fromVenueId(id string) string {
	if mkt, ok := d.MarketById(id); ok {
		return mkt.Symbol
	}
	return strings.ReplaceAll(id, "-", "/")
}
