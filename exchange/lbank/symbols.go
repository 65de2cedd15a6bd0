package lbank

import "strings"

// toVenueId renders a unified "BASE/QUOTE" symbol as LBank's native
// underscore-joined, lowercase market symbol, e.g. "BTC/USDT" -> "btc_usdt".
func toVenueId(symbol string) string {
	return strings.ToLower(strings.ReplaceAll(symbol, "/", "_"))
}

func (d *Driver) fromVenueId(id string) string {
	if mkt, ok := d.MarketById(id); ok {
		return mkt.Symbol
	}
	return strings.ToUpper(strings.ReplaceAll(id, "_", "/"))
}
