package kucoin

import "strings"

// toVenueId renders a unified "BASE/QUOTE" symbol as KuCoin's hyphenated
// native id, e.g. "BTC/USDT" -> "BTC-USDT".
func toVenueId(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "-")
}

func (d *Driver) fromVenueId(id string) string {
	if mkt, ok := d.MarketById(id); ok {
		return mkt.Symbol
	}
	return strings.ReplaceAll(id, "-", "/")
}
