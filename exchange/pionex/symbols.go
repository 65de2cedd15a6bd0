package pionex

import "strings"

// toVenueId renders a unified "BASE/QUOTE" symbol as Pionex's native
// underscore-joined, uppercase market symbol, e.g. "BTC/USDT" -> "BTC_USDT".
func toVenueId(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", "_"))
}

// fromVenueId preserves the suspected source defect of spec.md §9: when the
// id isn't in the loaded markets cache, it falls back to uppercasing and
// splitting on the first underscore, which mis-splits multi-segment coin
// names (e.g. "SHIB_1000_USDT" round-trips to "SHIB/1000_USDT").
func (d *Driver) fromVenueId(id string) string {
	if mkt, ok := d.MarketById(id); ok {
		return mkt.Symbol
	}
	upper := strings.ToUpper(id)
	parts := strings.SplitN(upper, "_", 2)
	if len(parts) == 2 {
		return parts[0] + "/" + parts[1]
	}
	return upper
}
