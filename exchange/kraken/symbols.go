package kraken

import "strings"

// currencyAliases implements spec.md §4.7's Kraken currency-cleaning rules
// and the Open Question decision in DESIGN.md: XBT/XXBT -> BTC, strip a
// leading X/Z from 4-letter codes, scoped to the handful of codes Kraken's
// AssetPairs response actually uses.
var currencyAliases = map[string]string{
	"XBT": "BTC", "XXBT": "BTC",
	"XDG": "DOGE", "XXDG": "DOGE",
}

func cleanCurrency(code string) string {
	if alias, ok := currencyAliases[code]; ok {
		return alias
	}
	if len(code) == 4 && (code[0] == 'X' || code[0] == 'Z') {
		return code[1:]
	}
	return code
}

// splitWsname splits a Kraken "XBT/USD"-style wsname into cleaned base/quote.
func splitWsname(wsname string) (base, quote string, ok bool) {
	parts := strings.SplitN(wsname, "/", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return cleanCurrency(parts[0]), cleanCurrency(parts[1]), true
}

// splitAltname applies the length-partitioned fallback (3+3, 3+4, 4+4) used
// when a pair has no wsname, only an altname (spec.md §8 scenario 1: the
// ADAUSD case).
func splitAltname(altname string) (base, quote string, ok bool) {
	upper := strings.ToUpper(altname)
	for _, quoteLen := range []int{4, 3} {
		if len(upper) <= quoteLen {
			continue
		}
		baseLen := len(upper) - quoteLen
		if baseLen == 3 || baseLen == 4 {
			return upper[:baseLen], upper[baseLen:], true
		}
	}
	return "", "", false
}

func (d *Driver) fromVenueId(id string) string {
	if mkt, ok := d.MarketById(id); ok {
		return mkt.Symbol
	}
	return id
}

// toVenueId consults the loaded markets cache for the pair's native id,
// falling back to a bare base+quote concatenation (imperfect for codes
// needing the X/Z prefix, but only reached before loadMarkets has run).
func (d *Driver) toVenueId(symbol string) string {
	if mkt, ok := d.Market(symbol); ok {
		return mkt.Id
	}
	parts := strings.SplitN(symbol, "/", 2)
	if len(parts) != 2 {
		return strings.ReplaceAll(symbol, "/", "")
	}
	return parts[0] + parts[1]
}
