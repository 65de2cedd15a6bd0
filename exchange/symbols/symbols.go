// Package symbols implements the shared fallback rules of spec.md §4.7:
// inverse conversion consults a venue's marketsById first, and falls back
// to splitting off a known quote-currency suffix or to a simple separator
// replace when a venue id has no known market entry. There is no split by
// length alone.
package symbols

import "strings"

// KnownQuotes is tried longest-first when splitting a concatenated venue id
// with no separator (e.g. Bitstamp's "btcusd", Binance's "BTCUSDT").
var KnownQuotes = []string{"USDT", "USDC", "BUSD", "TUSD", "USD", "EUR", "GBP", "BTC", "ETH"}

// SplitConcatenated tries each known quote currency as a suffix, longest
// first, and returns base/quote on the first match. ok is false if nothing
// matches: an id whose quote is not in KnownQuotes is not split, and there
// is no 3+3/3+4/4+4 split by length alone.
func SplitConcatenated(id string) (base, quote string, ok bool) {
	upper := strings.ToUpper(id)
	for _, q := range KnownQuotes {
		if len(upper) > len(q) && strings.HasSuffix(upper, q) {
			return upper[:len(upper)-len(q)], q, true
		}
	}
	return "", "", false
}

// SplitSeparator handles hyphenated/underscored venue ids ("BTC-USDT",
// "btc_usdt"): the simple separator-replace fallback of spec.md §4.7.
func SplitSeparator(id string, sep string) (base, quote string, ok bool) {
	parts := strings.Split(id, sep)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.ToUpper(parts[0]), strings.ToUpper(parts[1]), true
}

// ToUnified joins base/quote into the library's canonical BASE/QUOTE form.
func ToUnified(base, quote string) string {
	return strings.ToUpper(base) + "/" + strings.ToUpper(quote)
}

// FromUnified splits a unified BASE/QUOTE symbol back into its parts.
func FromUnified(symbol string) (base, quote string, ok bool) {
	parts := strings.SplitN(symbol, "/", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
