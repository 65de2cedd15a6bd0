// Package kucoin implements the KuCoin driver: the v2 prehash
// HMAC-SHA256-base64 signer with a double-signed passphrase (spec.md §4.2),
// the {code, data, msg} envelope, hyphenated market ids, bootstrap-token WS
// sessions, and the candle column reshape/reversal of spec.md §8 scenario 3.
package kucoin

import (
	"xchange/exchange"
	"xchange/pkg/unified"
)

const (
	restBaseURL = "https://api.kucoin.com"
)

// Driver is the KuCoin venue driver.
type Driver struct {
	*exchange.Driver
}

func New(creds exchange.Credentials) *Driver {
	base := exchange.NewDriver("kucoin", restBaseURL, creds, 15, 30)
	base.Capabilities = exchange.CapLoadMarkets | exchange.CapFetchTicker | exchange.CapFetchTickers |
		exchange.CapFetchOrderBook | exchange.CapFetchTrades | exchange.CapFetchOHLCV |
		exchange.CapCreateOrder | exchange.CapCancelOrder | exchange.CapCancelAllOrders |
		exchange.CapFetchOrder | exchange.CapFetchOpenOrders | exchange.CapFetchClosedOrders |
		exchange.CapFetchMyTrades | exchange.CapFetchBalance | exchange.CapFetchTradingFees |
		exchange.CapWatchTicker | exchange.CapWatchOrderBook | exchange.CapWatchTrades
	base.DefaultFees = unified.TradingFee{Maker: 0.001, Taker: 0.001}
	base.Mode = exchange.ContentModeJSON

	d := &Driver{Driver: base}
	base.Sign = d.sign
	base.Unwrap = unwrap
	base.MapHTTPError = mapHTTPError
	return d
}
