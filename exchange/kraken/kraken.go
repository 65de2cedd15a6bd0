// Package kraken implements the Kraken driver: the two-step
// SHA256-then-HMAC-SHA512 signature of spec.md §4.2/§4.4, the
// {error:[],result} envelope with substring error dispatch, prefix-suffixed
// market ids with currency-cleaning rules, and the Kraken v2 WebSocket
// dialect with a GetWebSocketsToken-bootstrapped private feed. Grounded on
// spec.md §8 scenario 1 (loadMarkets wsname/altname fixture).
package kraken

import (
	"xchange/exchange"
	"xchange/pkg/unified"
)

const (
	restBaseURL  = "https://api.kraken.com"
	wsPublicURL  = "wss://ws.kraken.com/v2"
	wsPrivateURL = "wss://ws-auth.kraken.com/v2"
)

// Driver is the Kraken venue driver.
type Driver struct {
	*exchange.Driver
}

func New(creds exchange.Credentials) *Driver {
	base := exchange.NewDriver("kraken", restBaseURL, creds, 1, 15)
	base.Capabilities = exchange.CapLoadMarkets | exchange.CapFetchTicker | exchange.CapFetchTickers |
		exchange.CapFetchOrderBook | exchange.CapFetchTrades | exchange.CapFetchOHLCV |
		exchange.CapCreateOrder | exchange.CapCancelOrder | exchange.CapCancelAllOrders |
		exchange.CapFetchOrder | exchange.CapFetchOpenOrders | exchange.CapFetchClosedOrders |
		exchange.CapFetchMyTrades | exchange.CapFetchBalance | exchange.CapFetchTradingFees |
		exchange.CapWatchTicker | exchange.CapWatchOrderBook | exchange.CapWatchTrades | exchange.CapWatchOrders
	base.DefaultFees = unified.TradingFee{Maker: 0.0016, Taker: 0.0026}
	base.Mode = exchange.ContentModeForm

	d := &Driver{Driver: base}
	base.Sign = d.sign
	base.Unwrap = unwrap
	base.MapHTTPError = mapHTTPError
	return d
}
