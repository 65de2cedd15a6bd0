// Package lbank implements the LBank driver: the two-step
// MD5-then-HMAC-SHA256 signer with an echostr nonce (spec.md §4.2), the
// {result, data, error_code} envelope, underscore-lowercase native symbols,
// and the ping-echo WebSocket dialect.
package lbank

import (
	"xchange/exchange"
	"xchange/pkg/unified"
)

const (
	restBaseURL = "https://api.lbkex.com"
	wsURL       = "wss://www.lbkex.net/ws/V2/"
)

// Driver is the LBank venue driver.
type Driver struct {
	*exchange.Driver
}

func New(creds exchange.Credentials) *Driver {
	base := exchange.NewDriver("lbank", restBaseURL, creds, 10, 20)
	base.Capabilities = exchange.CapLoadMarkets | exchange.CapFetchTicker | exchange.CapFetchTickers |
		exchange.CapFetchOrderBook | exchange.CapFetchTrades | exchange.CapFetchOHLCV |
		exchange.CapCreateOrder | exchange.CapCancelOrder |
		exchange.CapFetchOrder | exchange.CapFetchOpenOrders | exchange.CapFetchClosedOrders |
		exchange.CapFetchMyTrades | exchange.CapFetchBalance | exchange.CapFetchTradingFees |
		exchange.CapWatchTicker | exchange.CapWatchOrderBook | exchange.CapWatchTrades
	base.DefaultFees = unified.TradingFee{Maker: 0.001, Taker: 0.001}
	base.Mode = exchange.ContentModeForm

	d := &Driver{Driver: base}
	base.Sign = d.sign
	base.Unwrap = unwrap
	base.MapHTTPError = mapHTTPError
	return d
}
