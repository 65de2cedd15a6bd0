// Package bitstamp implements the Bitstamp v2 REST/WS driver: HMAC-SHA256
// string-concatenation signing, a flat error-envelope with a top-level
// status field, concatenated lowercase market ids, and a plain bts:subscribe WebSocket
// dialect. Grounded on spec.md §4.4/§4.6/§4.9's Bitstamp rows and the
// concrete signer fixture of §8 scenario 2.
package bitstamp

import (
	"xchange/exchange"
	"xchange/pkg/unified"
)

const (
	restBaseURL = "https://www.bitstamp.net/api"
	wsURL       = "wss://ws.bitstamp.net"
)

// Driver is the Bitstamp venue driver.
type Driver struct {
	*exchange.Driver
}

// New builds a Bitstamp driver with the given credentials. Bitstamp has no
// documented weight scheme; a conservative flat 8 req/s, burst 15 matches
// its public rate-limit guidance.
func New(creds exchange.Credentials) *Driver {
	base := exchange.NewDriver("bitstamp", restBaseURL, creds, 8, 15)
	base.Capabilities = exchange.CapLoadMarkets | exchange.CapFetchTicker | exchange.CapFetchTickers |
		exchange.CapFetchOrderBook | exchange.CapFetchTrades | exchange.CapFetchOHLCV |
		exchange.CapCreateOrder | exchange.CapCancelOrder | exchange.CapCancelAllOrders |
		exchange.CapFetchOrder | exchange.CapFetchOpenOrders | exchange.CapFetchMyTrades |
		exchange.CapFetchBalance | exchange.CapWatchTicker | exchange.CapWatchTrades | exchange.CapWatchOrderBook
	base.DefaultFees = unified.TradingFee{Maker: 0.004, Taker: 0.004}
	base.Mode = exchange.ContentModeForm

	d := &Driver{Driver: base}
	base.Sign = d.sign
	base.Unwrap = unwrap
	base.MapHTTPError = mapHTTPError
	return d
}
