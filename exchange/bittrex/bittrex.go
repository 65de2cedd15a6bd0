// Package bittrex implements the Bittrex v3 driver: the
// preSign/contentHash HMAC-SHA512 signer of spec.md §4.2, the top-level
// `code` error envelope, and the SignalR-hub-over-raw-WebSocket dialect of
// spec.md §4.9.
package bittrex

import (
	"xchange/exchange"
	"xchange/pkg/unified"
)

const (
	restBaseURL = "https://api.bittrex.com/v3"
	wsURL       = "wss://socket-v3.bittrex.com/signalr/connect"
)

// Driver is the Bittrex venue driver.
type Driver struct {
	*exchange.Driver
}

func New(creds exchange.Credentials) *Driver {
	base := exchange.NewDriver("bittrex", restBaseURL, creds, 60, 60)
	base.Capabilities = exchange.CapLoadMarkets | exchange.CapFetchTicker | exchange.CapFetchTickers |
		exchange.CapFetchOrderBook | exchange.CapFetchTrades | exchange.CapFetchOHLCV |
		exchange.CapCreateOrder | exchange.CapCancelOrder | exchange.CapCancelAllOrders |
		exchange.CapFetchOrder | exchange.CapFetchOpenOrders | exchange.CapFetchClosedOrders |
		exchange.CapFetchMyTrades | exchange.CapFetchBalance | exchange.CapFetchTradingFees |
		exchange.CapWatchTicker | exchange.CapWatchOrderBook | exchange.CapWatchTrades | exchange.CapWatchOrders
	base.DefaultFees = unified.TradingFee{Maker: 0.0075, Taker: 0.0075}
	base.Mode = exchange.ContentModeJSON

	d := &Driver{Driver: base}
	base.Sign = d.sign
	base.Unwrap = unwrap
	base.MapHTTPError = mapHTTPError
	return d
}
