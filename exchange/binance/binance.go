// Package binance implements the Binance spot driver: a sorted-raw-query
// HMAC-SHA256 signer shared with Bitrue (exchange/binancesign), a plain
// {code,msg} error envelope, concatenated-uppercase market ids, and
// single-raw-stream WebSocket feeds. Grounded on spec.md §4.4's
// "Binance/Bitrue family" row and on the teacher's original
// market/websocket_client.go, which dialed one hardcoded Binance stream URL
// before internal/wsconn generalized it.
package binance

import (
	"xchange/exchange"
	"xchange/exchange/binancesign"
	"xchange/pkg/unified"
)

const (
	restBaseURL = "https://api.binance.com"
	wsBaseURL   = "wss://stream.binance.com:9443/ws"
)

// Driver is the Binance venue driver.
type Driver struct {
	*exchange.Driver
}

// New builds a Binance driver. Binance's published weight budget is 1200
// weight/minute; that becomes ratePerSecond=20, burst=1200 per
// ratelimit.NewLimiter's doc comment.
func New(creds exchange.Credentials) *Driver {
	base := exchange.NewDriver("binance", restBaseURL, creds, 20, 1200)
	base.Capabilities = exchange.CapLoadMarkets | exchange.CapFetchTicker | exchange.CapFetchTickers |
		exchange.CapFetchOrderBook | exchange.CapFetchTrades | exchange.CapFetchOHLCV |
		exchange.CapCreateOrder | exchange.CapCancelOrder | exchange.CapCancelAllOrders |
		exchange.CapFetchOrder | exchange.CapFetchOpenOrders | exchange.CapFetchClosedOrders |
		exchange.CapFetchMyTrades | exchange.CapFetchBalance | exchange.CapFetchTradingFees |
		exchange.CapWatchTicker | exchange.CapWatchOrderBook | exchange.CapWatchTrades
	base.DefaultFees = unified.TradingFee{Maker: 0.001, Taker: 0.001}
	base.Mode = exchange.ContentModeJSON

	d := &Driver{Driver: base}
	base.Sign = binancesign.Sign(creds.APIKey, creds.Secret, creds.RecvWindow)
	base.Unwrap = unwrap
	base.MapHTTPError = mapHTTPError
	base.OnHeaders = d.onHeaders
	return d
}
