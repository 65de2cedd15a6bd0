// Package bitrue implements the Bitrue spot driver: the same sorted-raw-
// query HMAC-SHA256 signer as Binance (exchange/binancesign), a plain
// {code,msg} negative-code envelope, concatenated-uppercase market ids, and
// a gzip/zlib-sync-flush WebSocket dialect with JSON ping/pong. Grounded on
// spec.md §4.4's "Binance/Bitrue family" row, §4.6's Bitrue envelope row,
// and §4.9's Bitrue dialect row (including §8 scenario 5's orderbook
// fixture and §9's preserved isBuyerMaker->sell quirk).
package bitrue

import (
	"xchange/exchange"
	"xchange/exchange/binancesign"
	"xchange/pkg/unified"
)

const (
	restBaseURL = "https://open.api.bitrue.com"
	wsBaseURL   = "wss://ws.bitrue.com/market/ws"
)

// Driver is the Bitrue venue driver.
type Driver struct {
	*exchange.Driver
}

func New(creds exchange.Credentials) *Driver {
	base := exchange.NewDriver("bitrue", restBaseURL, creds, 10, 100)
	base.Capabilities = exchange.CapLoadMarkets | exchange.CapFetchTicker | exchange.CapFetchTickers |
		exchange.CapFetchOrderBook | exchange.CapFetchTrades | exchange.CapFetchOHLCV |
		exchange.CapCreateOrder | exchange.CapCancelOrder | exchange.CapFetchOrder |
		exchange.CapFetchOpenOrders | exchange.CapFetchMyTrades | exchange.CapFetchBalance |
		exchange.CapWatchTicker | exchange.CapWatchOrderBook | exchange.CapWatchTrades
	base.DefaultFees = unified.TradingFee{Maker: 0.001, Taker: 0.001}
	base.Mode = exchange.ContentModeForm

	d := &Driver{Driver: base}
	base.Sign = binancesign.Sign(creds.APIKey, creds.Secret, creds.RecvWindow)
	base.Unwrap = unwrap
	base.MapHTTPError = mapHTTPError
	return d
}
