// Package pionex implements the Pionex driver: the GET/POST/DELETE
// signing-string split of spec.md §4.2 (HMAC-SHA256 hex over a
// method-dependent string), the DELETE-with-JSON-body request override of
// spec.md §4.5, the {result, data, code, message} envelope, the
// underscore-native symbol with its preserved uppercase-fallback defect of
// spec.md §9, and the SUBSCRIBE/PONG-echo WebSocket dialect.
package pionex

import (
	"bytes"
	"net/http"

	"xchange/exchange"
	"xchange/pkg/unified"
)

const (
	restBaseURL = "https://api.pionex.com"
	wsURL       = "wss://ws.pionex.com/wsPub"
)

// Driver is the Pionex venue driver.
type Driver struct {
	*exchange.Driver
}

func New(creds exchange.Credentials) *Driver {
	base := exchange.NewDriver("pionex", restBaseURL, creds, 8, 15)
	base.Capabilities = exchange.CapLoadMarkets | exchange.CapFetchTicker | exchange.CapFetchTickers |
		exchange.CapFetchOrderBook | exchange.CapFetchTrades | exchange.CapFetchOHLCV |
		exchange.CapCreateOrder | exchange.CapCancelOrder | exchange.CapCancelAllOrders |
		exchange.CapFetchOrder | exchange.CapFetchOpenOrders | exchange.CapFetchClosedOrders |
		exchange.CapFetchMyTrades | exchange.CapFetchBalance | exchange.CapFetchTradingFees |
		exchange.CapWatchTicker | exchange.CapWatchOrderBook | exchange.CapWatchTrades
	base.DefaultFees = unified.TradingFee{Maker: 0.0009, Taker: 0.0009}
	base.Mode = exchange.ContentModeJSON

	d := &Driver{Driver: base}
	base.Sign = d.sign
	base.Unwrap = unwrap
	base.MapHTTPError = mapHTTPError
	base.OverrideRequest = d.overrideRequest
	return d
}

// overrideRequest carries the JSON body the signer already produced through
// a DELETE request, which the generic orchestrator otherwise treats as
// query-style with no body — spec.md §4.5's named Pionex exception.
func (d *Driver) overrideRequest(rc exchange.RequestContext) (*http.Request, error) {
	if rc.Method != http.MethodDelete || len(rc.Signed.Body) == 0 {
		return nil, nil
	}
	req, err := http.NewRequest(rc.Method, rc.BaseURL+rc.Path, bytes.NewReader(rc.Signed.Body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
