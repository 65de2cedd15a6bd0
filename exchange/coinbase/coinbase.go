// Package coinbase implements the Coinbase Advanced Trade driver: the ES256
// JWT signer sent as a bearer token (spec.md §4.2), the {error, errors[0]}
// envelope, hyphenated product ids shared with the venue's own native
// format, order_configuration-wrapped order creation, and the preserved
// fetchTicker market-descriptor quirk of spec.md §9.
package coinbase

import (
	"crypto/ecdsa"
	"net/http"
	"strings"

	"xchange/exchange"
	"xchange/internal/xcrypto"
	"xchange/pkg/unified"
)

const restBaseURL = "https://api.coinbase.com"
const wsURL = "wss://advanced-trade-ws.coinbase.com"

// rawBodyParamKey is the sentinel doJSON uses to smuggle a pre-marshaled
// nested JSON body through the orchestrator's flat params contract; consumed
// by overrideRequest.
const rawBodyParamKey = "__rawBody"

// Driver is the Coinbase Advanced Trade venue driver.
type Driver struct {
	*exchange.Driver

	privateKey *ecdsa.PrivateKey
}

func New(creds exchange.Credentials) (*Driver, error) {
	key, err := xcrypto.ParseECPrivateKeyPEM(creds.Secret)
	if err != nil {
		return nil, err
	}

	base := exchange.NewDriver("coinbase", restBaseURL, creds, 10, 20)
	base.Capabilities = exchange.CapLoadMarkets | exchange.CapFetchTicker | exchange.CapFetchTickers |
		exchange.CapFetchOrderBook | exchange.CapFetchTrades | exchange.CapFetchOHLCV |
		exchange.CapCreateOrder | exchange.CapCancelOrder |
		exchange.CapFetchOrder | exchange.CapFetchOpenOrders | exchange.CapFetchClosedOrders |
		exchange.CapFetchMyTrades | exchange.CapFetchBalance | exchange.CapFetchTradingFees |
		exchange.CapWatchTicker | exchange.CapWatchOrderBook | exchange.CapWatchTrades | exchange.CapWatchOrders
	base.DefaultFees = unified.TradingFee{Maker: 0.004, Taker: 0.006}
	base.Mode = exchange.ContentModeJSON

	d := &Driver{Driver: base, privateKey: key}
	base.Sign = d.sign
	base.Unwrap = unwrap
	base.MapHTTPError = mapHTTPError
	base.OverrideRequest = d.overrideRequest
	return d, nil
}

// overrideRequest carries a nested JSON body (order_configuration, etc)
// through verbatim when doJSON has smuggled one in via rawBodyParamKey;
// every other call falls through to the orchestrator's default composition.
func (d *Driver) overrideRequest(rc exchange.RequestContext) (*http.Request, error) {
	raw, ok := rc.Params[rawBodyParamKey]
	if !ok {
		return nil, nil
	}
	req, err := http.NewRequest(rc.Method, rc.BaseURL+rc.Path, strings.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
