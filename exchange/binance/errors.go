package binance

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"xchange/internal/coerce"
	"xchange/internal/ratelimit"
	"xchange/pkg/unified"
)

// errorCodes covers the handful of well-documented Binance codes this
// driver has concrete evidence for. spec.md §4.6 does not enumerate a
// Binance envelope row (only Bitstamp/Pionex/LBank/Bittrex/Kraken/KuCoin/
// Bitrue/Coinbase are listed); Binance's {code,msg} body is handled as a
// plain negative-code envelope, the same shape as the Bitrue row, since
// both venues share one signing family.
var errorCodes = map[string]unified.Kind{
	"-1013": unified.InvalidOrder,
	"-1021": unified.AuthenticationError,
	"-1022": unified.AuthenticationError,
	"-1100": unified.BadRequest,
	"-1121": unified.BadSymbol,
	"-2010": unified.InsufficientFunds,
	"-2011": unified.OrderNotFound,
	"-2013": unified.OrderNotFound,
}

func unwrap(body []byte) ([]byte, error) {
	var m coerce.M
	if err := json.Unmarshal(body, &m); err != nil {
		return body, nil
	}
	code := coerce.Int(m, "code", 0)
	if code == 0 {
		return body, nil
	}
	kind, ok := errorCodes[strconv.FormatInt(code, 10)]
	if !ok {
		kind = unified.ExchangeError
	}
	return nil, unified.NewVenueError(kind, "binance", strconv.FormatInt(code, 10), coerce.Str(m, "msg", ""))
}

func mapHTTPError(status int, body []byte) error {
	var m coerce.M
	_ = json.Unmarshal(body, &m)
	code := coerce.Int(m, "code", 0)
	kind, ok := errorCodes[strconv.FormatInt(code, 10)]
	if !ok {
		kind = unified.KindFromHTTPStatus(status)
	}
	return unified.NewHTTPError(kind, "binance", status, string(body))
}

// onHeaders reconciles the client-side bucket against Binance's
// X-MBX-USED-WEIGHT-1M header, per spec.md §4.3's updateFromHeader path.
func (d *Driver) onHeaders(headers http.Header) {
	if used, ok := ratelimit.ParseIntHeader(headers.Get("X-MBX-USED-WEIGHT-1M")); ok {
		d.ReconcileRateLimit(used, 1200)
	}
	if retry, ok := ratelimit.ParseIntHeader(headers.Get("Retry-After")); ok && retry > 0 {
		d.RetryAfter(time.Duration(retry) * time.Second)
	}
}
