package bittrex

import (
	"encoding/json"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

// errorCodes implements spec.md §4.6's Bittrex row, mapped from Bittrex's
// published top-level error-code vocabulary.
var errorCodes = map[string]unified.Kind{
	"INVALID_SIGNATURE":     unified.AuthenticationError,
	"APIKEY_INVALID":        unified.AuthenticationError,
	"INVALID_TIMESTAMP":     unified.AuthenticationError,
	"MARKET_DOES_NOT_EXIST": unified.BadSymbol,
	"INSUFFICIENT_FUNDS":    unified.InsufficientFunds,
	"INVALID_ORDER":         unified.InvalidOrder,
	"ORDER_NOT_OPEN":        unified.OrderNotFound,
	"DUST_TRADE_DISALLOWED": unified.InvalidOrder,
	"THROTTLED":             unified.RateLimitExceeded,
}


func classifyCode(code string) unified.Kind {
	if kind, ok := errorCodes[code]; ok {
		return kind
	}
	return unified.ExchangeError
}

func unwrap(body []byte) ([]byte, error) {
	var m coerce.M
	if err := json.Unmarshal(body, &m); err != nil {
		return body, nil
	}
	if code := coerce.Str(m, "code", ""); code != "" {
		return nil, unified.NewVenueError(classifyCode(code), "bittrex", code, code)
	}
	return body, nil
}

func mapHTTPError(status int, body []byte) error {
	var m coerce.M
	_ = json.Unmarshal(body, &m)
	if code := coerce.Str(m, "code", ""); code != "" {
		return unified.NewVenueError(classifyCode(code), "bittrex", code, code)
	}
	return unified.NewHTTPError(unified.KindFromHTTPStatus(status), "bittrex", status, string(body))
}
