package lbank

import (
	"encoding/json"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

// errorCodes implements spec.md §4.6's LBank row: {result, data, error_code}.
var errorCodes = map[string]unified.Kind{
	"10002": unified.AuthenticationError,
	"10003": unified.AuthenticationError,
	"10007": unified.AuthenticationError,
	"10013": unified.RateLimitExceeded,
	"10014": unified.InsufficientFunds,
	"10015": unified.InvalidOrder,
	"10016": unified.InsufficientFunds,
	"10022": unified.OrderNotFound,
	"10025": unified.BadSymbol,
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
	if !coerce.Bool(m, "result", true) {
		code := coerce.Str(m, "error_code", "")
		return nil, unified.NewVenueError(classifyCode(code), "lbank", code, code)
	}
	if data, ok := m["data"]; ok {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		return raw, nil
	}
	return body, nil
}

func mapHTTPError(status int, body []byte) error {
	var m coerce.M
	_ = json.Unmarshal(body, &m)
	if code := coerce.Str(m, "error_code", ""); code != "" {
		return unified.NewVenueError(classifyCode(code), "lbank", code, code)
	}
	return unified.NewHTTPError(unified.KindFromHTTPStatus(status), "lbank", status, string(body))
}
