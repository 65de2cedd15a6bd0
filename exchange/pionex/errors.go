package pionex

import (
	"encoding/json"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

// errorCodes implements spec.md §4.6's Pionex row: {result, data, code,
// message}, result === false maps code, otherwise the payload is data.
var errorCodes = map[string]unified.Kind{
	"10001": unified.AuthenticationError,
	"10002": unified.AuthenticationError,
	"10004": unified.RateLimitExceeded,
	"20001": unified.BadSymbol,
	"20002": unified.InvalidOrder,
	"20003": unified.InsufficientFunds,
	"20004": unified.OrderNotFound,
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
		code := coerce.Str(m, "code", "")
		return nil, unified.NewVenueError(classifyCode(code), "pionex", code, coerce.Str(m, "message", ""))
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
	if code := coerce.Str(m, "code", ""); code != "" {
		return unified.NewVenueError(classifyCode(code), "pionex", code, coerce.Str(m, "message", ""))
	}
	return unified.NewHTTPError(unified.KindFromHTTPStatus(status), "pionex", status, string(body))
}
