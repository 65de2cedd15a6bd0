package kucoin

import (
	"encoding/json"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

// errorCodes implements spec.md §4.6's KuCoin row, mapped from KuCoin's
// published REST error-code table.
var errorCodes = map[string]unified.Kind{
	"400001": unified.AuthenticationError,
	"400002": unified.AuthenticationError,
	"400003": unified.AuthenticationError,
	"400004": unified.AuthenticationError,
	"400005": unified.AuthenticationError,
	"400100": unified.BadRequest,
	"400200": unified.InsufficientFunds,
	"400370": unified.InvalidOrder,
	"400760": unified.OrderNotFound,
	"404000": unified.BadSymbol,
	"429000": unified.RateLimitExceeded,
}

func classifyCode(code string) unified.Kind {
	if kind, ok := errorCodes[code]; ok {
		return kind
	}
	return unified.ExchangeError
}

type envelope struct {
	Code string          `json:"code"`
	Data json.RawMessage `json:"data"`
	Msg  string          `json:"msg"`
}

func unwrap(body []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return body, nil
	}
	if env.Code != "" && env.Code != "200000" {
		return nil, unified.NewVenueError(classifyCode(env.Code), "kucoin", env.Code, env.Msg)
	}
	return env.Data, nil
}

func mapHTTPError(status int, body []byte) error {
	var m coerce.M
	_ = json.Unmarshal(body, &m)
	code := coerce.Str(m, "code", "")
	if code != "" {
		return unified.NewVenueError(classifyCode(code), "kucoin", code, coerce.Str(m, "msg", ""))
	}
	return unified.NewHTTPError(unified.KindFromHTTPStatus(status), "kucoin", status, string(body))
}
