package bitstamp

import (
	"encoding/json"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

// errorCodes maps the small set of Bitstamp v2 codes this driver has
// concrete evidence for; everything else falls through to ExchangeError.
var errorCodes = map[string]unified.Kind{
	"API0001": unified.AuthenticationError,
	"API0002": unified.AuthenticationError,
	"API0003": unified.AuthenticationError,
	"API0005": unified.InvalidOrder,
	"API0006": unified.OrderNotFound,
	"API0017": unified.InsufficientFunds,
}

// unwrap implements spec.md §4.6: "object with status === 'error' -> map code".
func unwrap(body []byte) ([]byte, error) {
	var m coerce.M
	if err := json.Unmarshal(body, &m); err != nil {
		return body, nil
	}
	if coerce.Lower(m, "status", "") != "error" {
		return body, nil
	}

	code := coerce.Str(m, "code", "")
	message := coerce.Str(m, "reason", "")
	if message == "" {
		message = coerce.Str(m, "error", "")
	}
	kind, ok := errorCodes[code]
	if !ok {
		kind = unified.ExchangeError
	}
	return nil, unified.NewVenueError(kind, "bitstamp", code, message)
}

func mapHTTPError(status int, body []byte) error {
	var m coerce.M
	_ = json.Unmarshal(body, &m)
	code := coerce.Str(m, "code", "")
	kind, ok := errorCodes[code]
	if !ok {
		kind = unified.KindFromHTTPStatus(status)
	}
	return unified.NewHTTPError(kind, "bitstamp", status, string(body))
}
