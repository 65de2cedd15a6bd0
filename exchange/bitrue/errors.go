package bitrue

import (
	"encoding/json"
	"strconv"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

// errorCodes covers the documented Bitrue negative codes; spec.md §4.6:
// "{code, msg} with negative code -> map code".
var errorCodes = map[string]unified.Kind{
	"-1013": unified.InvalidOrder,
	"-1021": unified.AuthenticationError,
	"-1022": unified.AuthenticationError,
	"-1121": unified.BadSymbol,
	"-2010": unified.InsufficientFunds,
	"-2013": unified.OrderNotFound,
}

func unwrap(body []byte) ([]byte, error) {
	var m coerce.M
	if err := json.Unmarshal(body, &m); err != nil {
		return body, nil
	}
	code := coerce.Int(m, "code", 0)
	if code >= 0 {
		return body, nil
	}
	kind, ok := errorCodes[strconv.FormatInt(code, 10)]
	if !ok {
		kind = unified.ExchangeError
	}
	return nil, unified.NewVenueError(kind, "bitrue", strconv.FormatInt(code, 10), coerce.Str(m, "msg", ""))
}

func mapHTTPError(status int, body []byte) error {
	var m coerce.M
	_ = json.Unmarshal(body, &m)
	code := coerce.Int(m, "code", 0)
	kind, ok := errorCodes[strconv.FormatInt(code, 10)]
	if !ok {
		kind = unified.KindFromHTTPStatus(status)
	}
	return unified.NewHTTPError(kind, "bitrue", status, string(body))
}
