package coinbase

import (
	"encoding/json"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

// errorIds implements spec.md §4.6's Coinbase row, mapped from Coinbase
// Advanced Trade's published error id vocabulary.
var errorIds = map[string]unified.Kind{
	"INVALID_ARGUMENT":        unified.BadRequest,
	"UNAUTHORIZED":            unified.AuthenticationError,
	"PERMISSION_DENIED":       unified.AuthenticationError,
	"NOT_FOUND":               unified.OrderNotFound,
	"RESOURCE_EXHAUSTED":      unified.RateLimitExceeded,
	"INSUFFICIENT_FUND":       unified.InsufficientFunds,
	"INVALID_PRICE_PRECISION": unified.InvalidOrder,
	"INVALID_SIZE_PRECISION":  unified.InvalidOrder,
	"UNKNOWN_PRODUCT_ID":      unified.BadSymbol,
}

func classifyId(id string) unified.Kind {
	if kind, ok := errorIds[id]; ok {
		return kind
	}
	return unified.ExchangeError
}

func unwrap(body []byte) ([]byte, error) {
	var m coerce.M
	if err := json.Unmarshal(body, &m); err != nil {
		return body, nil
	}
	if errId := coerce.Str(m, "error", ""); errId != "" {
		return nil, unified.NewVenueError(classifyId(errId), "coinbase", errId, coerce.Str(m, "error_description", coerce.Str(m, "message", "")))
	}
	if errs := asSlice(m["errors"]); len(errs) > 0 {
		first := coerce.M(asMap(errs[0]))
		id := coerce.Str(first, "id", coerce.Str(first, "error", ""))
		return nil, unified.NewVenueError(classifyId(id), "coinbase", id, coerce.Str(first, "message", ""))
	}
	return body, nil
}

func mapHTTPError(status int, body []byte) error {
	var m coerce.M
	_ = json.Unmarshal(body, &m)
	if errId := coerce.Str(m, "error", ""); errId != "" {
		return unified.NewVenueError(classifyId(errId), "coinbase", errId, coerce.Str(m, "message", ""))
	}
	return unified.NewHTTPError(unified.KindFromHTTPStatus(status), "coinbase", status, string(body))
}
