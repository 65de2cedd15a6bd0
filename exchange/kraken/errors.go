package kraken

import (
	"encoding/json"
	"strings"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

// errorSubstrings implements spec.md §4.6's Kraken row: "nonempty error ->
// scan messages for substrings and dispatch". Order matters only in that
// ties are broken by the first match.
var errorSubstrings = []struct {
	substr string
	kind   unified.Kind
}{
	{"Invalid key", unified.AuthenticationError},
	{"Invalid signature", unified.AuthenticationError},
	{"Invalid nonce", unified.AuthenticationError},
	{"Permission denied", unified.AuthenticationError},
	{"Unknown asset pair", unified.BadSymbol},
	{"Insufficient funds", unified.InsufficientFunds},
	{"Invalid order", unified.InvalidOrder},
	{"Invalid price", unified.InvalidOrder},
	{"Invalid volume", unified.InvalidOrder},
	{"Unknown order", unified.OrderNotFound},
	{"Rate limit", unified.RateLimitExceeded},
	{"Service:Unavailable", unified.ExchangeNotAvailable},
	{"Service:Busy", unified.ExchangeNotAvailable},
}

func classifyMessage(msg string) unified.Kind {
	for _, e := range errorSubstrings {
		if strings.Contains(msg, e.substr) {
			return e.kind
		}
	}
	return unified.ExchangeError
}

func unwrap(body []byte) ([]byte, error) {
	var m coerce.M
	if err := json.Unmarshal(body, &m); err != nil {
		return body, nil
	}
	errs := asSlice(m["error"])
	if len(errs) == 0 {
		result, _ := json.Marshal(m["result"])
		return result, nil
	}
	msg := coerce.Str(coerce.M{"v": errs[0]}, "v", "")
	return nil, unified.NewVenueError(classifyMessage(msg), "kraken", msg, msg)
}

func mapHTTPError(status int, body []byte) error {
	var m coerce.M
	_ = json.Unmarshal(body, &m)
	if errs := asSlice(m["error"]); len(errs) > 0 {
		msg := coerce.Str(coerce.M{"v": errs[0]}, "v", "")
		return unified.NewVenueError(classifyMessage(msg), "kraken", msg, msg)
	}
	return unified.NewHTTPError(unified.KindFromHTTPStatus(status), "kraken", status, string(body))
}
