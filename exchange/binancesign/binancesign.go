// Package binancesign implements the signer shared by the Binance/Bitrue
// family (spec.md §4.4): a sorted-raw query signed with HMAC-SHA256,
// carried either as an appended query param (GET/DELETE) or alongside a
// JSON/form body (POST). It is factored out of exchange/binance and
// exchange/bitrue since both venues use the identical scheme.
package binancesign

import (
	"fmt"
	"strconv"
	"time"

	"xchange/exchange"
	"xchange/internal/coerce"
	"xchange/internal/xcrypto"
)

// Sign builds a raw-query signer bound to a fixed apiKey/secret/recvWindow.
// method is the HTTP verb the caller is about to issue ("GET", "POST", ...).
func Sign(apiKey, secret string, recvWindow int64) exchange.Signer {
	return func(path, method string, params map[string]string) (exchange.SignResult, error) {
		merged := make(map[string]string, len(params)+2)
		for k, v := range params {
			merged[k] = v
		}
		merged["timestamp"] = strconv.FormatInt(time.Now().UnixMilli(), 10)
		if recvWindow > 0 {
			merged["recvWindow"] = strconv.FormatInt(recvWindow, 10)
		}

		rawQuery := coerce.AlphabetizedRaw(merged)
		signature := xcrypto.HMACSHA256Hex(rawQuery, secret)

		headers := map[string]string{"X-MBX-APIKEY": apiKey}

		switch method {
		case "GET", "DELETE":
			merged["signature"] = signature
			return exchange.SignResult{Params: merged, Headers: headers}, nil
		default: // POST, PUT
			pathAndQuery := fmt.Sprintf("%s?%s&signature=%s", path, rawQuery, signature)
			return exchange.SignResult{Params: merged, Headers: headers, PathAndQuery: pathAndQuery}, nil
		}
	}
}
