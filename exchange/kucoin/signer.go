package kucoin

import (
	"encoding/json"
	"strconv"
	"time"

	"xchange/exchange"
	"xchange/internal/coerce"
	"xchange/internal/xcrypto"
)

// sign implements spec.md §4.2's KuCoin v2 signer: prehash =
// timestamp‖METHOD‖requestPath[?query|body]; signature and passphrase are
// both HMAC-SHA256-base64 under the API secret.
func (d *Driver) sign(path, method string, params map[string]string) (exchange.SignResult, error) {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	requestPath := path
	var body []byte
	switch method {
	case "GET", "DELETE":
		if len(params) > 0 {
			requestPath = path + "?" + coerce.EncodedQuery(params)
		}
	default:
		var err error
		body, err = json.Marshal(stringMapToAny(params))
		if err != nil {
			return exchange.SignResult{}, err
		}
	}

	prehash := timestamp + method + requestPath + string(body)
	signature := xcrypto.HMACSHA256Base64(prehash, d.Credentials.Secret)
	signedPassphrase := xcrypto.HMACSHA256Base64(d.Credentials.Passphrase, d.Credentials.Secret)

	headers := map[string]string{
		"KC-API-KEY":         d.Credentials.APIKey,
		"KC-API-SIGN":        signature,
		"KC-API-TIMESTAMP":   timestamp,
		"KC-API-PASSPHRASE":  signedPassphrase,
		"KC-API-KEY-VERSION": "2",
	}
	return exchange.SignResult{Params: params, Headers: headers, Body: body}, nil
}

func stringMapToAny(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
