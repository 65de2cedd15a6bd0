package bittrex

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"xchange/exchange"
	"xchange/internal/coerce"
	"xchange/internal/xcrypto"
)

// sign implements spec.md §4.2's Bittrex v3 signer: preSign =
// timestamp‖url_with_query‖method‖contentHash, signature = HMAC-SHA512 hex.
func (d *Driver) sign(path, method string, params map[string]string) (exchange.SignResult, error) {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	url := d.BaseURL + path
	var body []byte
	switch method {
	case "GET", "DELETE":
		if len(params) > 0 {
			url = url + "?" + coerce.EncodedQuery(params)
		}
	default:
		var err error
		body, err = json.Marshal(stringMapToAny(params))
		if err != nil {
			return exchange.SignResult{}, err
		}
	}

	contentHash := xcrypto.SHA512Hex(string(body))
	preSign := strings.Join([]string{timestamp, url, strings.ToUpper(method), contentHash}, "")
	signature := xcrypto.HMACSHA512Hex(preSign, d.Credentials.Secret)

	headers := map[string]string{
		"Api-Key":          d.Credentials.APIKey,
		"Api-Timestamp":    timestamp,
		"Api-Content-Hash": contentHash,
		"Api-Signature":    signature,
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
