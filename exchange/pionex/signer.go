package pionex

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"xchange/exchange"
	"xchange/internal/coerce"
	"xchange/internal/xcrypto"
)

// sign implements spec.md §4.2's Pionex split: GET signs over
// "GET"+path+"?"+rawQuery (sorted, unencoded, including timestamp);
// POST/DELETE sign over METHOD+path+"?timestamp="+timestamp+JSON(body).
func (d *Driver) sign(path, method string, params map[string]string) (exchange.SignResult, error) {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	var signingString string
	var body []byte
	var pathAndQuery string

	switch strings.ToUpper(method) {
	case "GET":
		allParams := make(map[string]string, len(params)+1)
		for k, v := range params {
			allParams[k] = v
		}
		allParams["timestamp"] = timestamp
		rawQuery := coerce.AlphabetizedRaw(allParams)
		signingString = "GET" + path + "?" + rawQuery
		pathAndQuery = path + "?" + rawQuery
		params = allParams
	default:
		if len(params) > 0 {
			var err error
			body, err = json.Marshal(stringMapToAny(params))
			if err != nil {
				return exchange.SignResult{}, err
			}
		}
		signingString = strings.ToUpper(method) + path + "?timestamp=" + timestamp + string(body)
	}

	signature := xcrypto.HMACSHA256Hex(signingString, d.Credentials.Secret)
	headers := map[string]string{
		"PIONEX-KEY":       d.Credentials.APIKey,
		"PIONEX-SIGNATURE": signature,
	}
	return exchange.SignResult{Params: params, Headers: headers, Body: body, PathAndQuery: pathAndQuery}, nil
}

func stringMapToAny(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
