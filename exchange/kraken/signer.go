package kraken

import (
	"strconv"
	"time"

	"xchange/exchange"
	"xchange/internal/coerce"
	"xchange/internal/xcrypto"
)

var nonceFunc = func() string { return strconv.FormatInt(time.Now().UnixMicro(), 10) }

// sign implements spec.md §4.4's Kraken signer: a form-encoded body with a
// microsecond nonce, signed via the two-step xcrypto.KrakenSign.
func (d *Driver) sign(path, method string, params map[string]string) (exchange.SignResult, error) {
	return signWith(d.Credentials.APIKey, d.Credentials.Secret, path, params, nonceFunc())
}

func signWith(apiKey, secretB64, path string, params map[string]string, nonce string) (exchange.SignResult, error) {
	merged := make(map[string]string, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}
	merged["nonce"] = nonce

	body := coerce.EncodedQuery(merged)
	signature, err := xcrypto.KrakenSign(path, nonce, body, secretB64)
	if err != nil {
		return exchange.SignResult{}, err
	}

	headers := map[string]string{
		"API-Key":      apiKey,
		"API-Sign":     signature,
		"Content-Type": "application/x-www-form-urlencoded",
	}
	return exchange.SignResult{Params: merged, Headers: headers, Body: []byte(body)}, nil
}
