package coinbase

import (
	"strings"

	"xchange/exchange"
	"xchange/internal/xcrypto"
)

// sign implements spec.md §4.2's Coinbase signer: an ES256 JWT whose uri
// claim is "METHOD api.coinbase.com"+path, sent as a bearer token. The
// signer never touches params/body — Coinbase authenticates the request
// line, not the payload.
func (d *Driver) sign(path, method string, params map[string]string) (exchange.SignResult, error) {
	uri := strings.ToUpper(method) + " api.coinbase.com" + path
	token, err := xcrypto.SignES256JWT(d.Credentials.APIKey, d.privateKey, "cdp", uri)
	if err != nil {
		return exchange.SignResult{}, err
	}
	return exchange.SignResult{
		Params:  params,
		Headers: map[string]string{"Authorization": "Bearer " + token},
	}, nil
}
