package lbank

import (
	"strconv"
	"time"

	"xchange/exchange"
	"xchange/internal/coerce"
	"xchange/internal/xcrypto"
)

// sign implements spec.md §4.2's LBank two-step signer: alphabetize
// {api_key, ...params, echostr, signature_method, timestamp} into an
// unencoded k=v&... string, MD5-uppercase-hex it, then HMAC-SHA256-hex the
// digest with the secret. The final request carries {api_key, ...params,
// sign}; timestamp/signature_method/echostr additionally travel as headers.
func (d *Driver) sign(path, method string, params map[string]string) (exchange.SignResult, error) {
	echostr, err := xcrypto.RandomHex(16)
	if err != nil {
		return exchange.SignResult{}, err
	}
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	toSign := make(map[string]string, len(params)+4)
	for k, v := range params {
		toSign[k] = v
	}
	toSign["api_key"] = d.Credentials.APIKey
	toSign["echostr"] = echostr
	toSign["signature_method"] = "HmacSHA256"
	toSign["timestamp"] = timestamp

	preSign := coerce.AlphabetizedRaw(toSign)
	digest := xcrypto.MD5UpperHex(preSign)
	sign := xcrypto.HMACSHA256Hex(digest, d.Credentials.Secret)

	finalParams := make(map[string]string, len(params)+2)
	for k, v := range params {
		finalParams[k] = v
	}
	finalParams["api_key"] = d.Credentials.APIKey
	finalParams["sign"] = sign

	headers := map[string]string{
		"timestamp":        timestamp,
		"signature_method": "HmacSHA256",
		"echostr":          echostr,
	}
	return exchange.SignResult{Params: finalParams, Headers: headers}, nil
}
