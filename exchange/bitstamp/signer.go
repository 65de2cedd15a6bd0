package bitstamp

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"xchange/exchange"
	"xchange/internal/coerce"
	"xchange/internal/xcrypto"
)

// defaultNonceFunc and defaultClockFunc supply the live nonce and timestamp;
// signWith takes both as arguments so signer tests can fix them (spec.md §8
// scenario 2 fixes both nonce and timestamp).
var (
	defaultNonceFunc = func() string { return uuid.NewString() }
	defaultClockFunc = func() string { return strconv.FormatInt(time.Now().UnixMilli(), 10) }
)

func (d *Driver) sign(path, method string, params map[string]string) (exchange.SignResult, error) {
	return signWith(d.Credentials.APIKey, d.Credentials.Secret, path, method, params, defaultNonceFunc(), defaultClockFunc())
}

// signWith implements spec.md §4.4's Bitstamp v2 signature:
//
//	HMAC-SHA256("BITSTAMP "‖apiKey‖METHOD‖"www.bitstamp.net"‖path‖[contentType‖]nonce‖timestamp‖"v2"[‖body])
//
// Body (and contentType) are present iff params is non-empty.
func signWith(apiKey, secret, path, method string, params map[string]string, nonce, timestamp string) (exchange.SignResult, error) {
	var body string
	var contentType string
	if len(params) > 0 {
		body = coerce.EncodedQuery(params)
		contentType = "application/x-www-form-urlencoded"
	}

	sb := "BITSTAMP " + apiKey + method + "www.bitstamp.net" + path + contentType + nonce + timestamp + "v2" + body
	signature := xcrypto.HMACSHA256Hex(sb, secret)

	headers := map[string]string{
		"X-Auth":           "BITSTAMP " + apiKey,
		"X-Auth-Signature": signature,
		"X-Auth-Nonce":     nonce,
		"X-Auth-Timestamp": timestamp,
		"X-Auth-Version":   "v2",
	}
	if contentType != "" {
		headers["Content-Type"] = contentType
	}

	return exchange.SignResult{Params: params, Headers: headers, Body: []byte(body)}, nil
}
