package pionex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xchange/exchange"
)

func TestToVenueIdUnderscoresAndUppercases(t *testing.T) {
	assert.Equal(t, "BTC_USDT", toVenueId("btc/usdt"))
}

// TestFromVenueIdMisSplitsMultiSegmentCoins grounds the preserved source
// defect of spec.md §9: the uppercase fallback splits on only the first
// underscore, so multi-segment coin names round-trip imperfectly.
func TestFromVenueIdMisSplitsMultiSegmentCoins(t *testing.T) {
	d := New(exchange.Credentials{})
	assert.Equal(t, "SHIB/1000_USDT", d.fromVenueId("SHIB_1000_USDT"))
	assert.Equal(t, "BTC/USDT", d.fromVenueId("BTC_USDT"))
}

func TestUnwrapMapsResultFalseToError(t *testing.T) {
	body := []byte(`{"result":false,"code":"20003","message":"insufficient"}`)
	_, err := unwrap(body)
	assert.Error(t, err)
}

func TestUnwrapReturnsDataOnSuccess(t *testing.T) {
	body := []byte(`{"result":true,"data":{"symbols":[]}}`)
	raw, err := unwrap(body)
	assert.NoError(t, err)
	assert.Equal(t, `{"symbols":[]}`, string(raw))
}

// TestSignGETEmbedsRawQueryInPathAndQuery grounds spec.md §4.2: the GET
// signing string and the actual request path share the same sorted, raw
// (unencoded) query — carried via SignResult.PathAndQuery.
func TestSignGETEmbedsRawQueryInPathAndQuery(t *testing.T) {
	d := New(exchange.Credentials{APIKey: "k", Secret: "s"})
	result, err := d.sign("/api/v1/market/depth", "GET", map[string]string{"symbol": "BTC_USDT"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.PathAndQuery, "/api/v1/market/depth?"))
	assert.Contains(t, result.PathAndQuery, "symbol=BTC_USDT")
	assert.Contains(t, result.PathAndQuery, "timestamp=")
	assert.NotEmpty(t, result.Headers["PIONEX-SIGNATURE"])
}

// TestSignPOSTSignsJSONBody grounds spec.md §4.2's POST/DELETE signing
// string: METHOD+path+"?timestamp="+timestamp+JSON(body).
func TestSignPOSTSignsJSONBody(t *testing.T) {
	d := New(exchange.Credentials{APIKey: "k", Secret: "s"})
	result, err := d.sign("/api/v1/trade/order", "POST", map[string]string{"symbol": "BTC_USDT"})
	require.NoError(t, err)
	assert.Empty(t, result.PathAndQuery)
	assert.Contains(t, string(result.Body), "BTC_USDT")
}
