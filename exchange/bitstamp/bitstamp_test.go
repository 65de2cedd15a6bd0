package bitstamp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xchange/exchange"
	"xchange/pkg/unified"
)

// TestSignerNoBodyFixture grounds spec.md §8 scenario 2: a GET request with
// empty params carries no content-type/body segment, and the nonce/clock
// are threaded through verbatim into the headers.
func TestSignerNoBodyFixture(t *testing.T) {
	nonce := "11111111-2222-3333-4444-555555555555"
	timestamp := "1700000000000"

	result, err := signWith("K", "S", "/api/v2/ticker/btcusd/", "GET", map[string]string{}, nonce, timestamp)
	require.NoError(t, err)

	assert.Equal(t, "v2", result.Headers["X-Auth-Version"])
	assert.Equal(t, "BITSTAMP K", result.Headers["X-Auth"])
	assert.Equal(t, nonce, result.Headers["X-Auth-Nonce"])
	assert.Equal(t, timestamp, result.Headers["X-Auth-Timestamp"])
	assert.NotContains(t, result.Headers, "Content-Type")
	assert.Len(t, result.Headers["X-Auth-Signature"], 64)
}

func TestSignerWithBodyIncludesContentType(t *testing.T) {
	result, err := signWith("K", "S", "/api/v2/buy/btcusd/", "POST",
		map[string]string{"amount": "1", "price": "10000"}, "nonce", "123")
	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", result.Headers["Content-Type"])
	assert.NotEmpty(t, result.Body)
}

func TestSignerIsDeterministicForFixedInputs(t *testing.T) {
	params := map[string]string{"amount": "1"}
	r1, err := signWith("K", "S", "/api/v2/buy/btcusd/", "POST", params, "n", "t")
	require.NoError(t, err)
	r2, err := signWith("K", "S", "/api/v2/buy/btcusd/", "POST", params, "n", "t")
	require.NoError(t, err)
	assert.Equal(t, r1.Headers["X-Auth-Signature"], r2.Headers["X-Auth-Signature"])
}

func TestToVenueIdConcatenatesLowercase(t *testing.T) {
	assert.Equal(t, "btcusd", toVenueId("BTC/USD"))
	assert.Equal(t, "ethusdt", toVenueId("ETH/USDT"))
}

func TestFromVenueIdFallsBackToKnownQuoteSplit(t *testing.T) {
	d := New(exchange.Credentials{})
	assert.Equal(t, "BTC/USD", d.fromVenueId("btcusd"))
	assert.Equal(t, "ETH/USDT", d.fromVenueId("ethusdt"))
}

func TestParseTickerFillsChangeFields(t *testing.T) {
	m := map[string]any{"last": "105", "open": "100", "bid": "104", "ask": "106", "timestamp": "1700000000"}
	ticker := parseTicker("BTC/USD", m)
	require.NotNil(t, ticker.Change)
	assert.InDelta(t, 5.0, *ticker.Change, 0.0001)
	require.NotNil(t, ticker.Percentage)
	assert.InDelta(t, 5.0, *ticker.Percentage, 0.0001)
}

func TestParseTradeSideFromNumericType(t *testing.T) {
	buy := parseTrade("BTC/USD", map[string]any{"type": "0", "price": "100", "amount": "1", "date": "1700000000", "tid": "1"})
	assert.Equal(t, unified.SideBuy, buy.Side)

	sell := parseTrade("BTC/USD", map[string]any{"type": "1", "price": "100", "amount": "1", "date": "1700000000", "tid": "2"})
	assert.Equal(t, unified.SideSell, sell.Side)
}
