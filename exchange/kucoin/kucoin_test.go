package kucoin

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"xchange/exchange"
)

func TestToVenueIdHyphenates(t *testing.T) {
	assert.Equal(t, "BTC-USDT", toVenueId("BTC/USDT"))
}

func TestFromVenueIdFallsBackToHyphenSplit(t *testing.T) {
	d := New(exchange.Credentials{})
	assert.Equal(t, "BTC/USDT", d.fromVenueId("BTC-USDT"))
}

// TestParseCandleReshapesOHLC grounds spec.md §8 scenario 3's self-consistent
// row: KuCoin returns [time, open, close, high, low, volume, turnover];
// unified Candle reorders to OHLC.
func TestParseCandleReshapesOHLC(t *testing.T) {
	row := []any{float64(1700000060), "10", "15", "12", "8", "100", "1200"}
	c := parseCandle(row)
	assert.Equal(t, int64(1700000060000), c.Timestamp)
	assert.Equal(t, 10.0, c.Open)
	assert.Equal(t, 12.0, c.High)
	assert.Equal(t, 8.0, c.Low)
	assert.Equal(t, 15.0, c.Close)
	assert.Equal(t, 100.0, c.Volume)
}

func TestSignerProducesKeyVersion2Headers(t *testing.T) {
	d := New(exchange.Credentials{APIKey: "k", Secret: "s", Passphrase: "p"})
	result, err := d.sign("/api/v1/orders", "GET", map[string]string{"status": "active"})
	assert.NoError(t, err)
	assert.Equal(t, "2", result.Headers["KC-API-KEY-VERSION"])
	assert.Equal(t, "k", result.Headers["KC-API-KEY"])
	assert.NotEmpty(t, result.Headers["KC-API-SIGN"])
	assert.NotEmpty(t, result.Headers["KC-API-PASSPHRASE"])
}

func TestUnwrapReturnsDataOnSuccessCode(t *testing.T) {
	body := []byte(`{"code":"200000","data":{"symbol":"BTC-USDT"}}`)
	data, err := unwrap(body)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "BTC-USDT")
}

func TestUnwrapMapsNonSuccessCode(t *testing.T) {
	body := []byte(`{"code":"400100","msg":"bad param"}`)
	_, err := unwrap(body)
	assert.Error(t, err)
}
