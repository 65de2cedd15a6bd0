package binance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xchange/exchange"
	"xchange/pkg/unified"
)

func TestToVenueIdConcatenatesUppercase(t *testing.T) {
	assert.Equal(t, "BTCUSDT", toVenueId("BTC/USDT"))
}

func TestFromVenueIdFallsBackToKnownQuoteSplit(t *testing.T) {
	d := New(exchange.Credentials{})
	assert.Equal(t, "BTC/USDT", d.fromVenueId("BTCUSDT"))
}

func TestParseTradeSideFromBuyerMakerFlag(t *testing.T) {
	sell := parseTrade("BTC/USDT", map[string]any{"isBuyerMaker": true, "price": "100", "qty": "1", "time": float64(1700000000000), "id": float64(5)})
	assert.Equal(t, unified.SideSell, sell.Side)
}

func TestParseOrderDerivesRemainingAndAverage(t *testing.T) {
	o := parseOrder("BTC/USDT", map[string]any{
		"orderId": float64(1), "symbol": "BTCUSDT", "side": "BUY", "type": "LIMIT",
		"price": "100", "origQty": "2", "executedQty": "1", "cummulativeQuoteQty": "100", "status": "PARTIALLY_FILLED",
	})
	require.Equal(t, 1.0, o.Remaining)
	require.Equal(t, 100.0, o.Average)
}
