package bitrue

import (
	"bytes"
	"compress/flate"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xchange/pkg/unified"
)

func TestInflateSyncFlushRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = w.Write([]byte(`{"channel":"market_btcusdt_ticker"}`))
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	plain, err := inflateSyncFlush(buf.Bytes())
	require.NoError(t, err)
	assert.JSONEq(t, `{"channel":"market_btcusdt_ticker"}`, string(plain))
}

// TestParseOrderBookTickUsesBuysField grounds spec.md §8 scenario 5: the
// wire field is "buys", not "bids".
func TestParseOrderBookTickUsesBuysField(t *testing.T) {
	tick := map[string]any{
		"buys": []any{[]any{"50000", "1"}},
		"asks": []any{[]any{"50010", "2"}},
	}
	ob := parseOrderBookTick("BTC/USDT", tick)
	require.Len(t, ob.Bids, 1)
	assert.Equal(t, 50000.0, ob.Bids[0].Price)
	assert.Equal(t, 1.0, ob.Bids[0].Size)
	assert.Equal(t, 50010.0, ob.Asks[0].Price)
}

// TestParseTradePreservesIsBuyerMakerQuirk grounds spec.md §9: isBuyerMaker
// true maps to "sell", a preserved suspected-defect mapping.
func TestParseTradePreservesIsBuyerMakerQuirk(t *testing.T) {
	trade := parseTrade("BTC/USDT", map[string]any{"isBuyerMaker": true, "price": "100", "qty": "1", "time": float64(1700000000000), "id": float64(1)})
	assert.Equal(t, unified.SideSell, trade.Side)
}
