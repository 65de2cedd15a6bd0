package bittrex

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xchange/exchange"
	"xchange/internal/coerce"
)

func TestToVenueIdHyphenates(t *testing.T) {
	assert.Equal(t, "BTC-USD", toVenueId("BTC/USD"))
}

func TestFromVenueIdFallsBackToHyphenSplit(t *testing.T) {
	d := New(exchange.Credentials{})
	assert.Equal(t, "BTC/USD", d.fromVenueId("BTC-USD"))
}

// TestParseOrderLeavesFeeCurrencyEmpty grounds the preserved Bittrex source
// defect of spec.md §9: the order payload has no per-order fee currency
// field, so parseOrder must not fabricate one.
func TestParseOrderLeavesFeeCurrencyEmpty(t *testing.T) {
	d := New(exchange.Credentials{})
	m := coerce.M{
		"id":           "o1",
		"marketSymbol": "BTC-USD",
		"direction":    "BUY",
		"type":         "LIMIT",
		"quantity":     "1",
		"limit":        "100",
		"fillQuantity": "1",
		"proceeds":     "100",
		"status":       "CLOSED",
		"commission":   "0.1",
	}
	order := d.parseOrder(m)
	assert.Equal(t, "", order.Fee.Currency)
	assert.Equal(t, 0.1, order.Fee.Cost)
}

func TestUnwrapReadsTopLevelCode(t *testing.T) {
	body := []byte(`{"code":"MARKET_DOES_NOT_EXIST"}`)
	_, err := unwrap(body)
	require.Error(t, err)
}

// TestHubDispatchUnwrapsNestedJSONString grounds the SignalR envelope of
// spec.md §4.9: A[0] arrives as a JSON-encoded string requiring a second
// decode pass before the payload object is usable.
func TestHubDispatchUnwrapsNestedJSONString(t *testing.T) {
	hub := newWSHub()
	received := make(chan coerce.M, 1)
	hub.register("ticker", func(raw json.RawMessage) {
		received <- decodeRaw(raw)
	})

	inner := `{"symbol":"BTC-USD","lastTradeRate":"100"}`
	innerEncoded, err := json.Marshal(inner)
	require.NoError(t, err)

	frame := hubFrame{
		C: "d-1",
		M: []hubInvocation{{H: "c3", M: "ticker", A: json.RawMessage(`[` + string(innerEncoded) + `]`)}},
	}
	raw, err := json.Marshal(frame)
	require.NoError(t, err)

	hub.dispatch(raw)
	select {
	case m := <-received:
		assert.Equal(t, "BTC-USD", coerce.Str(m, "symbol", ""))
	default:
		t.Fatal("handler was not invoked")
	}
}
