package kraken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

// TestParseMarketPrefersWsname grounds spec.md §8 scenario 1: Kraken's
// XXBTZUSD pair carries a wsname of "XBT/USD", which must resolve to the
// unified "BTC/USD" symbol via currency cleaning, independent of altname.
func TestParseMarketPrefersWsname(t *testing.T) {
	raw := coerce.M{
		"altname":       "XBTUSD",
		"wsname":        "XBT/USD",
		"pair_decimals": float64(1),
		"lot_decimals":  float64(8),
		"ordermin":      "0.0001",
	}
	mkt := parseMarket("XXBTZUSD", raw)
	assert.Equal(t, "BTC/USD", mkt.Symbol)
	assert.Equal(t, "BTC", mkt.Base)
	assert.Equal(t, "USD", mkt.Quote)
	assert.Equal(t, "XXBTZUSD", mkt.Id)
}

// TestParseMarketFallsBackToAltname grounds the ADAUSD case of spec.md §8
// scenario 1: pairs with no wsname split via the length-partitioned altname
// fallback (3 base + 3 quote here).
func TestParseMarketFallsBackToAltname(t *testing.T) {
	raw := coerce.M{
		"altname":       "ADAUSD",
		"pair_decimals": float64(6),
		"lot_decimals":  float64(8),
	}
	mkt := parseMarket("ADAUSD", raw)
	assert.Equal(t, "ADA/USD", mkt.Symbol)
	assert.Equal(t, "ADA", mkt.Base)
	assert.Equal(t, "USD", mkt.Quote)
}

func TestCleanCurrencyStripsLeadingXZ(t *testing.T) {
	assert.Equal(t, "BTC", cleanCurrency("XBT"))
	assert.Equal(t, "BTC", cleanCurrency("XXBT"))
	assert.Equal(t, "ETH", cleanCurrency("XETH"))
	assert.Equal(t, "USD", cleanCurrency("ZUSD"))
}

func TestClassifyMessageDispatchesBySubstring(t *testing.T) {
	assert.Equal(t, unified.AuthenticationError, classifyMessage("EAPI:Invalid key"))
	assert.Equal(t, unified.InsufficientFunds, classifyMessage("EOrder:Insufficient funds"))
	assert.Equal(t, unified.BadSymbol, classifyMessage("EQuery:Unknown asset pair"))
	assert.Equal(t, unified.ExchangeError, classifyMessage("EGeneral:Unexpected"))
}

func TestUnwrapReturnsResultWhenErrorEmpty(t *testing.T) {
	body := []byte(`{"error":[],"result":{"XXBTZUSD":{"a":["100"]}}}`)
	result, err := unwrap(body)
	require.NoError(t, err)
	assert.Contains(t, string(result), "XXBTZUSD")
}

func TestUnwrapClassifiesFirstErrorMessage(t *testing.T) {
	body := []byte(`{"error":["EOrder:Insufficient funds"]}`)
	_, err := unwrap(body)
	require.Error(t, err)
	venueErr, ok := err.(*unified.Error)
	require.True(t, ok)
	assert.Equal(t, unified.InsufficientFunds, venueErr.Kind)
}

func TestParseTradeSideFromThirdElement(t *testing.T) {
	buy := parseTrade("BTC/USD", []any{"100.0", "1.0", "1700000000.0", "b", "l", ""})
	assert.Equal(t, unified.SideBuy, buy.Side)

	sell := parseTrade("BTC/USD", []any{"100.0", "1.0", "1700000000.0", "s", "l", ""})
	assert.Equal(t, unified.SideSell, sell.Side)
}
