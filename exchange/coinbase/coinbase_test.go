package coinbase

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xchange/exchange"
	"xchange/internal/coerce"
)

func TestToVenueIdHyphenates(t *testing.T) {
	assert.Equal(t, "BTC-USD", toVenueId("BTC/USD"))
}

// TestMarketBuyOrderConfigurationCarriesQuoteSize grounds spec.md §8
// scenario 4: it checks that a market-buy body built by hand in the test
// carries quote_size under order_configuration.market_market_ioc after a
// JSON round trip. It does not call CreateOrder.
func TestMarketBuyOrderConfigurationCarriesQuoteSize(t *testing.T) {
	body := map[string]any{
		"client_order_id": "11111111-1111-1111-1111-111111111111",
		"product_id":      "BTC-USD",
		"side":            "BUY",
		"order_configuration": map[string]any{
			"market_market_ioc": map[string]any{"quote_size": "50"},
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	var m coerce.M
	require.NoError(t, json.Unmarshal(raw, &m))
	cfg := coerce.Sub(m, "order_configuration")
	leg := coerce.Sub(cfg, "market_market_ioc")
	assert.Equal(t, "50", coerce.Str(leg, "quote_size", ""))
}

func TestOverrideRequestCarriesRawBody(t *testing.T) {
	d := &Driver{Driver: exchange.NewDriver("coinbase", "https://api.coinbase.com", exchange.Credentials{}, 10, 20)}
	req, err := d.overrideRequest(exchange.RequestContext{
		Method:  http.MethodPost,
		BaseURL: "https://api.coinbase.com",
		Path:    "/api/v3/brokerage/orders",
		Params:  map[string]string{rawBodyParamKey: `{"a":1}`},
	})
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

func TestUnwrapReadsErrorsArray(t *testing.T) {
	body := []byte(`{"errors":[{"id":"UNKNOWN_PRODUCT_ID","message":"bad product"}]}`)
	_, err := unwrap(body)
	require.Error(t, err)
}

func TestParseTickerShoehornsQuoteVolume(t *testing.T) {
	m := coerce.M{"price": "100", "volume_24h": "10", "volume_percentage_change_24h": "5"}
	ticker := parseTicker("BTC/USD", m)
	require.NotNil(t, ticker.QuoteVolume)
	assert.Equal(t, 5.0, *ticker.QuoteVolume)
}
