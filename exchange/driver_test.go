package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xchange/internal/wsconn"
	"xchange/pkg/unified"
)

func TestDoUnsignedGETComposesQueryAndDecodes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ticker", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"price":"100.5"}`))
	}))
	defer ts.Close()

	d := NewDriver("testvenue", ts.URL, Credentials{}, 100, 100)
	body, err := d.Do(context.Background(), http.MethodGet, "/ticker", map[string]string{"symbol": "BTCUSDT"}, false, 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"100.5"}`, string(body))
}

func TestDoAppliesSignerHeadersAndParams(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sig-value", r.Header.Get("X-Signature"))
		assert.Equal(t, "v", r.URL.Query().Get("signed_param"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	d := NewDriver("testvenue", ts.URL, Credentials{}, 100, 100)
	d.Sign = func(path, method string, params map[string]string) (SignResult, error) {
		return SignResult{
			Params:  map[string]string{"signed_param": "v"},
			Headers: map[string]string{"X-Signature": "sig-value"},
		}, nil
	}

	_, err := d.Do(context.Background(), http.MethodGet, "/account", map[string]string{}, true, 1)
	require.NoError(t, err)
}

func TestDoMapsHTTPErrorViaErrorMapper(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"code":"-1003"}`))
	}))
	defer ts.Close()

	d := NewDriver("testvenue", ts.URL, Credentials{}, 100, 100)
	d.MapHTTPError = func(status int, body []byte) error {
		return unified.NewHTTPError(unified.RateLimitExceeded, "testvenue", status, string(body))
	}

	_, err := d.Do(context.Background(), http.MethodGet, "/orders", nil, false, 1)
	require.Error(t, err)
	var uerr *unified.Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, unified.RateLimitExceeded, uerr.Kind)
}

func TestDoFallsBackToStatusTaxonomyWithoutMapper(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`bad auth`))
	}))
	defer ts.Close()

	d := NewDriver("testvenue", ts.URL, Credentials{}, 100, 100)
	_, err := d.Do(context.Background(), http.MethodGet, "/private", nil, false, 1)
	require.Error(t, err)
	var uerr *unified.Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, unified.AuthenticationError, uerr.Kind)
}

func TestDoUnwrapsEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"200000","data":{"price":"1"}}`))
	}))
	defer ts.Close()

	d := NewDriver("testvenue", ts.URL, Credentials{}, 100, 100)
	d.Unwrap = func(body []byte) ([]byte, error) {
		return []byte(`{"price":"1"}`), nil
	}

	body, err := d.Do(context.Background(), http.MethodGet, "/x", nil, false, 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"1"}`, string(body))
}

func TestMarketsCacheWriteOncePublish(t *testing.T) {
	var mc MarketsCache
	assert.False(t, mc.Loaded())

	mc.Publish(
		map[string]unified.Market{"BTC/USD": {Symbol: "BTC/USD"}},
		map[string]unified.Market{"XBTUSD": {Symbol: "BTC/USD"}},
		[]string{"BTC/USD"},
	)

	assert.True(t, mc.Loaded())
	m, ok := mc.Market("BTC/USD")
	require.True(t, ok)
	assert.Equal(t, "BTC/USD", m.Symbol)

	byId, ok := mc.MarketById("XBTUSD")
	require.True(t, ok)
	assert.Equal(t, "BTC/USD", byId.Symbol)
}

func TestWSConnRejectedAfterCloseAllBegins(t *testing.T) {
	d := NewDriver("testvenue", "http://example.invalid", Credentials{}, 100, 100)
	require.NoError(t, d.CloseAllWS())

	_, err := d.WSConn("wss://example.invalid/stream", func() *wsconn.Conn {
		return wsconn.New("testvenue", "wss://example.invalid/stream", func([]byte) {})
	})
	require.Error(t, err)
	var uerr *unified.Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, unified.ExchangeNotAvailable, uerr.Kind)
}
