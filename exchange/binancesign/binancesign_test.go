package binancesign

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignGETAppendsSignatureParam(t *testing.T) {
	signer := Sign("key", "secret", 5000)
	result, err := signer("/api/v3/order", "GET", map[string]string{"symbol": "BTCUSDT"})
	require.NoError(t, err)

	assert.Equal(t, "key", result.Headers["X-MBX-APIKEY"])
	assert.NotEmpty(t, result.Params["signature"])
	assert.Equal(t, "BTCUSDT", result.Params["symbol"])
	assert.Equal(t, "5000", result.Params["recvWindow"])
	assert.Empty(t, result.PathAndQuery)
}

func TestSignPOSTAppendsSignatureToPathAndQuery(t *testing.T) {
	signer := Sign("key", "secret", 0)
	result, err := signer("/api/v3/order", "POST", map[string]string{"symbol": "BTCUSDT", "side": "BUY"})
	require.NoError(t, err)

	require.NotEmpty(t, result.PathAndQuery)
	assert.True(t, strings.HasPrefix(result.PathAndQuery, "/api/v3/order?"))
	assert.Contains(t, result.PathAndQuery, "&signature=")
	assert.NotContains(t, result.Params, "recvWindow")
}

func TestSignatureIsHexDigestEachCall(t *testing.T) {
	signer := Sign("key", "secret", 0)
	params := map[string]string{"symbol": "BTCUSDT", "timestamp": "1700000000000"}
	r1, err := signer("/api/v3/order", "GET", params)
	require.NoError(t, err)
	r2, err := signer("/api/v3/order", "GET", params)
	require.NoError(t, err)
	// timestamp gets overwritten with time.Now() internally, but the
	// signature must still be a 64-char lowercase hex digest each time.
	assert.Len(t, r1.Params["signature"], 64)
	assert.Len(t, r2.Params["signature"], 64)
}
