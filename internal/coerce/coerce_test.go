package coerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatAbsentIsDefault(t *testing.T) {
	m := M{"a": nil, "b": ""}
	assert.Equal(t, 1.5, Float(m, "a", 1.5))
	assert.Equal(t, 1.5, Float(m, "b", 1.5))
	assert.Equal(t, 1.5, Float(m, "missing", 1.5))
}

func TestFloatParsesStringsAndNumbers(t *testing.T) {
	m := M{"n": 3.25, "s": "7.5", "bad": "nope"}
	assert.Equal(t, 3.25, Float(m, "n", 0))
	assert.Equal(t, 7.5, Float(m, "s", 0))
	assert.Equal(t, 0.0, Float(m, "bad", 0))
}

func TestFloatPtrNeverZeroForAbsent(t *testing.T) {
	m := M{"present": 0.0}
	require.NotNil(t, FloatPtr(m, "present"))
	assert.Equal(t, 0.0, *FloatPtr(m, "present"))
	assert.Nil(t, FloatPtr(m, "absent"))
}

func TestUpperLower(t *testing.T) {
	m := M{"k": "bTc"}
	assert.Equal(t, "BTC", Upper(m, "k", ""))
	assert.Equal(t, "btc", Lower(m, "k", ""))
}

func TestTwoKeyFallback(t *testing.T) {
	m := M{"b": "fallback"}
	assert.Equal(t, "fallback", Str2(m, "a", "b", "def"))
	m2 := M{"a": "primary", "b": "fallback"}
	assert.Equal(t, "primary", Str2(m2, "a", "b", "def"))
}

func TestEncodedQueryAlphabetizesAndEncodes(t *testing.T) {
	q := EncodedQuery(map[string]string{"b": "2", "a": "1 2"})
	assert.Equal(t, "a=1+2&b=2", q)
}

func TestRawQueryPreservesOrderThenAlphabetizesRest(t *testing.T) {
	q := RawQuery(map[string]string{"symbol": "BTCUSDT", "timestamp": "1", "recvWindow": "5000"}, []string{"symbol"})
	assert.Equal(t, "symbol=BTCUSDT&recvWindow=5000&timestamp=1", q)
}

func TestAlphabetizedRaw(t *testing.T) {
	q := AlphabetizedRaw(map[string]string{"z": "1", "a": "2"})
	assert.Equal(t, "a=2&z=1", q)
}

func TestISODatetime(t *testing.T) {
	assert.Equal(t, "2023-11-14T22:13:20.000Z", ISODatetime(1700000000000))
}
