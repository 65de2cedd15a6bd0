package xcrypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACSHA256HexIsDeterministicAndKeyed(t *testing.T) {
	a := HMACSHA256Hex("hello", "secret")
	b := HMACSHA256Hex("hello", "secret")
	c := HMACSHA256Hex("hello", "other-secret")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestHMACSHA512HexLengthAndSHA256Base64NonEmpty(t *testing.T) {
	hexSig := HMACSHA512Hex("payload", "secret")
	assert.Len(t, hexSig, 128)
	b64 := HMACSHA256Base64("payload", "secret")
	assert.NotEmpty(t, b64)
}

func TestMD5UpperHex(t *testing.T) {
	assert.Equal(t, "5D41402ABC4B2A76B9719D911017C592", MD5UpperHex("hello"))
}

func TestSHA256Hex(t *testing.T) {
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", SHA256Hex("hello"))
}

func TestKrakenSignIsDeterministic(t *testing.T) {
	secret := "bm9ucmFuZG9tc2VjcmV0" // base64("nonrandomsecret")
	sig1, err := KrakenSign("/0/private/AddOrder", "1700000000000000", "nonce=1700000000000000", secret)
	require.NoError(t, err)
	sig2, err := KrakenSign("/0/private/AddOrder", "1700000000000000", "nonce=1700000000000000", secret)
	require.NoError(t, err)
	assert.Equal(t, sig1, sig2)
	assert.NotEmpty(t, sig1)
}

func TestSignES256JWTRoundTrips(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalECPrivateKey(priv)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})

	parsed, err := ParseECPrivateKeyPEM(string(pemKey))
	require.NoError(t, err)

	token, err := SignES256JWT("my-api-key", parsed, "coinbase-cloud", "GET api.coinbase.com/api/v3/brokerage/accounts")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsedToken, err := jwt.ParseWithClaims(token, &ES256Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return &parsed.PublicKey, nil
	})
	require.NoError(t, err)
	claims := parsedToken.Claims.(*ES256Claims)
	assert.Equal(t, "my-api-key", claims.Subject)
	assert.Equal(t, "GET api.coinbase.com/api/v3/brokerage/accounts", claims.URI)
	assert.Equal(t, "my-api-key", parsedToken.Header["kid"])
	assert.NotEmpty(t, parsedToken.Header["nonce"])
}
