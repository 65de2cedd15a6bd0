package xcrypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ES256Claims mirrors the teacher's auth.Claims pattern (a struct embedding
// jwt.RegisteredClaims) but carries the claim set spec.md §4.2 requires for
// a venue bearer token: iss/sub/nbf/exp plus an optional uri claim.
type ES256Claims struct {
	URI string `json:"uri,omitempty"`
	jwt.RegisteredClaims
}

// ParseECPrivateKeyPEM parses a PEM-encoded EC P-256 private key (the
// Coinbase credential shape of spec.md §6).
func ParseECPrivateKeyPEM(pemKey string) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, fmt.Errorf("xcrypto: invalid PEM block")
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	// Some venues hand out PKCS8-wrapped EC keys.
	keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("xcrypto: parse EC private key: %w", err)
	}
	key, ok := keyAny.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("xcrypto: PKCS8 key is not ECDSA")
	}
	return key, nil
}

// SignES256JWT implements spec.md §4.2's ES256 JWT contract: header
// {alg:"ES256", typ:"JWT", kid, nonce:random-hex-16}, payload
// {iss, sub=apiKey, nbf=now, exp=now+120, uri?}, signature is the
// base64url-encoded IEEE P1363 ECDSA signature golang-jwt produces natively
// for SigningMethodES256.
func SignES256JWT(apiKey string, privateKey *ecdsa.PrivateKey, issuer, uri string) (string, error) {
	nonce, err := RandomHex(16)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := ES256Claims{
		URI: uri,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   apiKey,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(120 * time.Second)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = apiKey
	token.Header["nonce"] = nonce
	return token.SignedString(privateKey)
}

// RandomHex returns n random bytes encoded as hex, using a cryptographically
// strong RNG per spec.md §4.2.
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
