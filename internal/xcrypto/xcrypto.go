// Package xcrypto implements the pure cryptographic primitives of spec.md
// §4.2: HMAC-SHA256/512 (hex and base64), SHA-256/512 hex, uppercase MD5
// hex, the Kraken two-step signature, and an ES256 JWT signer. All of it is
// built on stdlib crypto/* — the teacher and the rest of the retrieved pack
// have no third-party wrapper for plain HMAC/SHA/MD5 signing, so there is
// nothing to adopt here (see DESIGN.md).
package xcrypto

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"hash"
)

// HMACSHA256Hex returns the lowercase hex HMAC-SHA256 of payload under secret.
func HMACSHA256Hex(payload, secret string) string {
	return hex.EncodeToString(hmacSum(sha256.New, payload, secret))
}

// HMACSHA256Base64 returns the standard-base64 HMAC-SHA256 of payload under secret.
func HMACSHA256Base64(payload, secret string) string {
	return base64.StdEncoding.EncodeToString(hmacSum(sha256.New, payload, secret))
}

// HMACSHA512Hex returns the lowercase hex HMAC-SHA512 of payload under secret.
func HMACSHA512Hex(payload, secret string) string {
	return hex.EncodeToString(hmacSum(sha512.New, payload, secret))
}

// HMACSHA512BytesBase64 returns the standard-base64 HMAC-SHA512 of a raw
// payload under a raw secret (both already []byte — used by the Kraken
// signer, whose secret is base64-decoded first).
func HMACSHA512BytesBase64(payload, secret []byte) string {
	h := hmac.New(sha512.New, secret)
	h.Write(payload)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func hmacSum(newHash func() hash.Hash, payload, secret string) []byte {
	h := hmac.New(newHash, []byte(secret))
	h.Write([]byte(payload))
	return h.Sum(nil)
}

// SHA256Hex returns the lowercase hex SHA-256 of payload.
func SHA256Hex(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// SHA256Bytes returns the raw SHA-256 digest of payload (used as the inner
// step of the Kraken signature).
func SHA256Bytes(payload []byte) []byte {
	sum := sha256.Sum256(payload)
	return sum[:]
}

// SHA512Hex returns the lowercase hex SHA-512 of payload.
func SHA512Hex(payload string) string {
	sum := sha512.Sum512([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// MD5UpperHex returns the uppercase hex MD5 of payload (LBank pre-signature step).
func MD5UpperHex(payload string) string {
	sum := md5.Sum([]byte(payload))
	return hexUpper(sum[:])
}

func hexUpper(b []byte) string {
	s := hex.EncodeToString(b)
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// KrakenSign implements spec.md §4.2's Kraken two-step signature:
// base64(HMAC-SHA512(secretBytes, pathBytes ‖ SHA256(nonce ‖ body)_bytes)).
// secretB64 is base64-decoded before use as the HMAC key.
func KrakenSign(path, nonce, body, secretB64 string) (string, error) {
	secretBytes, err := base64.StdEncoding.DecodeString(secretB64)
	if err != nil {
		return "", err
	}
	inner := SHA256Bytes([]byte(nonce + body))
	message := append([]byte(path), inner...)
	return HMACSHA512BytesBase64(message, secretBytes), nil
}
