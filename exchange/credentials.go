package exchange

import "time"

// Credentials holds the per-venue fields spec.md §6 requires. Secret's
// format is venue-dependent: a raw string for most venues, a base64-encoded
// string for Kraken, and a PEM-encoded EC P-256 private key for Coinbase.
// Every field here is write-once at driver construction (the caller builds
// a fresh Credentials for a fresh Driver; nothing in this library mutates
// it afterward).
type Credentials struct {
	APIKey     string
	Secret     string
	Passphrase string

	Timeout         time.Duration
	Verbose         bool
	EnableRateLimit bool
	RecvWindow      int64
}

// DefaultTimeout matches the teacher's flat 30s http.Client timeout
// (market/api_client.go's NewAPIClient).
const DefaultTimeout = 30 * time.Second

func (c Credentials) timeoutOrDefault() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
