package exchange

import "net/http"

// ContentMode selects how a POST body is encoded, since venues disagree
// (Binance-family wants form-encoding, Coinbase and KuCoin want JSON).
type ContentMode int

const (
	ContentModeForm ContentMode = iota
	ContentModeJSON
)

// SignResult is what a Signer hands back to the orchestrator: possibly
// rewritten params, extra headers, a raw body (used when a signer needs to
// control body bytes directly, e.g. Kraken's form-encoded nonce+body), and
// optionally a PathAndQuery that bypasses the orchestrator's own
// query-string composition — still appended to the driver's BaseURL, but
// verbatim rather than alphabetized/percent-encoded (Binance-family POSTs
// append "signature" to the raw query the signer itself signed; Pionex's
// GET signing string embeds the exact raw query it signed).
type SignResult struct {
	Params       map[string]string
	Headers      map[string]string
	Body         []byte
	PathAndQuery string
}

// Signer implements spec.md §4.4: pure apart from reading a clock and RNG.
// It never performs I/O.
type Signer func(path, method string, params map[string]string) (SignResult, error)

// Unwrapper peels a venue's response envelope (spec.md §4.6), returning the
// payload JSON on success or a unified error on a venue-reported failure
// embedded in an HTTP 200.
type Unwrapper func(body []byte) ([]byte, error)

// ErrorMapper turns a non-2xx HTTP response into a unified error, consulting
// the venue's own error-code table before falling back to the HTTP-status
// taxonomy of spec.md §7.
type ErrorMapper func(status int, body []byte) error

// HeaderHook observes response headers for rate-limit feedback (e.g.
// Binance's X-MBX-USED-WEIGHT).
type HeaderHook func(headers http.Header)

// RequestOverride gets full control of request composition (spec.md §4.5
// step 3) for dialects the generic orchestrator can't express, such as
// Pionex's DELETE-with-JSON-body. Returning a non-nil *http.Request
// bypasses the orchestrator's own URL/body composition entirely.
type RequestOverride func(ctx RequestContext) (*http.Request, error)

// RequestContext is what a RequestOverride needs to build its own request.
type RequestContext struct {
	Method  string
	BaseURL string
	Path    string
	Params  map[string]string
	Signed  SignResult
	Mode    ContentMode
}
