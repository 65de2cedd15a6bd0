// Package exchange is the base runtime every venue driver embeds: the
// request orchestrator, the rate limiter, the WebSocket transport table,
// and the markets cache. It generalizes the teacher's
// market.APIClient (market/api_client.go) — a single hardcoded-venue HTTP
// wrapper with a proxy-aware *http.Client — into a composed object a
// venue-specific driver type wires its signer/unwrapper/error-mapper hooks
// into (spec.md §9: "a composed object, not a base class with protected
// methods").
package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"xchange/internal/coerce"
	"xchange/internal/ratelimit"
	"xchange/internal/wsconn"
	"xchange/pkg/unified"
)

// Driver is embedded by every venue-specific type (exchange/bitstamp.Driver,
// exchange/kraken.Driver, ...), which supplies the hook fields and calls Do
// from its own public methods.
type Driver struct {
	Venue   string
	BaseURL string

	Credentials  Credentials
	Capabilities Capability

	Timeframes  map[string]string
	DefaultFees unified.TradingFee

	Sign            Signer
	Unwrap          Unwrapper
	MapHTTPError    ErrorMapper
	OnHeaders       HeaderHook
	OverrideRequest RequestOverride
	Mode            ContentMode

	MarketsCache

	httpClient *http.Client
	limiter    *ratelimit.Limiter

	wsMu      sync.Mutex
	wsConns   map[string]*wsconn.Conn
	wsClosing bool

	bootstrapMu     sync.Mutex
	bootstrapTokens map[string]string
}

// NewDriver builds a base driver. ratePerSecond/burst parameterize the
// weight bucket (spec.md §4.3); a venue with no documented weight scheme can
// pass a high ratePerSecond/burst pair to make the limiter effectively a
// no-op while still going through the same code path.
func NewDriver(venue, baseURL string, creds Credentials, ratePerSecond float64, burst int) *Driver {
	d := &Driver{
		Venue:           venue,
		BaseURL:         baseURL,
		Credentials:     creds,
		httpClient:      &http.Client{Timeout: creds.timeoutOrDefault()},
		limiter:         ratelimit.NewLimiter(venue, ratePerSecond, burst),
		wsConns:         make(map[string]*wsconn.Conn),
		bootstrapTokens: make(map[string]string),
	}
	if proxy := proxyFromEnv(); proxy != nil {
		d.httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxy)}
		log.Info().Str("venue", venue).Str("proxy", proxy.Host).Msg("using proxy from environment")
	}
	return d
}

// proxyFromEnv mirrors the teacher's getProxyFromEnv (market/api_client.go):
// HTTPS_PROXY takes priority since venue APIs are all TLS.
func proxyFromEnv() *url.URL {
	for _, key := range []string{"HTTPS_PROXY", "https_proxy", "HTTP_PROXY", "http_proxy"} {
		if v := os.Getenv(key); v != "" {
			if u, err := url.Parse(v); err == nil {
				return u
			}
			log.Warn().Str("env", key).Msg("malformed proxy URL, ignoring")
		}
	}
	return nil
}

// Do implements the request orchestrator of spec.md §4.5.
func (d *Driver) Do(ctx context.Context, method, path string, params map[string]string, signed bool, weight int) ([]byte, error) {
	if d.Credentials.EnableRateLimit {
		if err := d.limiter.Consume(ctx, weight); err != nil {
			return nil, unified.NewTransportError(unified.RequestTimeout, d.Venue, err)
		}
	}

	var signResult SignResult
	if signed {
		if d.Sign == nil {
			return nil, unified.NewVenueError(unified.FeatureUnsupported, d.Venue, "", "signing not configured")
		}
		var err error
		signResult, err = d.Sign(path, method, params)
		if err != nil {
			return nil, unified.NewVenueError(unified.AuthenticationError, d.Venue, "", err.Error())
		}
	} else {
		signResult = SignResult{Params: params}
	}

	req, err := d.composeRequest(ctx, method, path, params, signResult)
	if err != nil {
		return nil, unified.NewVenueError(unified.BadRequest, d.Venue, "", err.Error())
	}

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, unified.NewTransportError(unified.RequestTimeout, d.Venue, ctx.Err())
		}
		return nil, unified.NewTransportError(unified.NetworkError, d.Venue, err)
	}
	defer resp.Body.Close()

	if d.OnHeaders != nil {
		d.OnHeaders(resp.Header)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unified.NewTransportError(unified.NetworkError, d.Venue, err)
	}

	status := fmt.Sprintf("%d", resp.StatusCode)
	log.Debug().Str("venue", d.Venue).Str("method", method).Str("path", path).
		Str("status", status).Dur("elapsed", time.Since(start)).Msg("venue request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if d.MapHTTPError != nil {
			return nil, d.MapHTTPError(resp.StatusCode, body)
		}
		return nil, unified.NewHTTPError(unified.KindFromHTTPStatus(resp.StatusCode), d.Venue, resp.StatusCode, string(body))
	}

	if d.Unwrap != nil {
		return d.Unwrap(body)
	}
	return body, nil
}

func (d *Driver) composeRequest(ctx context.Context, method, path string, params map[string]string, signed SignResult) (*http.Request, error) {
	finalParams := signed.Params
	if finalParams == nil {
		finalParams = params
	}

	if d.OverrideRequest != nil {
		req, err := d.OverrideRequest(RequestContext{
			Method:  method,
			BaseURL: d.BaseURL,
			Path:    path,
			Params:  finalParams,
			Signed:  signed,
			Mode:    d.Mode,
		})
		if err != nil {
			return nil, err
		}
		if req != nil {
			req = req.WithContext(ctx)
			d.applyHeaders(req, signed)
			return req, nil
		}
	}

	target := d.BaseURL + path
	if signed.PathAndQuery != "" {
		target = d.BaseURL + signed.PathAndQuery
	}

	var req *http.Request
	var err error

	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodDelete:
		if signed.PathAndQuery == "" && len(finalParams) > 0 {
			target = target + "?" + coerce.EncodedQuery(finalParams)
		}
		req, err = http.NewRequestWithContext(ctx, method, target, nil)
	default: // POST, PUT
		body := signed.Body
		contentType := "application/x-www-form-urlencoded"
		if body == nil {
			switch d.Mode {
			case ContentModeJSON:
				body, err = json.Marshal(stringMapToAny(finalParams))
				contentType = "application/json"
			default:
				body = []byte(coerce.EncodedQuery(finalParams))
			}
			if err != nil {
				return nil, err
			}
		} else if d.Mode == ContentModeJSON {
			contentType = "application/json"
		}
		req, err = http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
		if err == nil {
			req.Header.Set("Content-Type", contentType)
		}
	}
	if err != nil {
		return nil, err
	}

	d.applyHeaders(req, signed)
	return req, nil
}

func (d *Driver) applyHeaders(req *http.Request, signed SignResult) {
	for k, v := range signed.Headers {
		req.Header.Set(k, v)
	}
}

func stringMapToAny(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ReconcileRateLimit feeds a venue-reported used-weight header back into the
// bucket (spec.md §4.3's updateFromHeader path).
func (d *Driver) ReconcileRateLimit(usedWeight, windowLimit int) {
	d.limiter.ReconcileUsedWeight(usedWeight, windowLimit)
}

// RetryAfter imposes a cooldown on the rate limiter, used by a driver's
// header hook or error mapper when a venue returns 429/418.
func (d *Driver) RetryAfter(dur time.Duration) {
	d.limiter.SetRetryAfter(dur)
}

// WSConn returns the transport for url, creating it (via factory) on first
// use. Returns an error if CloseAllWS has already begun, per spec.md §5:
// "no subscription may be added after close-all begins".
func (d *Driver) WSConn(url string, factory func() *wsconn.Conn) (*wsconn.Conn, error) {
	d.wsMu.Lock()
	defer d.wsMu.Unlock()

	if d.wsClosing {
		return nil, unified.NewVenueError(unified.ExchangeNotAvailable, d.Venue, "", "driver is closing websocket transports")
	}
	if conn, ok := d.wsConns[url]; ok {
		return conn, nil
	}
	conn := factory()
	d.wsConns[url] = conn
	return conn, nil
}

// CloseAllWS tears down every open transport synchronously, per spec.md §5.
func (d *Driver) CloseAllWS() error {
	d.wsMu.Lock()
	d.wsClosing = true
	conns := d.wsConns
	d.wsConns = make(map[string]*wsconn.Conn)
	d.wsMu.Unlock()
	d.DiscardBootstrapTokens()

	var firstErr error
	for _, c := range conns {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// BootstrapToken returns a cached bootstrap token, or calls fetch to obtain
// and cache a fresh one (KuCoin public/private, Kraken private sessions).
func (d *Driver) BootstrapToken(key string, fetch func() (string, error)) (string, error) {
	d.bootstrapMu.Lock()
	defer d.bootstrapMu.Unlock()

	if tok, ok := d.bootstrapTokens[key]; ok {
		return tok, nil
	}
	tok, err := fetch()
	if err != nil {
		return "", err
	}
	d.bootstrapTokens[key] = tok
	return tok, nil
}

// DiscardBootstrapTokens clears cached tokens, called when transports close.
func (d *Driver) DiscardBootstrapTokens() {
	d.bootstrapMu.Lock()
	defer d.bootstrapMu.Unlock()
	d.bootstrapTokens = make(map[string]string)
}
