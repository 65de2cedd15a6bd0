// Package wsconn is the venue-agnostic WebSocket transport every streaming
// driver builds on: connect, replay subscriptions, heartbeat, and
// reconnect-with-backoff. It generalizes the teacher's market.WSClient
// (market/websocket_client.go), which dialed exactly one hardcoded stream
// URL and kept a stream-name-to-channel map; this version is parameterized
// per venue URL, replays subscriptions in registration order after a
// reconnect (the teacher's version simply resubscribed nothing), and backs
// off with jitter instead of a fixed 3s retry.
package wsconn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"xchange/internal/ratelimit"
	"xchange/internal/xmetrics"
)

// ErrClosed is returned by Send/Subscribe once Close has been called.
var ErrClosed = errors.New("wsconn: connection closed")

// Handler receives every raw frame read off the socket. Venue packages
// decode it according to their own wire dialect.
type Handler func(message []byte)

// Conn is a single logical WebSocket connection to one venue endpoint.
// It is safe for concurrent use.
type Conn struct {
	venue string
	url   string

	dialer  websocket.Dialer
	onOpen  func(*Conn) error // runs after every (re)connect, before replay
	handler Handler

	heartbeatInterval time.Duration
	heartbeatPayload  func() []byte // app-level ping frame; nil uses protocol ping
	pongWait          time.Duration

	backoff *ratelimit.Backoff
	metrics *xmetrics.Recorder

	mu      sync.Mutex
	conn    *websocket.Conn
	subs    []json.RawMessage
	closed  bool
	lastPon time.Time

	doneOnce sync.Once
	done     chan struct{}
}

// Option configures a Conn at construction time.
type Option func(*Conn)

// WithOnOpen registers a hook invoked immediately after every successful
// dial, before buffered subscriptions are replayed.
func WithOnOpen(fn func(*Conn) error) Option {
	return func(c *Conn) { c.onOpen = fn }
}

// WithHeartbeat enables an application-level ping frame sent every interval.
// If payload is nil, a protocol-level ping control frame is sent instead.
func WithHeartbeat(interval time.Duration, payload func() []byte) Option {
	return func(c *Conn) {
		c.heartbeatInterval = interval
		c.heartbeatPayload = payload
	}
}

// WithPongWait sets how long to tolerate silence before declaring the
// connection dead and forcing a reconnect.
func WithPongWait(d time.Duration) Option {
	return func(c *Conn) { c.pongWait = d }
}

// New builds a Conn for venue talking to url, dispatching every frame to
// handler. The connection is not dialed until Connect is called.
func New(venue, url string, handler Handler, opts ...Option) *Conn {
	c := &Conn{
		venue:    venue,
		url:      url,
		handler:  handler,
		dialer:   websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		pongWait: 60 * time.Second,
		backoff:  ratelimit.DefaultBackoff(),
		metrics:  xmetrics.NewRecorder(venue),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect dials the endpoint, runs the onOpen hook if set, replays any
// previously registered subscriptions, and starts the read loop. It does
// not itself reconnect on failure; call Run for that.
func (c *Conn) Connect(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.metrics.RecordWSConnect(false)
		return fmt.Errorf("wsconn: dial %s: %w", c.venue, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.lastPon = time.Now()
	subs := append([]json.RawMessage(nil), c.subs...)
	c.mu.Unlock()

	c.metrics.RecordWSConnect(true)
	c.backoff.Reset()

	conn.SetPongHandler(func(string) error {
		c.mu.Lock()
		c.lastPon = time.Now()
		c.mu.Unlock()
		return nil
	})

	if c.onOpen != nil {
		if err := c.onOpen(c); err != nil {
			conn.Close()
			return fmt.Errorf("wsconn: onOpen %s: %w", c.venue, err)
		}
	}

	for _, raw := range subs {
		if err := c.writeRaw(raw); err != nil {
			return fmt.Errorf("wsconn: replay subscription: %w", err)
		}
	}

	return nil
}

// Run connects and blocks, reconnecting with backoff+jitter until ctx is
// canceled or Close is called. This is the loop streaming drivers run in a
// goroutine.
func (c *Conn) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		if err := c.Connect(ctx); err != nil {
			log.Warn().Err(err).Str("venue", c.venue).Msg("ws connect failed")
			if !c.sleepBackoff(ctx) {
				return
			}
			continue
		}

		if c.heartbeatInterval > 0 {
			go c.heartbeatLoop(ctx)
		}

		err := c.readLoop(ctx)
		c.metrics.RecordWSDisconnect()

		if c.isClosed() {
			return
		}
		if err != nil {
			log.Warn().Err(err).Str("venue", c.venue).Msg("ws read loop ended")
		}
		c.metrics.RecordWSReconnect()
		if !c.sleepBackoff(ctx) {
			return
		}
	}
}

func (c *Conn) sleepBackoff(ctx context.Context) bool {
	delay := c.backoff.NextDelay()
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-c.done:
		return false
	case <-timer.C:
		return true
	}
}

func (c *Conn) readLoop(ctx context.Context) error {
	for {
		c.mu.Lock()
		conn := c.conn
		handler := c.handler
		c.mu.Unlock()
		if conn == nil {
			return errors.New("wsconn: no connection")
		}

		if c.pongWait > 0 {
			conn.SetReadDeadline(time.Now().Add(c.pongWait))
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		c.metrics.RecordWSMessage()
		if handler != nil {
			handler(message)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-c.done:
			return nil
		default:
		}
	}
}

func (c *Conn) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(c.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			conn := c.conn
			c.mu.Unlock()
			if conn == nil {
				return
			}
			if c.heartbeatPayload != nil {
				if err := conn.WriteMessage(websocket.TextMessage, c.heartbeatPayload()); err != nil {
					return
				}
			} else if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SetHandler rebinds the frame handler after construction — used by venues
// whose handler needs a reference to the Conn itself (Bitrue's ping/pong
// echo, which writes back through the same connection it reads from).
func (c *Conn) SetHandler(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
}

// Subscribe marshals msg to JSON, remembers it for replay on reconnect, and
// sends it immediately if a connection is live.
func (c *Conn) Subscribe(msg any) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("wsconn: marshal subscription: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.subs = append(c.subs, raw)
	live := c.conn != nil
	c.mu.Unlock()

	if !live {
		return nil
	}
	return c.writeRaw(raw)
}

// Send writes a one-off message without registering it for replay (used for
// unsubscribe requests and other non-idempotent frames).
func (c *Conn) Send(msg any) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("wsconn: marshal message: %w", err)
	}
	return c.writeRaw(raw)
}

// SendText writes a raw text frame verbatim — used by dialects (Bittrex's
// SignalR hub invocation) that are not plain JSON objects.
func (c *Conn) SendText(payload string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New("wsconn: not connected")
	}
	return conn.WriteMessage(websocket.TextMessage, []byte(payload))
}

func (c *Conn) writeRaw(raw json.RawMessage) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New("wsconn: not connected")
	}
	return conn.WriteMessage(websocket.TextMessage, raw)
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close marks the connection as intentionally closed and tears down the
// socket. Run's reconnect loop observes the closed flag and exits instead
// of reconnecting.
func (c *Conn) Close() error {
	c.mu.Lock()
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	c.doneOnce.Do(func() { close(c.done) })

	if conn != nil {
		return conn.Close()
	}
	return nil
}
