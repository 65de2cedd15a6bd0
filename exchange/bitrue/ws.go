package bitrue

import (
	"bytes"
	"compress/flate"
	"encoding/json"
	"io"
	"sync"
	"time"

	"xchange/internal/coerce"
	"xchange/internal/wsconn"
	"xchange/pkg/unified"
)

type subMsg struct {
	Event  string `json:"event"`
	Params struct {
		Channel string `json:"channel"`
		CbId    string `json:"cb_id"`
	} `json:"params"`
}

// wsHub dispatches decompressed Bitrue WS frames to per-channel sinks,
// keyed by the "channel" field (spec.md §4.9's Bitrue dispatch-key row).
type wsHub struct {
	mu    sync.Mutex
	sinks map[string]func(coerce.M)
}

func newWSHub() *wsHub { return &wsHub{sinks: make(map[string]func(coerce.M))} }

func (h *wsHub) register(channel string, fn func(coerce.M)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks[channel] = fn
}

// dispatch implements spec.md's gzip/zlib sync-flush decompression
// requirement: Bitrue sends raw DEFLATE frames that end at a sync-flush
// point with no final block. inflateSyncFlush appends the empty stored-block
// marker (restoring it when the venue strips it) and treats the unexpected
// EOF that follows the flushed data as the end of the frame.
func (h *wsHub) dispatch(conn *wsconn.Conn) wsconn.Handler {
	return func(raw []byte) {
		plain, err := inflateSyncFlush(raw)
		if err != nil {
			return
		}
		var m coerce.M
		if err := json.Unmarshal(plain, &m); err != nil {
			return
		}
		if ping, ok := m["ping"]; ok {
			pong, _ := json.Marshal(map[string]any{"pong": ping})
			_ = conn.SendText(string(pong))
			return
		}
		channel := coerce.Str(m, "channel", "")
		if channel == "" {
			return
		}
		h.mu.Lock()
		fn, ok := h.sinks[channel]
		h.mu.Unlock()
		if ok {
			fn(m)
		}
	}
}

func inflateSyncFlush(raw []byte) ([]byte, error) {
	r := flate.NewReader(io.MultiReader(bytes.NewReader(raw), bytes.NewReader([]byte{0x00, 0x00, 0xff, 0xff})))
	defer r.Close()
	plain, err := io.ReadAll(r)
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return plain, err
}

func (d *Driver) wsConn() (*wsconn.Conn, *wsHub, error) {
	hub := newWSHub()
	var conn *wsconn.Conn
	var err error
	conn, err = d.WSConn(wsBaseURL, func() *wsconn.Conn {
		c := wsconn.New("bitrue", wsBaseURL, nil, wsconn.WithHeartbeat(20*time.Second, func() []byte {
			p, _ := json.Marshal(map[string]any{"ping": time.Now().UnixMilli()})
			return p
		}))
		return c
	})
	if err != nil {
		return nil, nil, err
	}
	// Bitrue's handler needs the conn itself (to echo pongs), so it is
	// installed after construction rather than threaded through New.
	conn.SetHandler(hub.dispatch(conn))
	return conn, hub, nil
}

func (d *Driver) WatchTicker(symbol string, sink func(unified.Ticker)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	id := toVenueId(symbol)
	channel := "market_" + id + "_ticker"
	hub.register(channel, func(m coerce.M) {
		sink(parseTicker(symbol, coerce.Sub(m, "tick")))
	})
	return conn.Subscribe(subMsgFor(channel))
}

func (d *Driver) WatchTrades(symbol string, sink func(unified.Trade)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	id := toVenueId(symbol)
	channel := "market_" + id + "_trade_ticker"
	hub.register(channel, func(m coerce.M) {
		tick := coerce.Sub(m, "tick")
		for _, row := range asSlice(tick["data"]) {
			sink(parseTrade(symbol, coerce.M(asMap(row))))
		}
	})
	return conn.Subscribe(subMsgFor(channel))
}

// WatchOrderBook subscribes to market_{pair}_depth_step0, per spec.md §8
// scenario 5 (the wire field is "buys", not "bids").
func (d *Driver) WatchOrderBook(symbol string, sink func(unified.OrderBook)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	id := toVenueId(symbol)
	channel := "market_" + id + "_depth_step0"
	hub.register(channel, func(m coerce.M) {
		sink(parseOrderBookTick(symbol, coerce.Sub(m, "tick")))
	})
	return conn.Subscribe(subMsgFor(channel))
}

func subMsgFor(channel string) subMsg {
	var s subMsg
	s.Event = "sub"
	s.Params.Channel = channel
	s.Params.CbId = channel
	return s
}
