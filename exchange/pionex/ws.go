package pionex

import (
	"encoding/json"
	"sync"

	"xchange/internal/coerce"
	"xchange/internal/wsconn"
	"xchange/pkg/unified"
)

type subscribeMsg struct {
	Op     string `json:"op"`
	Topic  string `json:"topic"`
	Symbol string `json:"symbol,omitempty"`
}

// wsHub dispatches Pionex frames keyed by topic+symbol, per spec.md §4.9's
// Pionex row; SUBSCRIBED confirmations are dropped, and server-initiated
// PING frames are answered with {"op":"PONG",...}.
type wsHub struct {
	mu    sync.Mutex
	sinks map[string]func(coerce.M)
}

func newWSHub() *wsHub { return &wsHub{sinks: make(map[string]func(coerce.M))} }

func (h *wsHub) register(key string, fn func(coerce.M)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks[key] = fn
}

func (h *wsHub) dispatch(conn *wsconn.Conn) wsconn.Handler {
	return func(raw []byte) {
		var m coerce.M
		if err := json.Unmarshal(raw, &m); err != nil {
			return
		}
		op := coerce.Str(m, "op", "")
		switch op {
		case "PING":
			pong, _ := json.Marshal(map[string]any{"op": "PONG", "timestamp": coerce.Int(m, "timestamp", 0)})
			_ = conn.SendText(string(pong))
			return
		case "SUBSCRIBED":
			return
		}
		topic := coerce.Str(m, "topic", "")
		symbol := coerce.Str(m, "symbol", "")
		if topic == "" {
			return
		}
		h.mu.Lock()
		fn, ok := h.sinks[topic+symbol]
		h.mu.Unlock()
		if ok {
			fn(m)
		}
	}
}

func (d *Driver) wsConn() (*wsconn.Conn, *wsHub, error) {
	hub := newWSHub()
	conn, err := d.WSConn(wsURL, func() *wsconn.Conn {
		return wsconn.New("pionex", wsURL, nil)
	})
	if err != nil {
		return nil, nil, err
	}
	conn.SetHandler(hub.dispatch(conn))
	return conn, hub, nil
}

func (d *Driver) WatchTicker(symbol string, sink func(unified.Ticker)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	id := toVenueId(symbol)
	hub.register("TICKER"+id, func(m coerce.M) {
		sink(parseTicker(symbol, coerce.Sub(m, "data")))
	})
	return conn.Subscribe(subscribeMsg{Op: "SUBSCRIBE", Topic: "TICKER", Symbol: id})
}

func (d *Driver) WatchTrades(symbol string, sink func(unified.Trade)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	id := toVenueId(symbol)
	hub.register("TRADE"+id, func(m coerce.M) {
		for _, row := range asSlice(coerce.Sub(m, "data")["trades"]) {
			sink(parseTrade(symbol, coerce.M(asMap(row))))
		}
	})
	return conn.Subscribe(subscribeMsg{Op: "SUBSCRIBE", Topic: "TRADE", Symbol: id})
}

func (d *Driver) WatchOrderBook(symbol string, sink func(unified.OrderBook)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	id := toVenueId(symbol)
	hub.register("DEPTH"+id, func(m coerce.M) {
		sink(parseOrderBook(symbol, coerce.Sub(m, "data")))
	})
	return conn.Subscribe(subscribeMsg{Op: "SUBSCRIBE", Topic: "DEPTH", Symbol: id})
}
