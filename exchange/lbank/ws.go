package lbank

import (
	"encoding/json"
	"sync"

	"xchange/internal/coerce"
	"xchange/internal/wsconn"
	"xchange/pkg/unified"
)

type subscribeMsg struct {
	Action    string `json:"action"`
	Subscribe string `json:"subscribe"`
	Pair      string `json:"pair"`
	Depth     string `json:"depth,omitempty"`
	KLine     string `json:"kline,omitempty"`
}

// wsHub dispatches LBank WS frames by the (type, pair) pair spec.md §163
// names as the dispatch key: the server echoes back the subscribed channel
// name under "type" alongside the market under "pair".
type wsHub struct {
	mu    sync.Mutex
	sinks map[string]func(coerce.M)
}

func newWSHub() *wsHub { return &wsHub{sinks: make(map[string]func(coerce.M))} }

func (h *wsHub) register(kind, pair string, fn func(coerce.M)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks[kind+"|"+pair] = fn
}

// dispatch echoes LBank's {action:"ping", ping:uuid} server pings back
// verbatim (spec.md line 149/163), unlike Bitrue/Pionex which reshape their
// pong payloads — LBank's server expects the exact same bytes back.
func (h *wsHub) dispatch(conn *wsconn.Conn) wsconn.Handler {
	return func(raw []byte) {
		var m coerce.M
		if err := json.Unmarshal(raw, &m); err != nil {
			return
		}
		if coerce.Str(m, "action", "") == "ping" {
			_ = conn.SendText(string(raw))
			return
		}
		kind := coerce.Str(m, "type", "")
		pair := coerce.Str(m, "pair", "")
		if kind == "" || pair == "" {
			return
		}
		h.mu.Lock()
		fn, ok := h.sinks[kind+"|"+pair]
		h.mu.Unlock()
		if ok {
			fn(m)
		}
	}
}

func (d *Driver) wsConn() (*wsconn.Conn, *wsHub, error) {
	hub := newWSHub()
	conn, err := d.WSConn(wsURL, func() *wsconn.Conn {
		return wsconn.New("lbank", wsURL, nil)
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
	hub.register("tick", id, func(m coerce.M) {
		sink(parseTicker(symbol, coerce.Sub(m, "tick")))
	})
	return conn.Subscribe(subscribeMsg{Action: "subscribe", Subscribe: "tick", Pair: id})
}

func (d *Driver) WatchTrades(symbol string, sink func(unified.Trade)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	id := toVenueId(symbol)
	hub.register("trade", id, func(m coerce.M) {
		sink(parseTrade(symbol, coerce.Sub(m, "trade")))
	})
	return conn.Subscribe(subscribeMsg{Action: "subscribe", Subscribe: "trade", Pair: id})
}

func (d *Driver) WatchOrderBook(symbol string, sink func(unified.OrderBook)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	id := toVenueId(symbol)
	hub.register("depth", id, func(m coerce.M) {
		sink(parseOrderBook(symbol, coerce.Sub(m, "depth")))
	})
	return conn.Subscribe(subscribeMsg{Action: "subscribe", Subscribe: "depth", Pair: id, Depth: "100"})
}
