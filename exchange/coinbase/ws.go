package coinbase

import (
	"encoding/json"
	"sync"

	"xchange/internal/coerce"
	"xchange/internal/wsconn"
	"xchange/pkg/unified"
)

type subscribeMsg struct {
	Type       string   `json:"type"`
	Channel    string   `json:"channel"`
	ProductIds []string `json:"product_ids"`
	JWT        string   `json:"jwt,omitempty"`
}

type inboundMessage struct {
	Channel string            `json:"channel"`
	Events  []json.RawMessage `json:"events"`
}

// wsHub dispatches the events-array wrapper by channel, per spec.md §4.9's
// Coinbase Advanced row.
type wsHub struct {
	mu    sync.Mutex
	sinks map[string]func(json.RawMessage)
}

func newWSHub() *wsHub { return &wsHub{sinks: make(map[string]func(json.RawMessage))} }

func (h *wsHub) register(channel string, fn func(json.RawMessage)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks[channel] = fn
}

func (h *wsHub) dispatch(message []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(message, &msg); err != nil || msg.Channel == "" {
		return
	}
	h.mu.Lock()
	fn, ok := h.sinks[msg.Channel]
	h.mu.Unlock()
	if !ok {
		return
	}
	for _, ev := range msg.Events {
		fn(ev)
	}
}

func (d *Driver) wsConn() (*wsconn.Conn, *wsHub, error) {
	hub := newWSHub()
	conn, err := d.WSConn(wsURL, func() *wsconn.Conn {
		return wsconn.New("coinbase", wsURL, hub.dispatch)
	})
	return conn, hub, err
}

// jwtForSubscribe re-signs a fresh short-lived JWT per subscribe, per
// spec.md §4.9's "JWT attached on every subscribe" private-channel row.
func (d *Driver) jwtForSubscribe() (string, error) {
	result, err := d.sign("", "GET", nil)
	if err != nil {
		return "", err
	}
	auth := result.Headers["Authorization"]
	if len(auth) > len("Bearer ") {
		return auth[len("Bearer "):], nil
	}
	return "", nil
}

func (d *Driver) WatchTicker(symbol string, sink func(unified.Ticker)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	hub.register("ticker", func(raw json.RawMessage) {
		var ev coerce.M
		if err := json.Unmarshal(raw, &ev); err != nil {
			return
		}
		for _, row := range asSlice(ev["tickers"]) {
			m := coerce.M(asMap(row))
			if d.fromVenueId(coerce.Str(m, "product_id", "")) != symbol {
				continue
			}
			t := unified.Ticker{
				Symbol: symbol,
				Last:   coerce.Float(m, "price", 0),
				High:   coerce.Float(m, "high_24_h", 0),
				Low:    coerce.Float(m, "low_24_h", 0),
				Volume: coerce.Float(m, "volume_24_h", 0),
			}
			t.FillChangeFields()
			sink(t)
		}
	})
	return conn.Subscribe(subscribeMsg{Type: "subscribe", Channel: "ticker", ProductIds: []string{toVenueId(symbol)}})
}

func (d *Driver) WatchTrades(symbol string, sink func(unified.Trade)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	hub.register("market_trades", func(raw json.RawMessage) {
		var ev coerce.M
		if err := json.Unmarshal(raw, &ev); err != nil {
			return
		}
		for _, row := range asSlice(ev["trades"]) {
			m := coerce.M(asMap(row))
			if d.fromVenueId(coerce.Str(m, "product_id", "")) != symbol {
				continue
			}
			sink(parseTrade(symbol, m))
		}
	})
	return conn.Subscribe(subscribeMsg{Type: "subscribe", Channel: "market_trades", ProductIds: []string{toVenueId(symbol)}})
}

func (d *Driver) WatchOrderBook(symbol string, sink func(unified.OrderBook)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	hub.register("level2", func(raw json.RawMessage) {
		var ev coerce.M
		if err := json.Unmarshal(raw, &ev); err != nil {
			return
		}
		if d.fromVenueId(coerce.Str(ev, "product_id", "")) != symbol {
			return
		}
		var bids, asks []unified.PriceLevel
		for _, row := range asSlice(ev["updates"]) {
			m := coerce.M(asMap(row))
			level := unified.PriceLevel{Price: coerce.Float(m, "price_level", 0), Size: coerce.Float(m, "new_quantity", 0)}
			if coerce.Lower(m, "side", "") == "bid" {
				bids = append(bids, level)
			} else {
				asks = append(asks, level)
			}
		}
		sink(unified.OrderBook{Symbol: symbol, Bids: bids, Asks: asks})
	})
	return conn.Subscribe(subscribeMsg{Type: "subscribe", Channel: "level2", ProductIds: []string{toVenueId(symbol)}})
}

// WatchOrders subscribes the "user" channel, attaching a fresh JWT to the
// subscribe frame itself rather than a cached bootstrap token, per spec.md
// §4.9's Coinbase private-channel row.
func (d *Driver) WatchOrders(sink func(unified.Order)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	jwt, err := d.jwtForSubscribe()
	if err != nil {
		return err
	}
	hub.register("user", func(raw json.RawMessage) {
		var ev coerce.M
		if err := json.Unmarshal(raw, &ev); err != nil {
			return
		}
		for _, row := range asSlice(ev["orders"]) {
			sink(d.parseOrder(coerce.M(asMap(row))))
		}
	})
	return conn.Subscribe(subscribeMsg{Type: "subscribe", Channel: "user", JWT: jwt})
}
