package bitstamp

import (
	"encoding/json"
	"sync"

	"xchange/internal/coerce"
	"xchange/internal/wsconn"
	"xchange/pkg/unified"
)

type subscribeMsg struct {
	Event string          `json:"event"`
	Data  map[string]string `json:"data"`
}

type inboundEvent struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// wsHub dispatches decoded Bitstamp WS frames to per-channel sinks, keyed by
// the channel name (spec.md §4.9's "channel field on incoming data").
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
	var ev inboundEvent
	if err := json.Unmarshal(message, &ev); err != nil {
		return
	}
	if ev.Event == "bts:subscription_succeeded" || ev.Channel == "" {
		return
	}
	h.mu.Lock()
	fn, ok := h.sinks[ev.Channel]
	h.mu.Unlock()
	if ok {
		fn(ev.Data)
	}
}

func (d *Driver) wsConn() (*wsconn.Conn, *wsHub, error) {
	hub := newWSHub()
	conn, err := d.WSConn(wsURL, func() *wsconn.Conn {
		return wsconn.New("bitstamp", wsURL, hub.dispatch)
	})
	return conn, hub, err
}

// WatchTicker subscribes to "live_trades_{pair}" and forwards ticker-shaped
// updates built from the trade stream (Bitstamp has no dedicated ticker
// channel; live trades double as the nearest live price feed).
func (d *Driver) WatchTicker(symbol string, sink func(unified.Ticker)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	id := toVenueId(symbol)
	channel := "live_trades_" + id

	hub.register(channel, func(raw json.RawMessage) {
		var trade map[string]any
		if err := json.Unmarshal(raw, &trade); err != nil {
			return
		}
		m := coerceMap(trade)
		price := floatOf(m["price"])
		sink(unified.Ticker{Symbol: symbol, Last: price})
	})

	return conn.Subscribe(subscribeMsg{Event: "bts:subscribe", Data: map[string]string{"channel": channel}})
}

// WatchTrades subscribes to the live_trades_{pair} channel.
func (d *Driver) WatchTrades(symbol string, sink func(unified.Trade)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	id := toVenueId(symbol)
	channel := "live_trades_" + id

	hub.register(channel, func(raw json.RawMessage) {
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			return
		}
		cm := coerceMap(m)
		price := floatOf(cm["price"])
		amount := floatOf(cm["amount"])
		side := unified.SideBuy
		if intOf(cm["type"]) == 1 {
			side = unified.SideSell
		}
		sink(unified.Trade{
			Symbol: symbol,
			Price:  price,
			Amount: amount,
			Cost:   price * amount,
			Side:   side,
		})
	})

	return conn.Subscribe(subscribeMsg{Event: "bts:subscribe", Data: map[string]string{"channel": channel}})
}

// WatchOrderBook subscribes to the order_book_{pair} channel.
func (d *Driver) WatchOrderBook(symbol string, sink func(unified.OrderBook)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	id := toVenueId(symbol)
	channel := "order_book_" + id

	hub.register(channel, func(raw json.RawMessage) {
		var m coerce.M
		if err := json.Unmarshal(raw, &m); err != nil {
			return
		}
		sink(parseOrderBook(symbol, m))
	})

	return conn.Subscribe(subscribeMsg{Event: "bts:subscribe", Data: map[string]string{"channel": channel}})
}

func coerceMap(m map[string]any) coerce.M { return coerce.M(m) }

func floatOf(v any) float64 {
	return coerce.Float(coerce.M{"v": v}, "v", 0)
}

func intOf(v any) int64 {
	return coerce.Int(coerce.M{"v": v}, "v", 0)
}
