package kraken

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"xchange/internal/coerce"
	"xchange/internal/wsconn"
	"xchange/pkg/unified"
)

type subscribeMsg struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

type inboundEvent struct {
	Channel string          `json:"channel"`
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
}

// wsHub dispatches Kraken v2 frames keyed by their "channel" field, per
// spec.md §4.9's Kraken row.
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
	if err := json.Unmarshal(message, &ev); err != nil || ev.Channel == "" {
		return
	}
	h.mu.Lock()
	fn, ok := h.sinks[ev.Channel]
	h.mu.Unlock()
	if ok {
		fn(ev.Data)
	}
}

func pingPayload() []byte {
	b, _ := json.Marshal(map[string]string{"method": "ping"})
	return b
}

func (d *Driver) wsConn() (*wsconn.Conn, *wsHub, error) {
	hub := newWSHub()
	conn, err := d.WSConn(wsPublicURL, func() *wsconn.Conn {
		return wsconn.New("kraken", wsPublicURL, hub.dispatch, wsconn.WithHeartbeat(15*time.Second, pingPayload))
	})
	return conn, hub, err
}

// privateWSConn dials the auth feed and bootstraps a session token via
// GetWebSocketsToken, per spec.md §4.9's "token-bootstrapped sessions" row.
func (d *Driver) privateWSConn(ctx context.Context) (*wsconn.Conn, *wsHub, string, error) {
	token, err := d.getWebSocketsToken(ctx)
	if err != nil {
		return nil, nil, "", err
	}
	hub := newWSHub()
	conn, err := d.WSConn(wsPrivateURL, func() *wsconn.Conn {
		return wsconn.New("kraken-private", wsPrivateURL, hub.dispatch, wsconn.WithHeartbeat(15*time.Second, pingPayload))
	})
	return conn, hub, token, err
}

func (d *Driver) WatchTicker(symbol string, sink func(unified.Ticker)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	hub.register("ticker", func(raw json.RawMessage) {
		for _, row := range asSlice(decodeRaw(raw)) {
			m := coerce.M(asMap(row))
			if d.fromVenueId(coerce.Str(m, "symbol", "")) != symbol {
				continue
			}
			t := unified.Ticker{
				Symbol: symbol,
				Last:   coerce.Float(m, "last", 0),
				Bid:    coerce.Float(m, "bid", 0),
				Ask:    coerce.Float(m, "ask", 0),
				Open:   coerce.Float(m, "open", 0),
				High:   coerce.Float(m, "high", 0),
				Low:    coerce.Float(m, "low", 0),
				Volume: coerce.Float(m, "volume", 0),
			}
			t.FillChangeFields()
			sink(t)
		}
	})
	return conn.Subscribe(subscribeMsg{Method: "subscribe", Params: map[string]any{
		"channel": "ticker",
		"symbol":  []string{d.toVenueWsSymbol(symbol)},
	}})
}

func (d *Driver) WatchTrades(symbol string, sink func(unified.Trade)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	hub.register("trade", func(raw json.RawMessage) {
		for _, row := range asSlice(decodeRaw(raw)) {
			m := coerce.M(asMap(row))
			if d.fromVenueId(coerce.Str(m, "symbol", "")) != symbol {
				continue
			}
			side := unified.SideBuy
			if coerce.Lower(m, "side", "") == "sell" {
				side = unified.SideSell
			}
			price := coerce.Float(m, "price", 0)
			amount := coerce.Float(m, "qty", 0)
			sink(unified.Trade{
				Symbol: symbol,
				Price:  price,
				Amount: amount,
				Cost:   price * amount,
				Side:   side,
			})
		}
	})
	return conn.Subscribe(subscribeMsg{Method: "subscribe", Params: map[string]any{
		"channel": "trade",
		"symbol":  []string{d.toVenueWsSymbol(symbol)},
	}})
}

func (d *Driver) WatchOrderBook(symbol string, sink func(unified.OrderBook)) error {
	conn, hub, err := d.wsConn()
	if err != nil {
		return err
	}
	hub.register("book", func(raw json.RawMessage) {
		for _, row := range asSlice(decodeRaw(raw)) {
			m := coerce.M(asMap(row))
			if d.fromVenueId(coerce.Str(m, "symbol", "")) != symbol {
				continue
			}
			sink(unified.OrderBook{
				Symbol: symbol,
				Bids:   parseBookLevels(m["bids"]),
				Asks:   parseBookLevels(m["asks"]),
			})
		}
	})
	return conn.Subscribe(subscribeMsg{Method: "subscribe", Params: map[string]any{
		"channel": "book",
		"symbol":  []string{d.toVenueWsSymbol(symbol)},
	}})
}

// WatchOrders subscribes the authenticated "executions" channel, advertised
// via exchange.CapWatchOrders.
func (d *Driver) WatchOrders(ctx context.Context, sink func(unified.Order)) error {
	conn, hub, token, err := d.privateWSConn(ctx)
	if err != nil {
		return err
	}
	hub.register("executions", func(raw json.RawMessage) {
		for _, row := range asSlice(decodeRaw(raw)) {
			m := coerce.M(asMap(row))
			orderId := coerce.Str(m, "order_id", "")
			sink(d.parseOrder(orderId, m))
		}
	})
	return conn.Subscribe(subscribeMsg{Method: "subscribe", Params: map[string]any{
		"channel": "executions",
		"token":   token,
	}})
}

func parseBookLevels(raw any) []unified.PriceLevel {
	arr := asSlice(raw)
	out := make([]unified.PriceLevel, 0, len(arr))
	for _, row := range arr {
		m := coerce.M(asMap(row))
		out = append(out, unified.PriceLevel{Price: coerce.Float(m, "price", 0), Size: coerce.Float(m, "qty", 0)})
	}
	return out
}

func (d *Driver) toVenueWsSymbol(symbol string) string {
	if mkt, ok := d.Market(symbol); ok {
		if wsname := coerce.Str(coerce.M(mkt.Info), "wsname", ""); wsname != "" {
			return wsname
		}
	}
	return symbol
}

func decodeRaw(raw json.RawMessage) any {
	var v any
	_ = json.Unmarshal(raw, &v)
	return v
}
