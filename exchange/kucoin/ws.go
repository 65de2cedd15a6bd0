package kucoin

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"xchange/internal/coerce"
	"xchange/internal/wsconn"
	"xchange/pkg/unified"
)

type subscribeMsg struct {
	Id             string `json:"id"`
	Type           string `json:"type"`
	Topic          string `json:"topic"`
	PrivateChannel bool   `json:"privateChannel"`
	Response       bool   `json:"response"`
}

type inboundMessage struct {
	Type  string          `json:"type"`
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

// wsHub dispatches frames with type=="message", keyed by topic, per
// spec.md §4.9's KuCoin row.
type wsHub struct {
	mu    sync.Mutex
	sinks map[string]func(json.RawMessage)
}

func newWSHub() *wsHub { return &wsHub{sinks: make(map[string]func(json.RawMessage))} }

func (h *wsHub) register(topic string, fn func(json.RawMessage)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks[topic] = fn
}

func (h *wsHub) dispatch(message []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(message, &msg); err != nil || msg.Type != "message" {
		return
	}
	h.mu.Lock()
	fn, ok := h.sinks[msg.Topic]
	h.mu.Unlock()
	if ok {
		fn(msg.Data)
	}
}

func pingPayload() []byte {
	b, _ := json.Marshal(map[string]string{"id": strconv.FormatInt(time.Now().UnixMilli(), 10), "type": "ping"})
	return b
}

func (d *Driver) wsConn(ctx context.Context, private bool) (*wsconn.Conn, *wsHub, error) {
	endpoint, token, err := d.bulletToken(ctx, private)
	if err != nil {
		return nil, nil, err
	}
	url := endpoint + "?token=" + token
	hub := newWSHub()
	conn, err := d.WSConn(url, func() *wsconn.Conn {
		return wsconn.New("kucoin", url, hub.dispatch, wsconn.WithHeartbeat(20*time.Second, pingPayload))
	})
	return conn, hub, err
}

func (d *Driver) subscribe(conn *wsconn.Conn, topic string, private bool) error {
	return conn.Subscribe(subscribeMsg{
		Id:             strconv.FormatInt(time.Now().UnixNano(), 10),
		Type:           "subscribe",
		Topic:          topic,
		PrivateChannel: private,
		Response:       true,
	})
}

func (d *Driver) WatchTicker(symbol string, sink func(unified.Ticker)) error {
	conn, hub, err := d.wsConn(context.Background(), false)
	if err != nil {
		return err
	}
	id := toVenueId(symbol)
	topic := fmt.Sprintf("/market/snapshot:%s", id)
	hub.register(topic, func(raw json.RawMessage) {
		var m coerce.M
		if err := json.Unmarshal(raw, &m); err != nil {
			return
		}
		data := coerce.Sub(m, "data")
		t := unified.Ticker{
			Symbol: symbol,
			Last:   coerce.Float(data, "lastTradedPrice", 0),
			High:   coerce.Float(data, "high", 0),
			Low:    coerce.Float(data, "low", 0),
			Volume: coerce.Float(data, "vol", 0),
			Open:   coerce.Float(data, "op", 0),
		}
		t.FillChangeFields()
		sink(t)
	})
	return d.subscribe(conn, topic, false)
}

func (d *Driver) WatchTrades(symbol string, sink func(unified.Trade)) error {
	conn, hub, err := d.wsConn(context.Background(), false)
	if err != nil {
		return err
	}
	id := toVenueId(symbol)
	topic := fmt.Sprintf("/market/match:%s", id)
	hub.register(topic, func(raw json.RawMessage) {
		var m coerce.M
		if err := json.Unmarshal(raw, &m); err != nil {
			return
		}
		sink(parseTrade(symbol, m))
	})
	return d.subscribe(conn, topic, false)
}

func (d *Driver) WatchOrderBook(symbol string, sink func(unified.OrderBook)) error {
	conn, hub, err := d.wsConn(context.Background(), false)
	if err != nil {
		return err
	}
	id := toVenueId(symbol)
	topic := fmt.Sprintf("/spotMarket/level2Depth50:%s", id)
	hub.register(topic, func(raw json.RawMessage) {
		var m coerce.M
		if err := json.Unmarshal(raw, &m); err != nil {
			return
		}
		sink(parseOrderBook(symbol, m))
	})
	return d.subscribe(conn, topic, false)
}
