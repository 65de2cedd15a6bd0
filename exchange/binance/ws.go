package binance

import (
	"encoding/json"
	"strings"

	"xchange/internal/coerce"
	"xchange/internal/wsconn"
	"xchange/pkg/unified"
)

// streamConn dials a single raw Binance stream directly (wss://.../ws/<name>)
// rather than the multi-topic subscribe-message model other venues use —
// grounded on the teacher's original market/websocket_client.go, which
// dialed exactly one hardcoded Binance stream URL per connection before
// internal/wsconn generalized that shape for every other venue.
func (d *Driver) streamConn(stream string, handler wsconn.Handler) (*wsconn.Conn, error) {
	url := wsBaseURL + "/" + stream
	return d.WSConn(url, func() *wsconn.Conn {
		return wsconn.New("binance", url, handler)
	})
}

func (d *Driver) WatchTicker(symbol string, sink func(unified.Ticker)) error {
	id := strings.ToLower(toVenueId(symbol))
	_, err := d.streamConn(id+"@ticker", func(raw []byte) {
		var m coerce.M
		if err := json.Unmarshal(raw, &m); err != nil {
			return
		}
		sink(parseStreamTicker(symbol, m))
	})
	return err
}

func (d *Driver) WatchTrades(symbol string, sink func(unified.Trade)) error {
	id := strings.ToLower(toVenueId(symbol))
	_, err := d.streamConn(id+"@trade", func(raw []byte) {
		var m coerce.M
		if err := json.Unmarshal(raw, &m); err != nil {
			return
		}
		sink(parseStreamTrade(symbol, m))
	})
	return err
}

func (d *Driver) WatchOrderBook(symbol string, sink func(unified.OrderBook)) error {
	id := strings.ToLower(toVenueId(symbol))
	_, err := d.streamConn(id+"@depth20", func(raw []byte) {
		var m coerce.M
		if err := json.Unmarshal(raw, &m); err != nil {
			return
		}
		sink(parseOrderBook(symbol, m))
	})
	return err
}

func parseStreamTicker(symbol string, m coerce.M) unified.Ticker {
	t := unified.Ticker{
		Symbol:    symbol,
		Last:      coerce.Float(m, "c", 0),
		Bid:       coerce.Float(m, "b", 0),
		Ask:       coerce.Float(m, "a", 0),
		High:      coerce.Float(m, "h", 0),
		Low:       coerce.Float(m, "l", 0),
		Open:      coerce.Float(m, "o", 0),
		Volume:    coerce.Float(m, "v", 0),
		Timestamp: coerce.Int(m, "E", 0),
	}
	t.Datetime = coerce.ISODatetime(t.Timestamp)
	t.FillChangeFields()
	return t
}

func parseStreamTrade(symbol string, m coerce.M) unified.Trade {
	side := unified.SideBuy
	if coerce.Bool(m, "m", false) {
		side = unified.SideSell
	}
	price := coerce.Float(m, "p", 0)
	amount := coerce.Float(m, "q", 0)
	ts := coerce.Int(m, "T", 0)
	return unified.Trade{
		Id:        coerce.Str(m, "t", ""),
		Symbol:    symbol,
		Price:     price,
		Amount:    amount,
		Cost:      price * amount,
		Side:      side,
		Timestamp: ts,
		Datetime:  coerce.ISODatetime(ts),
		Info:      m,
	}
}
