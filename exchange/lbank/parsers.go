package lbank

import (
	"encoding/json"
	"strconv"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

func decodeObject(body []byte) (coerce.M, error) {
	var m coerce.M
	err := json.Unmarshal(body, &m)
	return m, err
}

func decodeArray(body []byte) ([]any, error) {
	var arr []any
	err := json.Unmarshal(body, &arr)
	return arr, err
}

func asSlice(v any) []any {
	arr, _ := v.([]any)
	return arr
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func parseMarket(id string, m coerce.M) unified.Market {
	parts := venueParts(id)
	return unified.Market{
		Id:     id,
		Symbol: parts[0] + "/" + parts[1],
		Base:   parts[0],
		Quote:  parts[1],
		Active: true,
		Precision: unified.Precision{
			Price:  int(coerce.Int(m, "priceAccuracy", 8)),
			Amount: int(coerce.Int(m, "quantityAccuracy", 8)),
		},
		Limits: unified.Limits{
			Amount: unified.Range{Min: coerce.Float(m, "minTranQua", 0)},
		},
		Info: m,
	}
}

func venueParts(id string) [2]string {
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '_' {
			return [2]string{toUpperASCII(id[:i]), toUpperASCII(id[i+1:])}
		}
	}
	return [2]string{toUpperASCII(id), ""}
}

func parseAmount(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}

func toUpperASCII(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'a' && c <= 'z' {
			out[i] = c - 'a' + 'A'
		}
	}
	return string(out)
}

func parseTicker(symbol string, m coerce.M) unified.Ticker {
	tick := coerce.Sub(m, "ticker")
	t := unified.Ticker{
		Symbol: symbol,
		Last:   coerce.Float(tick, "latest", 0),
		High:   coerce.Float(tick, "high", 0),
		Low:    coerce.Float(tick, "low", 0),
		Volume: coerce.Float(tick, "vol", 0),
	}
	if turnover := coerce.FloatPtr(tick, "turnover"); turnover != nil {
		t.QuoteVolume = turnover
	}
	if pct := coerce.FloatPtr(tick, "change"); pct != nil {
		t.Percentage = pct
	}
	return t
}

func parseOrderBook(symbol string, m coerce.M) unified.OrderBook {
	return unified.OrderBook{
		Symbol: symbol,
		Bids:   parseLevels(m["bids"]),
		Asks:   parseLevels(m["asks"]),
	}
}

func parseLevels(raw any) []unified.PriceLevel {
	arr := asSlice(raw)
	out := make([]unified.PriceLevel, 0, len(arr))
	for _, row := range arr {
		pair := asSlice(row)
		if len(pair) < 2 {
			continue
		}
		price, _ := pair[0].(float64)
		size, _ := pair[1].(float64)
		out = append(out, unified.PriceLevel{Price: price, Size: size})
	}
	return out
}

// parseTrade implements spec.md §174's "numeric type 0/1 -> buy/sell"
// derivation for LBank public trades, falling back to the lowercased string
// form for feeds that report "buy"/"sell" directly.
func parseTrade(symbol string, m coerce.M) unified.Trade {
	price := coerce.Float(m, "price", 0)
	amount := coerce.Float(m, "amount", 0)
	side := unified.SideBuy
	switch coerce.Str(m, "type", "") {
	case "1", "sell", "sell_market", "sell_maker":
		side = unified.SideSell
	}
	ts := coerce.Int(m, "date_ms", 0)
	return unified.Trade{
		Id:        coerce.Str(m, "tid", ""),
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

func parseCandle(row []any) unified.Candle {
	if len(row) < 6 {
		return unified.Candle{}
	}
	ts, _ := row[0].(float64)
	open, _ := row[1].(float64)
	high, _ := row[2].(float64)
	low, _ := row[3].(float64)
	close_, _ := row[4].(float64)
	volume, _ := row[5].(float64)
	return unified.Candle{
		Timestamp: int64(ts) * 1000,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close_,
		Volume:    volume,
	}
}

func parseOrderStatus(code string) unified.OrderStatus {
	switch code {
	case "-1":
		return unified.OrderCanceled
	case "0":
		return unified.OrderNew
	case "1":
		return unified.OrderPartiallyFilled
	case "2":
		return unified.OrderFilled
	case "4":
		return unified.OrderCanceled
	default:
		return unified.OrderNew
	}
}

func (d *Driver) parseOrder(m coerce.M) unified.Order {
	symbol := d.fromVenueId(coerce.Str(m, "symbol", ""))
	side := unified.OrderSideBuy
	if coerce.Lower(m, "type", "") == "sell" {
		side = unified.OrderSideSell
	}
	ts := coerce.Int(m, "create_time", 0)
	o := unified.Order{
		Id:        coerce.Str(m, "order_id", ""),
		Symbol:    symbol,
		Type:      unified.OrderTypeLimit,
		Side:      side,
		Price:     coerce.Float(m, "price", 0),
		Amount:    coerce.Float(m, "amount", 0),
		Filled:    coerce.Float(m, "deal_amount", 0),
		Status:    parseOrderStatus(coerce.Str(m, "status", "0")),
		Timestamp: ts,
		Datetime:  coerce.ISODatetime(ts),
		Info:      m,
	}
	o.FillDerivedFields()
	return o
}

func (d *Driver) parseMyTrade(m coerce.M) unified.MyTrade {
	symbol := d.fromVenueId(coerce.Str(m, "symbol", ""))
	price := coerce.Float(m, "price", 0)
	amount := coerce.Float(m, "amount", 0)
	ts := coerce.Int(m, "deal_time", 0)
	return unified.MyTrade{
		Trade: unified.Trade{
			Id:        coerce.Str(m, "deal_id", ""),
			Symbol:    symbol,
			Price:     price,
			Amount:    amount,
			Cost:      price * amount,
			Timestamp: ts,
			Datetime:  coerce.ISODatetime(ts),
			Info:      m,
		},
		OrderId: coerce.Str(m, "order_id", ""),
		Fee:     unified.Fee{Cost: coerce.Float(m, "fee", 0), Currency: coerce.Str(m, "feeCoin", "")},
	}
}
