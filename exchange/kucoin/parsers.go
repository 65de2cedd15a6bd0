package kucoin

import (
	"encoding/json"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

func decodeArray(body []byte) ([]any, error) {
	var arr []any
	err := json.Unmarshal(body, &arr)
	return arr, err
}

func decodeObject(body []byte) (coerce.M, error) {
	var m coerce.M
	err := json.Unmarshal(body, &m)
	return m, err
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func anyFloat(v any) float64 {
	return coerce.Float(coerce.M{"v": v}, "v", 0)
}

func parseMarket(m coerce.M) unified.Market {
	base := coerce.Str(m, "baseCurrency", "")
	quote := coerce.Str(m, "quoteCurrency", "")
	return unified.Market{
		Id:     coerce.Str(m, "symbol", ""),
		Symbol: base + "/" + quote,
		Base:   base,
		Quote:  quote,
		Active: coerce.Bool(m, "enableTrading", true),
		Limits: unified.Limits{
			Amount: unified.Range{Min: coerce.Float(m, "baseMinSize", 0), Max: coerce.Float(m, "baseMaxSize", 0)},
			Price:  unified.Range{Min: coerce.Float(m, "quoteMinSize", 0)},
		},
		Info: m,
	}
}

// parseTicker reads the fuller /market/stats shape rather than level1, since
// spec.md §3's Ticker needs high/low/volume alongside bid/ask.
func parseTicker(symbol string, m coerce.M) unified.Ticker {
	t := unified.Ticker{
		Symbol: symbol,
		Last:   coerce.Float(m, "last", 0),
		Bid:    coerce.Float(m, "buy", 0),
		Ask:    coerce.Float(m, "sell", 0),
		High:   coerce.Float(m, "high", 0),
		Low:    coerce.Float(m, "low", 0),
		Volume: coerce.Float(m, "vol", 0),
	}
	if cp := coerce.FloatPtr(m, "changePrice"); cp != nil {
		t.Change = cp
	}
	t.Open = t.Last - valueOr(t.Change, 0)
	t.FillChangeFields()
	return t
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
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
		out = append(out, unified.PriceLevel{Price: anyFloat(pair[0]), Size: anyFloat(pair[1])})
	}
	return out
}

// parseTrade divides KuCoin's nanosecond trade timestamp down to
// milliseconds, per spec.md §4.10.
func parseTrade(symbol string, m coerce.M) unified.Trade {
	price := coerce.Float(m, "price", 0)
	amount := coerce.Float(m, "size", 0)
	ts := coerce.Int(m, "time", 0) / 1_000_000
	side := unified.SideBuy
	if coerce.Lower(m, "side", "") == "sell" {
		side = unified.SideSell
	}
	return unified.Trade{
		Id:        coerce.Str(m, "sequence", ""),
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

// parseCandle reshapes KuCoin's [time, open, close, high, low, volume,
// turnover] column order into the unified OHLC layout, per spec.md §8
// scenario 3.
func parseCandle(row []any) unified.Candle {
	if len(row) < 6 {
		return unified.Candle{}
	}
	return unified.Candle{
		Timestamp: int64(anyFloat(row[0])) * 1000,
		Open:      anyFloat(row[1]),
		High:      anyFloat(row[3]),
		Low:       anyFloat(row[4]),
		Close:     anyFloat(row[2]),
		Volume:    anyFloat(row[5]),
	}
}

func parseOrderStatus(isActive bool, cancelExist bool) unified.OrderStatus {
	if cancelExist {
		return unified.OrderCanceled
	}
	if isActive {
		return unified.OrderNew
	}
	return unified.OrderFilled
}

func (d *Driver) parseOrder(m coerce.M) unified.Order {
	symbol := d.fromVenueId(coerce.Str(m, "symbol", ""))
	side := unified.OrderSideBuy
	if coerce.Lower(m, "side", "") == "sell" {
		side = unified.OrderSideSell
	}
	o := unified.Order{
		Id:        coerce.Str(m, "id", ""),
		Symbol:    symbol,
		Type:      unified.OrderType(coerce.Upper(m, "type", "LIMIT")),
		Side:      side,
		Price:     coerce.Float(m, "price", 0),
		Amount:    coerce.Float(m, "size", 0),
		Filled:    coerce.Float(m, "dealSize", 0),
		Cost:      coerce.Float(m, "dealFunds", 0),
		Status:    parseOrderStatus(coerce.Bool(m, "isActive", false), coerce.Bool(m, "cancelExist", false)),
		Timestamp: coerce.Int(m, "createdAt", 0),
		Info:      m,
	}
	o.Datetime = coerce.ISODatetime(o.Timestamp)
	o.FillDerivedFields()
	return o
}

func (d *Driver) parseMyTrade(m coerce.M) unified.MyTrade {
	symbol := d.fromVenueId(coerce.Str(m, "symbol", ""))
	price := coerce.Float(m, "price", 0)
	amount := coerce.Float(m, "size", 0)
	ts := coerce.Int(m, "createdAt", 0)
	return unified.MyTrade{
		Trade: unified.Trade{
			Id:        coerce.Str(m, "tradeId", ""),
			Symbol:    symbol,
			Price:     price,
			Amount:    amount,
			Cost:      coerce.Float(m, "funds", 0),
			Timestamp: ts,
			Datetime:  coerce.ISODatetime(ts),
			Info:      m,
		},
		OrderId: coerce.Str(m, "orderId", ""),
		Fee:     unified.Fee{Cost: coerce.Float(m, "fee", 0), Currency: coerce.Str(m, "feeCurrency", "")},
	}
}

