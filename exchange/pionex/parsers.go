package pionex

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

func asSlice(v any) []any {
	arr, _ := v.([]any)
	return arr
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func parseMarket(m coerce.M) unified.Market {
	base := coerce.Str(m, "baseCurrency", "")
	quote := coerce.Str(m, "quoteCurrency", "")
	return unified.Market{
		Id:     coerce.Str(m, "symbol", ""),
		Symbol: base + "/" + quote,
		Base:   base,
		Quote:  quote,
		Active: coerce.Bool(m, "enable", true),
		Precision: unified.Precision{
			Base:  int(coerce.Int(m, "basePrecision", 8)),
			Quote: int(coerce.Int(m, "quotePrecision", 8)),
		},
		Limits: unified.Limits{
			Amount: unified.Range{Min: coerce.Float(m, "minTradeSize", 0)},
		},
		Info: m,
	}
}

func parseTicker(symbol string, m coerce.M) unified.Ticker {
	t := unified.Ticker{
		Symbol: symbol,
		Last:   coerce.Float(m, "close", 0),
		Open:   coerce.Float(m, "open", 0),
		High:   coerce.Float(m, "high", 0),
		Low:    coerce.Float(m, "low", 0),
		Volume: coerce.Float(m, "volume", 0),
	}
	if amt := coerce.FloatPtr(m, "amount"); amt != nil {
		t.QuoteVolume = amt
	}
	t.FillChangeFields()
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
		out = append(out, unified.PriceLevel{Price: toFloat(pair[0]), Size: toFloat(pair[1])})
	}
	return out
}

func toFloat(v any) float64 {
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

func parseTrade(symbol string, m coerce.M) unified.Trade {
	price := coerce.Float(m, "price", 0)
	amount := coerce.Float(m, "size", 0)
	side := unified.SideBuy
	if coerce.Lower(m, "side", "") == "sell" {
		side = unified.SideSell
	}
	ts := coerce.Int(m, "time", 0)
	return unified.Trade{
		Id:        coerce.Str(m, "id", ""),
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

func parseCandle(m coerce.M) unified.Candle {
	return unified.Candle{
		Timestamp: coerce.Int(m, "time", 0),
		Open:      coerce.Float(m, "open", 0),
		High:      coerce.Float(m, "high", 0),
		Low:       coerce.Float(m, "low", 0),
		Close:     coerce.Float(m, "close", 0),
		Volume:    coerce.Float(m, "volume", 0),
	}
}

func parseOrderStatus(s string) unified.OrderStatus {
	switch s {
	case "OPEN":
		return unified.OrderNew
	case "PARTIALLY_FILLED":
		return unified.OrderPartiallyFilled
	case "FILLED", "CLOSED":
		return unified.OrderFilled
	case "CANCELED", "CANCELLED":
		return unified.OrderCanceled
	default:
		return unified.OrderNew
	}
}

func (d *Driver) parseOrder(m coerce.M) unified.Order {
	symbol := d.fromVenueId(coerce.Str(m, "symbol", ""))
	side := unified.OrderSideBuy
	if coerce.Upper(m, "side", "") == "SELL" {
		side = unified.OrderSideSell
	}
	ts := coerce.Int(m, "createTime", 0)
	o := unified.Order{
		Id:        coerce.Str(m, "orderId", ""),
		Symbol:    symbol,
		Type:      unified.OrderType(coerce.Upper(m, "type", "LIMIT")),
		Side:      side,
		Price:     coerce.Float(m, "price", 0),
		Amount:    coerce.Float(m, "size", 0),
		Filled:    coerce.Float(m, "filledSize", 0),
		Cost:      coerce.Float(m, "filledAmount", 0),
		Status:    parseOrderStatus(coerce.Upper(m, "status", "OPEN")),
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
	amount := coerce.Float(m, "size", 0)
	ts := coerce.Int(m, "timestamp", 0)
	return unified.MyTrade{
		Trade: unified.Trade{
			Id:        coerce.Str(m, "tradeId", ""),
			Symbol:    symbol,
			Price:     price,
			Amount:    amount,
			Cost:      price * amount,
			Timestamp: ts,
			Datetime:  coerce.ISODatetime(ts),
			Info:      m,
		},
		OrderId: coerce.Str(m, "orderId", ""),
		Fee:     unified.Fee{Cost: coerce.Float(m, "commission", 0), Currency: coerce.Str(m, "commissionCurrency", "")},
	}
}
