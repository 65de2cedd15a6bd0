package bitrue

import (
	"encoding/json"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

func decodeObject(body []byte) (coerce.M, error) {
	var m coerce.M
	err := json.Unmarshal(body, &m)
	return m, err
}

func decodeArray(body []byte) ([]coerce.M, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	out := make([]coerce.M, 0, len(raw))
	for _, r := range raw {
		var m coerce.M
		if err := json.Unmarshal(r, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
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
	id := coerce.Upper(m, "symbol", "")
	base := coerce.Upper(m, "baseAsset", "")
	quote := coerce.Upper(m, "quoteAsset", "")
	return unified.Market{
		Id:     id,
		Symbol: base + "/" + quote,
		Base:   base,
		Quote:  quote,
		Active: coerce.Upper(m, "status", "") == "TRADING",
		Precision: unified.Precision{
			Price:  int(coerce.Int(m, "pricePrecision", 8)),
			Amount: int(coerce.Int(m, "amountPrecision", 8)),
		},
		Info: m,
	}
}

func parseTicker(symbol string, m coerce.M) unified.Ticker {
	t := unified.Ticker{
		Symbol: symbol,
		Last:   coerce.Float(m, "lastPrice", 0),
		High:   coerce.Float(m, "highPrice", 0),
		Low:    coerce.Float(m, "lowPrice", 0),
		Open:   coerce.Float(m, "openPrice", 0),
		Volume: coerce.Float(m, "volume", 0),
	}
	t.Timestamp = coerce.Int(m, "closeTime", 0)
	t.Datetime = coerce.ISODatetime(t.Timestamp)
	t.FillChangeFields()
	return t
}

// parseOrderBookTick implements spec.md §8 scenario 5: the wire field is
// "buys", not "bids".
func parseOrderBookTick(symbol string, tick coerce.M) unified.OrderBook {
	return unified.OrderBook{
		Symbol: symbol,
		Bids:   parseLevels(tick["buys"]),
		Asks:   parseLevels(tick["asks"]),
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

// parseTrade implements spec.md §4.10/§9: isBuyerMaker === true is mapped to
// "sell" — a suspected source defect preserved verbatim, not "fixed" here.
func parseTrade(symbol string, m coerce.M) unified.Trade {
	side := unified.SideBuy
	if coerce.Bool(m, "isBuyerMaker", false) {
		side = unified.SideSell
	}
	price := coerce.Float(m, "price", 0)
	amount := coerce.Float(m, "qty", 0)
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

func parseCandle(row any) unified.Candle {
	arr := asSlice(row)
	if len(arr) < 6 {
		return unified.Candle{}
	}
	return unified.Candle{
		Timestamp: int64(anyFloat(arr[0])),
		Open:      anyFloat(arr[1]),
		High:      anyFloat(arr[2]),
		Low:       anyFloat(arr[3]),
		Close:     anyFloat(arr[4]),
		Volume:    anyFloat(arr[5]),
	}
}

func parseOrderStatus(s string) unified.OrderStatus {
	switch s {
	case "NEW":
		return unified.OrderNew
	case "PARTIALLY_FILLED":
		return unified.OrderPartiallyFilled
	case "FILLED":
		return unified.OrderFilled
	case "CANCELED":
		return unified.OrderCanceled
	default:
		return unified.OrderNew
	}
}

func parseOrder(symbol string, m coerce.M) unified.Order {
	o := unified.Order{
		Id:        coerce.Str(m, "orderId", ""),
		Symbol:    symbol,
		Type:      unified.OrderType(coerce.Upper(m, "type", "LIMIT")),
		Side:      unified.OrderSide(coerce.Upper(m, "side", "BUY")),
		Price:     coerce.Float(m, "price", 0),
		Amount:    coerce.Float(m, "origQty", 0),
		Filled:    coerce.Float(m, "executedQty", 0),
		Status:    parseOrderStatus(coerce.Str(m, "status", "")),
		Timestamp: coerce.Int(m, "time", 0),
		Info:      m,
	}
	o.Datetime = coerce.ISODatetime(o.Timestamp)
	o.FillDerivedFields()
	return o
}

func parseMyTrade(symbol string, m coerce.M) unified.MyTrade {
	price := coerce.Float(m, "price", 0)
	amount := coerce.Float(m, "qty", 0)
	ts := coerce.Int(m, "time", 0)
	return unified.MyTrade{
		Trade: unified.Trade{
			Id:        coerce.Str(m, "id", ""),
			Symbol:    symbol,
			Price:     price,
			Amount:    amount,
			Cost:      price * amount,
			Timestamp: ts,
			Datetime:  coerce.ISODatetime(ts),
			Info:      m,
		},
		OrderId: coerce.Str(m, "orderId", ""),
		Fee:     unified.Fee{Cost: coerce.Float(m, "commission", 0), Currency: coerce.Str(m, "commissionAsset", "")},
	}
}
