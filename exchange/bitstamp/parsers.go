package bitstamp

import (
	"encoding/json"
	"strings"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

func parseMarket(id string, m coerce.M) unified.Market {
	baseCcy := coerce.Upper(m, "base_currency", "")
	quoteCcy := coerce.Upper(m, "counter_currency", "")
	symbol := baseCcy + "/" + quoteCcy

	return unified.Market{
		Id:       id,
		Symbol:   symbol,
		Base:     baseCcy,
		Quote:    quoteCcy,
		Active:   coerce.Lower(m, "trading", "") == "enabled",
		Precision: unified.Precision{
			Price:  int(coerce.Int(m, "counter_decimals", 8)),
			Amount: int(coerce.Int(m, "base_decimals", 8)),
		},
		Limits: unified.Limits{
			Amount: unified.Range{Min: coerce.Float(m, "minimum_order", 0)},
		},
		Info: m,
	}
}

func parseTicker(symbol string, m coerce.M) unified.Ticker {
	t := unified.Ticker{
		Symbol:      symbol,
		Last:        coerce.Float(m, "last", 0),
		Bid:         coerce.Float(m, "bid", 0),
		Ask:         coerce.Float(m, "ask", 0),
		High:        coerce.Float(m, "high", 0),
		Low:         coerce.Float(m, "low", 0),
		Open:        coerce.Float(m, "open", 0),
		Volume:      coerce.Float(m, "volume", 0),
		QuoteVolume: coerce.FloatPtr(m, "vwap"),
		Timestamp:   coerce.Int(m, "timestamp", 0) * 1000,
	}
	t.Datetime = coerce.ISODatetime(t.Timestamp)
	t.FillChangeFields()
	return t
}

func parseOrderBook(symbol string, m coerce.M) unified.OrderBook {
	ob := unified.OrderBook{
		Symbol:    symbol,
		Bids:      parseLevels(m["bids"]),
		Asks:      parseLevels(m["asks"]),
		Timestamp: coerce.Int(m, "timestamp", 0) * 1000,
	}
	ob.Datetime = coerce.ISODatetime(ob.Timestamp)
	return ob
}

func parseLevels(raw any) []unified.PriceLevel {
	arr, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]unified.PriceLevel, 0, len(arr))
	for _, row := range arr {
		pair, ok := row.([]any)
		if !ok || len(pair) < 2 {
			continue
		}
		price := parseFloatAny(pair[0])
		size := parseFloatAny(pair[1])
		out = append(out, unified.PriceLevel{Price: price, Size: size})
	}
	return out
}

func parseFloatAny(v any) float64 {
	m := coerce.M{"v": v}
	return coerce.Float(m, "v", 0)
}

func parseTrade(symbol string, m coerce.M) unified.Trade {
	// Public trades: numeric type 0/1 -> buy/sell (spec.md §4.10).
	side := unified.SideBuy
	if coerce.Int(m, "type", 0) == 1 {
		side = unified.SideSell
	}
	price := coerce.Float(m, "price", 0)
	amount := coerce.Float(m, "amount", 0)
	return unified.Trade{
		Id:        coerce.Str(m, "tid", ""),
		Symbol:    symbol,
		Price:     price,
		Amount:    amount,
		Cost:      price * amount,
		Side:      side,
		Timestamp: coerce.Int(m, "date", 0) * 1000,
		Datetime:  coerce.ISODatetime(coerce.Int(m, "date", 0) * 1000),
		Info:      m,
	}
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

func decodeObject(body []byte) (coerce.M, error) {
	var m coerce.M
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// parseOrderStatus maps Bitstamp order status strings through the unified
// status alphabet of spec.md §4.7.
func parseOrderStatus(s string) unified.OrderStatus {
	switch strings.ToUpper(s) {
	case "OPEN":
		return unified.OrderNew
	case "IN QUEUE":
		return unified.OrderNew
	case "FINISHED":
		return unified.OrderFilled
	case "CANCELED", "CANCELLED":
		return unified.OrderCanceled
	default:
		return unified.OrderNew
	}
}
