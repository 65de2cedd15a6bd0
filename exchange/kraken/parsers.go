package kraken

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

// parseMarket implements spec.md §8 scenario 1: prefer wsname for
// base/quote when present, fall back to the length-partitioned altname
// split when it's absent.
func parseMarket(id string, m coerce.M) unified.Market {
	wsname := coerce.Str(m, "wsname", "")
	altname := coerce.Str(m, "altname", "")

	var base, quote string
	if b, q, ok := splitWsname(wsname); ok {
		base, quote = b, q
	} else if b, q, ok := splitAltname(altname); ok {
		base, quote = b, q
	}

	return unified.Market{
		Id:     id,
		Symbol: base + "/" + quote,
		Base:   base,
		Quote:  quote,
		Active: coerce.Str(m, "status", "online") == "online",
		Precision: unified.Precision{
			Price:  int(coerce.Int(m, "pair_decimals", 8)),
			Amount: int(coerce.Int(m, "lot_decimals", 8)),
		},
		Limits: unified.Limits{
			Amount: unified.Range{Min: coerce.Float(m, "ordermin", 0)},
		},
		Info: m,
	}
}

func parseTicker(symbol string, m coerce.M) unified.Ticker {
	last := firstOf(m, "c")
	bid := firstOf(m, "b")
	ask := firstOf(m, "a")
	open := coerce.Float(m, "o", 0)
	high := secondOf(m, "h")
	low := secondOf(m, "l")
	volume := secondOf(m, "v")

	t := unified.Ticker{
		Symbol: symbol,
		Last:   last,
		Bid:    bid,
		Ask:    ask,
		Open:   open,
		High:   high,
		Low:    low,
		Volume: volume,
	}
	t.FillChangeFields()
	return t
}

func firstOf(m coerce.M, key string) float64 {
	arr := asSlice(m[key])
	if len(arr) == 0 {
		return 0
	}
	return anyFloat(arr[0])
}

func secondOf(m coerce.M, key string) float64 {
	arr := asSlice(m[key])
	if len(arr) < 2 {
		return 0
	}
	return anyFloat(arr[1])
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

func parseTrade(symbol string, row any) unified.Trade {
	arr := asSlice(row)
	if len(arr) < 4 {
		return unified.Trade{}
	}
	price := anyFloat(arr[0])
	amount := anyFloat(arr[1])
	ts := int64(anyFloat(arr[2]) * 1000)
	side := unified.SideBuy
	if s, ok := arr[3].(string); ok && s == "s" {
		side = unified.SideSell
	}
	return unified.Trade{
		Symbol:    symbol,
		Price:     price,
		Amount:    amount,
		Cost:      price * amount,
		Side:      side,
		Timestamp: ts,
		Datetime:  coerce.ISODatetime(ts),
	}
}

func parseCandle(row any) unified.Candle {
	arr := asSlice(row)
	if len(arr) < 7 {
		return unified.Candle{}
	}
	return unified.Candle{
		Timestamp: int64(anyFloat(arr[0])) * 1000,
		Open:      anyFloat(arr[1]),
		High:      anyFloat(arr[2]),
		Low:       anyFloat(arr[3]),
		Close:     anyFloat(arr[4]),
		Volume:    anyFloat(arr[6]),
	}
}

func parseOrderStatus(s string) unified.OrderStatus {
	switch s {
	case "open", "pending":
		return unified.OrderNew
	case "closed":
		return unified.OrderFilled
	case "canceled":
		return unified.OrderCanceled
	case "expired":
		return unified.OrderExpired
	default:
		return unified.OrderNew
	}
}

func (d *Driver) parseOrder(id string, m coerce.M) unified.Order {
	descr := coerce.Sub(m, "descr")
	symbol := d.fromVenueId(coerce.Str(descr, "pair", ""))
	side := unified.OrderSideBuy
	if coerce.Lower(descr, "type", "") == "sell" {
		side = unified.OrderSideSell
	}
	o := unified.Order{
		Id:        id,
		Symbol:    symbol,
		Type:      unified.OrderType(coerce.Upper(descr, "ordertype", "LIMIT")),
		Side:      side,
		Price:     coerce.Float(descr, "price", 0),
		Amount:    coerce.Float(m, "vol", 0),
		Filled:    coerce.Float(m, "vol_exec", 0),
		Cost:      coerce.Float(m, "cost", 0),
		Status:    parseOrderStatus(coerce.Str(m, "status", "")),
		Timestamp: int64(coerce.Float(m, "opentm", 0) * 1000),
		Info:      m,
	}
	o.Datetime = coerce.ISODatetime(o.Timestamp)
	o.FillDerivedFields()
	return o
}
