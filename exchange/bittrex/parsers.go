package bittrex

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

func decodeArray(body []byte) ([]any, error) {
	var arr []any
	err := json.Unmarshal(body, &arr)
	return arr, err
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func parseMarket(m coerce.M) unified.Market {
	base := coerce.Str(m, "baseCurrencySymbol", "")
	quote := coerce.Str(m, "quoteCurrencySymbol", "")
	return unified.Market{
		Id:     coerce.Str(m, "symbol", ""),
		Symbol: base + "/" + quote,
		Base:   base,
		Quote:  quote,
		Active: coerce.Str(m, "status", "ONLINE") == "ONLINE",
		Precision: unified.Precision{
			Price: int(coerce.Int(m, "precision", 8)),
		},
		Limits: unified.Limits{
			Amount: unified.Range{Min: coerce.Float(m, "minTradeSize", 0)},
		},
		Info: m,
	}
}

func parseTicker(symbol string, tick, summary coerce.M) unified.Ticker {
	t := unified.Ticker{
		Symbol: symbol,
		Last:   coerce.Float(tick, "lastTradeRate", 0),
		Bid:    coerce.Float(tick, "bidRate", 0),
		Ask:    coerce.Float(tick, "askRate", 0),
		High:   coerce.Float(summary, "high", 0),
		Low:    coerce.Float(summary, "low", 0),
		Volume: coerce.Float(summary, "volume", 0),
	}
	if qv := coerce.FloatPtr(summary, "quoteVolume"); qv != nil {
		t.QuoteVolume = qv
	}
	t.FillChangeFields()
	return t
}

func parseOrderBook(symbol string, m coerce.M) unified.OrderBook {
	return unified.OrderBook{
		Symbol: symbol,
		Bids:   parseLevels(m["bid"]),
		Asks:   parseLevels(m["ask"]),
	}
}

func parseLevels(raw any) []unified.PriceLevel {
	arr, _ := raw.([]any)
	out := make([]unified.PriceLevel, 0, len(arr))
	for _, row := range arr {
		m := coerce.M(asMap(row))
		out = append(out, unified.PriceLevel{Price: coerce.Float(m, "rate", 0), Size: coerce.Float(m, "quantity", 0)})
	}
	return out
}

func parseTrade(symbol string, m coerce.M) unified.Trade {
	price := coerce.Float(m, "rate", 0)
	amount := coerce.Float(m, "quantity", 0)
	side := unified.SideBuy
	if coerce.Upper(m, "takerSide", "") == "SELL" {
		side = unified.SideSell
	}
	ts, _ := coerce.DateStringToMs(coerce.Str(m, "executedAt", ""))
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
	ts, _ := coerce.DateStringToMs(coerce.Str(m, "startsAt", ""))
	return unified.Candle{
		Timestamp: ts,
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
	case "CLOSED":
		return unified.OrderFilled
	default:
		return unified.OrderNew
	}
}

// parseOrder leaves Fee.Currency empty, preserving the suspected source
// defect of spec.md §9: Bittrex's order response carries a shared
// commission value with no per-order currency field to derive it from.
func (d *Driver) parseOrder(m coerce.M) unified.Order {
	symbol := d.fromVenueId(coerce.Str(m, "marketSymbol", ""))
	side := unified.OrderSideBuy
	if coerce.Upper(m, "direction", "") == "SELL" {
		side = unified.OrderSideSell
	}
	status := parseOrderStatus(coerce.Upper(m, "status", "OPEN"))
	if status == unified.OrderFilled && coerce.Float(m, "fillQuantity", 0) < coerce.Float(m, "quantity", 0) {
		status = unified.OrderCanceled
	}
	ts, _ := coerce.DateStringToMs(coerce.Str(m, "createdAt", ""))
	o := unified.Order{
		Id:        coerce.Str(m, "id", ""),
		Symbol:    symbol,
		Type:      unified.OrderType(coerce.Upper(m, "type", "LIMIT")),
		Side:      side,
		Price:     coerce.Float(m, "limit", 0),
		Amount:    coerce.Float(m, "quantity", 0),
		Filled:    coerce.Float(m, "fillQuantity", 0),
		Cost:      coerce.Float(m, "proceeds", 0),
		Status:    status,
		Timestamp: ts,
		Info:      m,
	}
	o.Datetime = coerce.ISODatetime(o.Timestamp)
	o.FillDerivedFields()
	o.Fee = &unified.Fee{Cost: coerce.Float(m, "commission", 0)}
	return o
}

func (d *Driver) parseMyTrade(m coerce.M) unified.MyTrade {
	symbol := d.fromVenueId(coerce.Str(m, "marketSymbol", ""))
	price := coerce.Float(m, "rate", 0)
	amount := coerce.Float(m, "quantity", 0)
	ts, _ := coerce.DateStringToMs(coerce.Str(m, "executedAt", ""))
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
		Fee:     unified.Fee{Cost: coerce.Float(m, "commission", 0)},
	}
}
