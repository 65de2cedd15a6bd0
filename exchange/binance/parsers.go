package binance

import (
	"encoding/json"
	"strings"

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

func parseMarket(m coerce.M) unified.Market {
	id := coerce.Upper(m, "symbol", "")
	base := coerce.Upper(m, "baseAsset", "")
	quote := coerce.Upper(m, "quoteAsset", "")

	precision := unified.Precision{
		Price:  int(coerce.Int(m, "quotePrecision", 8)),
		Amount: int(coerce.Int(m, "baseAssetPrecision", 8)),
	}
	limits := unified.Limits{}
	for _, raw := range asSlice(m["filters"]) {
		f := coerce.M(asMap(raw))
		switch coerce.Str(f, "filterType", "") {
		case "PRICE_FILTER":
			limits.Price = unified.Range{Min: coerce.Float(f, "minPrice", 0), Max: coerce.Float(f, "maxPrice", 0)}
		case "LOT_SIZE":
			limits.Amount = unified.Range{Min: coerce.Float(f, "minQty", 0), Max: coerce.Float(f, "maxQty", 0)}
		case "MIN_NOTIONAL", "NOTIONAL":
			limits.Cost = unified.Range{Min: coerce.Float(f, "minNotional", 0)}
		}
	}

	return unified.Market{
		Id:        id,
		Symbol:    base + "/" + quote,
		Base:      base,
		Quote:     quote,
		Active:    coerce.Upper(m, "status", "") == "TRADING",
		Precision: precision,
		Limits:    limits,
		Info:      m,
	}
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func parseTicker(symbol string, m coerce.M) unified.Ticker {
	t := unified.Ticker{
		Symbol:      symbol,
		Last:        coerce.Float(m, "lastPrice", 0),
		Bid:         coerce.Float(m, "bidPrice", 0),
		Ask:         coerce.Float(m, "askPrice", 0),
		BidVolume:   coerce.FloatPtr(m, "bidQty"),
		AskVolume:   coerce.FloatPtr(m, "askQty"),
		High:        coerce.Float(m, "highPrice", 0),
		Low:         coerce.Float(m, "lowPrice", 0),
		Open:        coerce.Float(m, "openPrice", 0),
		Volume:      coerce.Float(m, "volume", 0),
		QuoteVolume: coerce.FloatPtr(m, "quoteVolume"),
		Vwap:        coerce.FloatPtr(m, "weightedAvgPrice"),
		Timestamp:   coerce.Int(m, "closeTime", 0),
	}
	t.Close = t.Last
	t.Datetime = coerce.ISODatetime(t.Timestamp)
	t.FillChangeFields()
	return t
}

func parseOrderBook(symbol string, m coerce.M) unified.OrderBook {
	ob := unified.OrderBook{
		Symbol: symbol,
		Bids:   parseLevels(m["bids"]),
		Asks:   parseLevels(m["asks"]),
	}
	lastUpdateId := coerce.Int(m, "lastUpdateId", 0)
	if lastUpdateId != 0 {
		ob.Nonce = &lastUpdateId
	}
	return ob
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

func anyFloat(v any) float64 {
	return coerce.Float(coerce.M{"v": v}, "v", 0)
}

func parseTrade(symbol string, m coerce.M) unified.Trade {
	side := unified.SideBuy
	if coerce.Bool(m, "isBuyerMaker", false) {
		side = unified.SideSell
	}
	price := coerce.Float(m, "price", 0)
	amount := coerce.Float2(m, "qty", "amount", 0)
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
		Open:      parseCandleField(arr[1]),
		High:      parseCandleField(arr[2]),
		Low:       parseCandleField(arr[3]),
		Close:     parseCandleField(arr[4]),
		Volume:    parseCandleField(arr[5]),
	}
}

func parseCandleField(v any) float64 {
	if s, ok := v.(string); ok {
		return coerce.Float(coerce.M{"v": s}, "v", 0)
	}
	return anyFloat(v)
}

func parseOrderStatus(s string) unified.OrderStatus {
	switch strings.ToUpper(s) {
	case "NEW":
		return unified.OrderNew
	case "PARTIALLY_FILLED":
		return unified.OrderPartiallyFilled
	case "FILLED":
		return unified.OrderFilled
	case "CANCELED", "PENDING_CANCEL":
		return unified.OrderCanceled
	case "EXPIRED":
		return unified.OrderExpired
	case "REJECTED":
		return unified.OrderRejected
	default:
		return unified.OrderNew
	}
}

func parseOrder(symbol string, m coerce.M) unified.Order {
	o := unified.Order{
		Id:            coerce.Str(m, "orderId", ""),
		ClientOrderId: coerce.Str(m, "clientOrderId", ""),
		Symbol:        symbol,
		Type:          unified.OrderType(coerce.Upper(m, "type", "LIMIT")),
		Side:          unified.OrderSide(coerce.Upper(m, "side", "BUY")),
		Price:         coerce.Float(m, "price", 0),
		Amount:        coerce.Float(m, "origQty", 0),
		Filled:        coerce.Float(m, "executedQty", 0),
		Cost:          coerce.Float(m, "cummulativeQuoteQty", 0),
		Status:        parseOrderStatus(coerce.Str(m, "status", "")),
		Timestamp:     coerce.Int(m, "transactTime", coerce.Int(m, "time", 0)),
		Info:          m,
	}
	o.Datetime = coerce.ISODatetime(o.Timestamp)
	o.FillDerivedFields()
	return o
}

func parseMyTrade(symbol string, m coerce.M) unified.MyTrade {
	price := coerce.Float(m, "price", 0)
	amount := coerce.Float(m, "qty", 0)
	isMaker := coerce.Bool(m, "isMaker", false)
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
		IsMaker: &isMaker,
	}
}
