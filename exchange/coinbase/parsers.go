package coinbase

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

func parseMarket(m coerce.M) unified.Market {
	base := coerce.Str(m, "base_currency_id", "")
	quote := coerce.Str(m, "quote_currency_id", "")
	return unified.Market{
		Id:     coerce.Str(m, "product_id", ""),
		Symbol: base + "/" + quote,
		Base:   base,
		Quote:  quote,
		Active: coerce.Str(m, "status", "online") == "online" && !coerce.Bool(m, "trading_disabled", false),
		Limits: unified.Limits{
			Amount: unified.Range{Min: coerce.Float(m, "base_min_size", 0), Max: coerce.Float(m, "base_max_size", 0)},
		},
		Info: m,
	}
}

// parseTicker preserves the suspected source defect of spec.md §9: it reads
// the single-product descriptor from GET /products/{id}, not an actual
// price-snapshot endpoint, so most Ticker fields resolve to the market's
// static metadata rather than live bid/ask. quoteVolume is shoe-horned from
// volume_percentage_change_24h, not an actual quote-denominated volume.
func parseTicker(symbol string, m coerce.M) unified.Ticker {
	last := coerce.Float(m, "price", 0)
	volume := coerce.Float(m, "volume_24h", 0)
	qv := coerce.Float(m, "volume_percentage_change_24h", 0)
	t := unified.Ticker{
		Symbol:      symbol,
		Last:        last,
		Volume:      volume,
		QuoteVolume: &qv,
	}
	t.FillChangeFields()
	return t
}

func parseOrderBook(symbol string, m coerce.M) unified.OrderBook {
	pricebook := coerce.Sub(m, "pricebook")
	return unified.OrderBook{
		Symbol: symbol,
		Bids:   parseLevels(pricebook["bids"]),
		Asks:   parseLevels(pricebook["asks"]),
	}
}

func parseLevels(raw any) []unified.PriceLevel {
	arr := asSlice(raw)
	out := make([]unified.PriceLevel, 0, len(arr))
	for _, row := range arr {
		m := coerce.M(asMap(row))
		out = append(out, unified.PriceLevel{Price: coerce.Float(m, "price", 0), Size: coerce.Float(m, "size", 0)})
	}
	return out
}

func parseTrade(symbol string, m coerce.M) unified.Trade {
	price := coerce.Float(m, "price", 0)
	amount := coerce.Float(m, "size", 0)
	side := unified.SideBuy
	if coerce.Lower(m, "side", "") == "sell" {
		side = unified.SideSell
	}
	ts, _ := coerce.DateStringToMs(coerce.Str(m, "time", ""))
	return unified.Trade{
		Id:        coerce.Str(m, "trade_id", ""),
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
		Timestamp: coerce.Int(m, "start", 0) * 1000,
		Open:      coerce.Float(m, "open", 0),
		High:      coerce.Float(m, "high", 0),
		Low:       coerce.Float(m, "low", 0),
		Close:     coerce.Float(m, "close", 0),
		Volume:    coerce.Float(m, "volume", 0),
	}
}

func parseOrderStatus(s string) unified.OrderStatus {
	switch s {
	case "OPEN", "PENDING":
		return unified.OrderNew
	case "FILLED":
		return unified.OrderFilled
	case "CANCELLED":
		return unified.OrderCanceled
	case "EXPIRED":
		return unified.OrderExpired
	case "FAILED":
		return unified.OrderRejected
	default:
		return unified.OrderNew
	}
}

func (d *Driver) parseOrder(m coerce.M) unified.Order {
	symbol := d.fromVenueId(coerce.Str(m, "product_id", ""))
	side := unified.OrderSideBuy
	if coerce.Lower(m, "side", "") == "sell" {
		side = unified.OrderSideSell
	}
	cfg := coerce.Sub(m, "order_configuration")
	orderType := unified.OrderTypeLimit
	price := 0.0
	amount := 0.0
	if market := coerce.Sub(cfg, "market_market_ioc"); len(market) > 0 {
		orderType = unified.OrderTypeMarket
		amount = coerce.Float(market, "base_size", coerce.Float(market, "quote_size", 0))
	} else if limit := coerce.Sub(cfg, "limit_limit_gtc"); len(limit) > 0 {
		price = coerce.Float(limit, "limit_price", 0)
		amount = coerce.Float(limit, "base_size", 0)
	}
	ts, _ := coerce.DateStringToMs(coerce.Str(m, "created_time", ""))
	o := unified.Order{
		Id:        coerce.Str(m, "order_id", ""),
		Symbol:    symbol,
		Type:      orderType,
		Side:      side,
		Price:     price,
		Amount:    amount,
		Filled:    coerce.Float(m, "filled_size", 0),
		Cost:      coerce.Float(m, "filled_value", 0),
		Status:    parseOrderStatus(coerce.Upper(m, "status", "OPEN")),
		Timestamp: ts,
		Info:      m,
	}
	o.Datetime = coerce.ISODatetime(o.Timestamp)
	o.FillDerivedFields()
	return o
}

func (d *Driver) parseMyTrade(m coerce.M) unified.MyTrade {
	symbol := d.fromVenueId(coerce.Str(m, "product_id", ""))
	price := coerce.Float(m, "price", 0)
	amount := coerce.Float(m, "size", 0)
	ts, _ := coerce.DateStringToMs(coerce.Str(m, "trade_time", ""))
	return unified.MyTrade{
		Trade: unified.Trade{
			Id:        coerce.Str(m, "trade_id", ""),
			Symbol:    symbol,
			Price:     price,
			Amount:    amount,
			Cost:      price * amount,
			Timestamp: ts,
			Datetime:  coerce.ISODatetime(ts),
			Info:      m,
		},
		OrderId: coerce.Str(m, "order_id", ""),
		Fee:     unified.Fee{Cost: coerce.Float(m, "commission", 0)},
	}
}
