package bittrex

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

var timeframes = map[string]string{
	"1m": "MINUTE_1", "5m": "MINUTE_5", "1h": "HOUR_1", "1d": "DAY_1",
}

func (d *Driver) LoadMarkets(ctx context.Context, reload bool) (map[string]unified.Market, error) {
	if d.Loaded() && !reload {
		return d.Markets(), nil
	}
	body, err := d.Do(ctx, http.MethodGet, "/markets", nil, false, 1)
	if err != nil {
		return nil, err
	}
	arr, err := decodeArray(body)
	if err != nil {
		return nil, err
	}
	markets := make(map[string]unified.Market, len(arr))
	byId := make(map[string]unified.Market, len(arr))
	symbolList := make([]string, 0, len(arr))
	for _, raw := range arr {
		mkt := parseMarket(coerce.M(asMap(raw)))
		markets[mkt.Symbol] = mkt
		byId[mkt.Id] = mkt
		symbolList = append(symbolList, mkt.Symbol)
	}
	d.Publish(markets, byId, symbolList)
	return markets, nil
}

func (d *Driver) FetchTicker(ctx context.Context, symbol string) (unified.Ticker, error) {
	id := toVenueId(symbol)
	tickBody, err := d.Do(ctx, http.MethodGet, "/markets/"+id+"/ticker", nil, false, 1)
	if err != nil {
		return unified.Ticker{}, err
	}
	tick, err := decodeObject(tickBody)
	if err != nil {
		return unified.Ticker{}, err
	}
	summaryBody, err := d.Do(ctx, http.MethodGet, "/markets/"+id+"/summary", nil, false, 1)
	if err != nil {
		return unified.Ticker{}, err
	}
	summary, err := decodeObject(summaryBody)
	if err != nil {
		return unified.Ticker{}, err
	}
	return parseTicker(symbol, tick, summary), nil
}

func (d *Driver) FetchTickers(ctx context.Context, syms []string) (map[string]unified.Ticker, error) {
	out := make(map[string]unified.Ticker, len(syms))
	for _, s := range syms {
		t, err := d.FetchTicker(ctx, s)
		if err != nil {
			log.Warn().Err(err).Str("symbol", s).Msg("bittrex: fetchTickers skipping symbol")
			continue
		}
		out[s] = t
	}
	return out, nil
}

func (d *Driver) FetchOrderBook(ctx context.Context, symbol string, limit int) (unified.OrderBook, error) {
	id := toVenueId(symbol)
	depth := "25"
	if limit > 25 {
		depth = "500"
	}
	body, err := d.Do(ctx, http.MethodGet, "/markets/"+id+"/orderbook", map[string]string{"depth": depth}, false, 1)
	if err != nil {
		return unified.OrderBook{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.OrderBook{}, err
	}
	return parseOrderBook(symbol, m), nil
}

func (d *Driver) FetchTrades(ctx context.Context, symbol string, since int64, limit int) ([]unified.Trade, error) {
	id := toVenueId(symbol)
	body, err := d.Do(ctx, http.MethodGet, "/markets/"+id+"/trades", nil, false, 1)
	if err != nil {
		return nil, err
	}
	arr, err := decodeArray(body)
	if err != nil {
		return nil, err
	}
	out := make([]unified.Trade, 0, len(arr))
	for _, raw := range arr {
		out = append(out, parseTrade(symbol, coerce.M(asMap(raw))))
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (d *Driver) FetchOHLCV(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]unified.Candle, error) {
	id := toVenueId(symbol)
	tf, ok := timeframes[timeframe]
	if !ok {
		tf = timeframe
	}
	body, err := d.Do(ctx, http.MethodGet, "/markets/"+id+"/candles/"+tf+"/recent", nil, false, 1)
	if err != nil {
		return nil, err
	}
	arr, err := decodeArray(body)
	if err != nil {
		return nil, err
	}
	out := make([]unified.Candle, 0, len(arr))
	for _, raw := range arr {
		out = append(out, parseCandle(coerce.M(asMap(raw))))
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// CreateOrder defaults timeInForce to IMMEDIATE_OR_CANCEL for market orders
// and GOOD_TIL_CANCELLED for limit orders, per spec.md line 140.
func (d *Driver) CreateOrder(ctx context.Context, symbol string, orderType unified.OrderType, side unified.OrderSide, amount, price float64) (unified.Order, error) {
	id := toVenueId(symbol)
	timeInForce := "GOOD_TIL_CANCELLED"
	upperType := "LIMIT"
	if orderType == unified.OrderTypeMarket {
		timeInForce = "IMMEDIATE_OR_CANCEL"
		upperType = "MARKET"
	}
	params := map[string]string{
		"marketSymbol": id,
		"direction":    upperSide(side),
		"type":         upperType,
		"quantity":     strconv.FormatFloat(amount, 'f', -1, 64),
		"timeInForce":  timeInForce,
	}
	if orderType == unified.OrderTypeLimit {
		params["limit"] = strconv.FormatFloat(price, 'f', -1, 64)
	}
	body, err := d.Do(ctx, http.MethodPost, "/orders", params, true, 1)
	if err != nil {
		return unified.Order{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Order{}, err
	}
	return d.parseOrder(m), nil
}

func upperSide(s unified.OrderSide) string {
	if s == unified.OrderSideSell {
		return "SELL"
	}
	return "BUY"
}

func (d *Driver) CancelOrder(ctx context.Context, orderId string) error {
	_, err := d.Do(ctx, http.MethodDelete, "/orders/"+orderId, nil, true, 1)
	return err
}

func (d *Driver) CancelAllOrders(ctx context.Context) error {
	_, err := d.Do(ctx, http.MethodDelete, "/orders/open", nil, true, 1)
	return err
}

func (d *Driver) FetchOrder(ctx context.Context, orderId string) (unified.Order, error) {
	body, err := d.Do(ctx, http.MethodGet, "/orders/"+orderId, nil, true, 1)
	if err != nil {
		return unified.Order{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Order{}, err
	}
	return d.parseOrder(m), nil
}

func (d *Driver) fetchOrdersByPath(ctx context.Context, path string) ([]unified.Order, error) {
	body, err := d.Do(ctx, http.MethodGet, path, nil, true, 1)
	if err != nil {
		return nil, err
	}
	arr, err := decodeArray(body)
	if err != nil {
		return nil, err
	}
	out := make([]unified.Order, 0, len(arr))
	for _, raw := range arr {
		out = append(out, d.parseOrder(coerce.M(asMap(raw))))
	}
	return out, nil
}

func (d *Driver) FetchOpenOrders(ctx context.Context) ([]unified.Order, error) {
	return d.fetchOrdersByPath(ctx, "/orders/open")
}

func (d *Driver) FetchClosedOrders(ctx context.Context) ([]unified.Order, error) {
	return d.fetchOrdersByPath(ctx, "/orders/closed")
}

func (d *Driver) FetchMyTrades(ctx context.Context, since int64, limit int) ([]unified.MyTrade, error) {
	body, err := d.Do(ctx, http.MethodGet, "/executions", nil, true, 1)
	if err != nil {
		return nil, err
	}
	arr, err := decodeArray(body)
	if err != nil {
		return nil, err
	}
	out := make([]unified.MyTrade, 0, len(arr))
	for _, raw := range arr {
		out = append(out, d.parseMyTrade(coerce.M(asMap(raw))))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (d *Driver) FetchBalance(ctx context.Context) (unified.Balance, error) {
	body, err := d.Do(ctx, http.MethodGet, "/balances", nil, true, 1)
	if err != nil {
		return unified.Balance{}, err
	}
	arr, err := decodeArray(body)
	if err != nil {
		return unified.Balance{}, err
	}
	currencies := make(map[string]unified.BalanceEntry, len(arr))
	for _, raw := range arr {
		m := coerce.M(asMap(raw))
		total := coerce.Float(m, "total", 0)
		available := coerce.Float(m, "available", 0)
		currencies[coerce.Str(m, "currencySymbol", "")] = unified.BalanceEntry{
			Free:  available,
			Used:  total - available,
			Total: total,
		}
	}
	return unified.Balance{Currencies: currencies}, nil
}

func (d *Driver) FetchTradingFees(ctx context.Context) (unified.TradingFee, error) {
	return d.DefaultFees, nil
}
