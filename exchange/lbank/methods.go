package lbank

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

var timeframes = map[string]string{
	"1m": "minute1", "5m": "minute5", "15m": "minute15", "30m": "minute30",
	"1h": "hour1", "4h": "hour4", "1d": "day1", "1w": "week1",
}

func (d *Driver) LoadMarkets(ctx context.Context, reload bool) (map[string]unified.Market, error) {
	if d.Loaded() && !reload {
		return d.Markets(), nil
	}
	body, err := d.Do(ctx, http.MethodGet, "/v2/accuracy.do", nil, false, 1)
	if err != nil {
		return nil, err
	}
	rows, err := decodeArray(body)
	if err != nil {
		return nil, err
	}
	markets := make(map[string]unified.Market, len(rows))
	byId := make(map[string]unified.Market, len(rows))
	symbolList := make([]string, 0, len(rows))
	for _, raw := range rows {
		row := coerce.M(asMap(raw))
		id := coerce.Str(row, "symbol", "")
		if id == "" {
			continue
		}
		mkt := parseMarket(id, row)
		markets[mkt.Symbol] = mkt
		byId[mkt.Id] = mkt
		symbolList = append(symbolList, mkt.Symbol)
	}
	d.Publish(markets, byId, symbolList)
	return markets, nil
}

func (d *Driver) FetchTicker(ctx context.Context, symbol string) (unified.Ticker, error) {
	id := toVenueId(symbol)
	body, err := d.Do(ctx, http.MethodGet, "/v2/ticker/24hr.do", map[string]string{"symbol": id}, false, 1)
	if err != nil {
		return unified.Ticker{}, err
	}
	rows, err := decodeArray(body)
	if err != nil || len(rows) == 0 {
		return unified.Ticker{Symbol: symbol}, err
	}
	return parseTicker(symbol, coerce.M(asMap(rows[0]))), nil
}

func (d *Driver) FetchTickers(ctx context.Context, syms []string) (map[string]unified.Ticker, error) {
	out := make(map[string]unified.Ticker, len(syms))
	for _, s := range syms {
		t, err := d.FetchTicker(ctx, s)
		if err != nil {
			log.Warn().Err(err).Str("symbol", s).Msg("lbank: fetchTickers skipping symbol")
			continue
		}
		out[s] = t
	}
	return out, nil
}

func (d *Driver) FetchOrderBook(ctx context.Context, symbol string, limit int) (unified.OrderBook, error) {
	id := toVenueId(symbol)
	if limit <= 0 {
		limit = 60
	}
	params := map[string]string{"symbol": id, "size": strconv.Itoa(limit)}
	body, err := d.Do(ctx, http.MethodGet, "/v2/depth.do", params, false, 1)
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
	params := map[string]string{"symbol": id}
	if limit > 0 {
		params["size"] = strconv.Itoa(limit)
	}
	if since > 0 {
		params["time"] = strconv.FormatInt(since, 10)
	}
	body, err := d.Do(ctx, http.MethodGet, "/v2/trades.do", params, false, 1)
	if err != nil {
		return nil, err
	}
	rows, err := decodeArray(body)
	if err != nil {
		return nil, err
	}
	out := make([]unified.Trade, 0, len(rows))
	for _, raw := range rows {
		out = append(out, parseTrade(symbol, coerce.M(asMap(raw))))
	}
	return out, nil
}

func (d *Driver) FetchOHLCV(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]unified.Candle, error) {
	id := toVenueId(symbol)
	tf, ok := timeframes[timeframe]
	if !ok {
		tf = timeframe
	}
	if limit <= 0 {
		limit = 100
	}
	params := map[string]string{"symbol": id, "type": tf, "size": strconv.Itoa(limit)}
	if since > 0 {
		params["time"] = strconv.FormatInt(since/1000, 10)
	}
	body, err := d.Do(ctx, http.MethodGet, "/v2/kline.do", params, false, 1)
	if err != nil {
		return nil, err
	}
	rows, err := decodeArray(body)
	if err != nil {
		return nil, err
	}
	out := make([]unified.Candle, 0, len(rows))
	for _, raw := range rows {
		out = append(out, parseCandle(asSlice(raw)))
	}
	return out, nil
}

func (d *Driver) CreateOrder(ctx context.Context, symbol string, orderType unified.OrderType, side unified.OrderSide, amount, price float64) (unified.Order, error) {
	id := toVenueId(symbol)
	venueType := "buy"
	if side == unified.OrderSideSell {
		venueType = "sell"
	}
	if orderType == unified.OrderTypeMarket {
		venueType += "_market"
	}
	params := map[string]string{
		"symbol": id,
		"type":   venueType,
		"amount": strconv.FormatFloat(amount, 'f', -1, 64),
	}
	if orderType != unified.OrderTypeMarket {
		params["price"] = strconv.FormatFloat(price, 'f', -1, 64)
	}
	body, err := d.Do(ctx, http.MethodPost, "/v2/create_order.do", params, true, 1)
	if err != nil {
		return unified.Order{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Order{}, err
	}
	o := unified.Order{
		Id:     coerce.Str(m, "order_id", ""),
		Symbol: symbol,
		Type:   orderType,
		Side:   side,
		Price:  price,
		Amount: amount,
		Status: unified.OrderNew,
		Info:   m,
	}
	o.FillDerivedFields()
	return o, nil
}

func (d *Driver) CancelOrder(ctx context.Context, orderId string) error {
	_, err := d.Do(ctx, http.MethodPost, "/v2/cancel_order.do", map[string]string{"order_id": orderId}, true, 1)
	return err
}

func (d *Driver) FetchOrder(ctx context.Context, orderId string) (unified.Order, error) {
	body, err := d.Do(ctx, http.MethodPost, "/v2/order_info.do", map[string]string{"order_id": orderId}, true, 1)
	if err != nil {
		return unified.Order{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Order{}, err
	}
	orders := asSlice(m["orders"])
	if len(orders) > 0 {
		return d.parseOrder(coerce.M(asMap(orders[0]))), nil
	}
	return d.parseOrder(m), nil
}

func (d *Driver) fetchOrdersByStatus(ctx context.Context, status string) ([]unified.Order, error) {
	params := map[string]string{"status": status, "current_page": "1", "page_length": "100"}
	body, err := d.Do(ctx, http.MethodPost, "/v2/orders_info_history.do", params, true, 1)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	orders := asSlice(m["orders"])
	out := make([]unified.Order, 0, len(orders))
	for _, raw := range orders {
		out = append(out, d.parseOrder(coerce.M(asMap(raw))))
	}
	return out, nil
}

func (d *Driver) FetchOpenOrders(ctx context.Context) ([]unified.Order, error) {
	return d.fetchOrdersByStatus(ctx, "0")
}

func (d *Driver) FetchClosedOrders(ctx context.Context) ([]unified.Order, error) {
	return d.fetchOrdersByStatus(ctx, "2")
}

func (d *Driver) FetchMyTrades(ctx context.Context, since int64, limit int) ([]unified.MyTrade, error) {
	params := map[string]string{"current_page": "1"}
	if limit > 0 {
		params["page_length"] = strconv.Itoa(limit)
	}
	body, err := d.Do(ctx, http.MethodPost, "/v2/order_transaction_detail.do", params, true, 1)
	if err != nil {
		return nil, err
	}
	rows, err := decodeArray(body)
	if err != nil {
		return nil, err
	}
	out := make([]unified.MyTrade, 0, len(rows))
	for _, raw := range rows {
		out = append(out, d.parseMyTrade(coerce.M(asMap(raw))))
	}
	return out, nil
}

func (d *Driver) FetchBalance(ctx context.Context) (unified.Balance, error) {
	body, err := d.Do(ctx, http.MethodPost, "/v2/user_info.do", nil, true, 1)
	if err != nil {
		return unified.Balance{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Balance{}, err
	}
	free := coerce.Sub(m, "free")
	freeze := coerce.Sub(m, "freeze")
	currencies := make(map[string]unified.BalanceEntry, len(free))
	for coin := range free {
		f := parseAmount(free[coin])
		used := parseAmount(freeze[coin])
		currencies[coin] = unified.BalanceEntry{Free: f, Used: used, Total: f + used}
	}
	return unified.Balance{Currencies: currencies}, nil
}

func (d *Driver) FetchTradingFees(ctx context.Context) (unified.TradingFee, error) {
	return d.DefaultFees, nil
}
