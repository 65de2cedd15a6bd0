package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

var timeframes = map[string]string{
	"1m": "1m", "5m": "5m", "15m": "15m", "1h": "1h", "4h": "4h", "1d": "1d",
}

func (d *Driver) LoadMarkets(ctx context.Context, reload bool) (map[string]unified.Market, error) {
	if d.Loaded() && !reload {
		return d.Markets(), nil
	}
	body, err := d.Do(ctx, http.MethodGet, "/api/v3/exchangeInfo", nil, false, 10)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return nil, fmt.Errorf("binance: decode exchangeInfo: %w", err)
	}
	rows := asSlice(m["symbols"])

	markets := make(map[string]unified.Market, len(rows))
	byId := make(map[string]unified.Market, len(rows))
	symbolList := make([]string, 0, len(rows))
	for _, row := range rows {
		mkt := parseMarket(coerce.M(asMap(row)))
		markets[mkt.Symbol] = mkt
		byId[mkt.Id] = mkt
		symbolList = append(symbolList, mkt.Symbol)
	}
	d.Publish(markets, byId, symbolList)
	return markets, nil
}

func (d *Driver) FetchTicker(ctx context.Context, symbol string) (unified.Ticker, error) {
	id := toVenueId(symbol)
	body, err := d.Do(ctx, http.MethodGet, "/api/v3/ticker/24hr", map[string]string{"symbol": id}, false, 1)
	if err != nil {
		return unified.Ticker{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Ticker{}, err
	}
	return parseTicker(symbol, m), nil
}

func (d *Driver) FetchTickers(ctx context.Context, syms []string) (map[string]unified.Ticker, error) {
	out := make(map[string]unified.Ticker, len(syms))
	for _, s := range syms {
		t, err := d.FetchTicker(ctx, s)
		if err != nil {
			log.Warn().Err(err).Str("symbol", s).Msg("binance: fetchTickers skipping symbol")
			continue
		}
		out[s] = t
	}
	return out, nil
}

func (d *Driver) FetchOrderBook(ctx context.Context, symbol string, limit int) (unified.OrderBook, error) {
	id := toVenueId(symbol)
	params := map[string]string{"symbol": id}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := d.Do(ctx, http.MethodGet, "/api/v3/depth", params, false, 1)
	if err != nil {
		return unified.OrderBook{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.OrderBook{}, err
	}
	ob := parseOrderBook(symbol, m)
	ob.Timestamp = 0
	ob.Datetime = coerce.ISODatetime(ob.Timestamp)
	return ob, nil
}

func (d *Driver) FetchTrades(ctx context.Context, symbol string, since int64, limit int) ([]unified.Trade, error) {
	id := toVenueId(symbol)
	params := map[string]string{"symbol": id}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := d.Do(ctx, http.MethodGet, "/api/v3/trades", params, false, 1)
	if err != nil {
		return nil, err
	}
	rows, err := decodeArray(body)
	if err != nil {
		return nil, err
	}
	out := make([]unified.Trade, 0, len(rows))
	for _, row := range rows {
		t := parseTrade(symbol, row)
		if since > 0 && t.Timestamp < since {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (d *Driver) FetchOHLCV(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]unified.Candle, error) {
	id := toVenueId(symbol)
	interval, ok := timeframes[timeframe]
	if !ok {
		interval = timeframe
	}
	params := map[string]string{"symbol": id, "interval": interval}
	if since > 0 {
		params["startTime"] = strconv.FormatInt(since, 10)
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := d.Do(ctx, http.MethodGet, "/api/v3/klines", params, false, 1)
	if err != nil {
		return nil, err
	}
	var arr []any
	if err := json.Unmarshal(body, &arr); err != nil {
		return nil, err
	}
	out := make([]unified.Candle, 0, len(arr))
	for _, row := range arr {
		out = append(out, parseCandle(row))
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (d *Driver) CreateOrder(ctx context.Context, symbol string, orderType unified.OrderType, side unified.OrderSide, amount, price float64) (unified.Order, error) {
	id := toVenueId(symbol)
	params := map[string]string{
		"symbol":           id,
		"side":             string(side),
		"type":             string(orderType),
		"quantity":         strconv.FormatFloat(amount, 'f', -1, 64),
		"newClientOrderId": uuid.NewString(),
	}
	if orderType == unified.OrderTypeLimit {
		params["price"] = strconv.FormatFloat(price, 'f', -1, 64)
		params["timeInForce"] = "GTC"
	}
	body, err := d.Do(ctx, http.MethodPost, "/api/v3/order", params, true, 1)
	if err != nil {
		return unified.Order{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Order{}, err
	}
	return parseOrder(symbol, m), nil
}

func (d *Driver) CancelOrder(ctx context.Context, symbol, orderId string) error {
	id := toVenueId(symbol)
	_, err := d.Do(ctx, http.MethodDelete, "/api/v3/order", map[string]string{"symbol": id, "orderId": orderId}, true, 1)
	return err
}

func (d *Driver) CancelAllOrders(ctx context.Context, symbol string) error {
	id := toVenueId(symbol)
	_, err := d.Do(ctx, http.MethodDelete, "/api/v3/openOrders", map[string]string{"symbol": id}, true, 1)
	return err
}

func (d *Driver) FetchOrder(ctx context.Context, symbol, orderId string) (unified.Order, error) {
	id := toVenueId(symbol)
	body, err := d.Do(ctx, http.MethodGet, "/api/v3/order", map[string]string{"symbol": id, "orderId": orderId}, true, 2)
	if err != nil {
		return unified.Order{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Order{}, err
	}
	return parseOrder(symbol, m), nil
}

func (d *Driver) FetchOpenOrders(ctx context.Context, symbol string) ([]unified.Order, error) {
	params := map[string]string{}
	if symbol != "" {
		params["symbol"] = toVenueId(symbol)
	}
	body, err := d.Do(ctx, http.MethodGet, "/api/v3/openOrders", params, true, 3)
	if err != nil {
		return nil, err
	}
	rows, err := decodeArray(body)
	if err != nil {
		return nil, err
	}
	out := make([]unified.Order, 0, len(rows))
	for _, row := range rows {
		sym := d.fromVenueId(coerce.Str(row, "symbol", ""))
		out = append(out, parseOrder(sym, row))
	}
	return out, nil
}

func (d *Driver) FetchClosedOrders(ctx context.Context, symbol string) ([]unified.Order, error) {
	id := toVenueId(symbol)
	body, err := d.Do(ctx, http.MethodGet, "/api/v3/allOrders", map[string]string{"symbol": id}, true, 10)
	if err != nil {
		return nil, err
	}
	rows, err := decodeArray(body)
	if err != nil {
		return nil, err
	}
	out := make([]unified.Order, 0, len(rows))
	for _, row := range rows {
		status := parseOrderStatus(coerce.Str(row, "status", ""))
		if status == unified.OrderNew || status == unified.OrderPartiallyFilled {
			continue
		}
		out = append(out, parseOrder(symbol, row))
	}
	return out, nil
}

func (d *Driver) FetchMyTrades(ctx context.Context, symbol string, since int64, limit int) ([]unified.MyTrade, error) {
	id := toVenueId(symbol)
	params := map[string]string{"symbol": id}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	if since > 0 {
		params["startTime"] = strconv.FormatInt(since, 10)
	}
	body, err := d.Do(ctx, http.MethodGet, "/api/v3/myTrades", params, true, 10)
	if err != nil {
		return nil, err
	}
	rows, err := decodeArray(body)
	if err != nil {
		return nil, err
	}
	out := make([]unified.MyTrade, 0, len(rows))
	for _, row := range rows {
		out = append(out, parseMyTrade(symbol, row))
	}
	return out, nil
}

func (d *Driver) FetchBalance(ctx context.Context) (unified.Balance, error) {
	body, err := d.Do(ctx, http.MethodGet, "/api/v3/account", nil, true, 10)
	if err != nil {
		return unified.Balance{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Balance{}, err
	}
	currencies := make(map[string]unified.BalanceEntry)
	for _, row := range asSlice(m["balances"]) {
		b := coerce.M(asMap(row))
		ccy := coerce.Upper(b, "asset", "")
		free := coerce.Float(b, "free", 0)
		locked := coerce.Float(b, "locked", 0)
		currencies[ccy] = unified.BalanceEntry{Free: free, Used: locked, Total: free + locked}
	}
	return unified.Balance{Currencies: currencies, Info: m}, nil
}

func (d *Driver) FetchTradingFees(ctx context.Context) (unified.TradingFee, error) {
	return d.DefaultFees, nil
}
