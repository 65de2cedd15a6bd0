package pionex

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

var timeframes = map[string]string{
	"1m": "1M", "5m": "5M", "15m": "15M", "1h": "60M", "4h": "4H", "1d": "1D",
}

func (d *Driver) LoadMarkets(ctx context.Context, reload bool) (map[string]unified.Market, error) {
	if d.Loaded() && !reload {
		return d.Markets(), nil
	}
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/common/symbols", nil, false, 1)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	symbols := asSlice(m["symbols"])
	markets := make(map[string]unified.Market, len(symbols))
	byId := make(map[string]unified.Market, len(symbols))
	symbolList := make([]string, 0, len(symbols))
	for _, raw := range symbols {
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
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/market/tickers", map[string]string{"symbol": id}, false, 1)
	if err != nil {
		return unified.Ticker{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Ticker{}, err
	}
	tickers := asSlice(m["tickers"])
	if len(tickers) == 0 {
		return unified.Ticker{Symbol: symbol}, nil
	}
	return parseTicker(symbol, coerce.M(asMap(tickers[0]))), nil
}

func (d *Driver) FetchTickers(ctx context.Context, syms []string) (map[string]unified.Ticker, error) {
	out := make(map[string]unified.Ticker, len(syms))
	for _, s := range syms {
		t, err := d.FetchTicker(ctx, s)
		if err != nil {
			log.Warn().Err(err).Str("symbol", s).Msg("pionex: fetchTickers skipping symbol")
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
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/market/depth", params, false, 1)
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
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/market/trades", params, false, 1)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	trades := asSlice(m["trades"])
	out := make([]unified.Trade, 0, len(trades))
	for _, raw := range trades {
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
	params := map[string]string{"symbol": id, "interval": tf}
	if since > 0 {
		params["startTime"] = strconv.FormatInt(since, 10)
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/market/klines", params, false, 1)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	rows := asSlice(m["klines"])
	out := make([]unified.Candle, 0, len(rows))
	for _, raw := range rows {
		out = append(out, parseCandle(coerce.M(asMap(raw))))
	}
	return out, nil
}

// CreateOrder preserves spec.md line 140's Pionex quirk: a market buy's
// amount travels under "amount" (quote currency), while a market sell's
// amount travels under "size" (base currency).
func (d *Driver) CreateOrder(ctx context.Context, symbol string, orderType unified.OrderType, side unified.OrderSide, amount, price float64) (unified.Order, error) {
	id := toVenueId(symbol)
	params := map[string]string{
		"clientOrderId": uuid.NewString(),
		"symbol":        id,
		"side":          string(side),
		"type":          string(orderType),
	}
	if orderType == unified.OrderTypeMarket {
		if side == unified.OrderSideBuy {
			params["amount"] = strconv.FormatFloat(amount, 'f', -1, 64)
		} else {
			params["size"] = strconv.FormatFloat(amount, 'f', -1, 64)
		}
	} else {
		params["size"] = strconv.FormatFloat(amount, 'f', -1, 64)
		params["price"] = strconv.FormatFloat(price, 'f', -1, 64)
	}
	body, err := d.Do(ctx, http.MethodPost, "/api/v1/trade/order", params, true, 1)
	if err != nil {
		return unified.Order{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Order{}, err
	}
	o := unified.Order{
		Id:     coerce.Str(m, "orderId", ""),
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
	_, err := d.Do(ctx, http.MethodDelete, "/api/v1/trade/order", map[string]string{"orderId": orderId}, true, 1)
	return err
}

func (d *Driver) CancelAllOrders(ctx context.Context) error {
	_, err := d.Do(ctx, http.MethodDelete, "/api/v1/trade/allOrders", nil, true, 1)
	return err
}

func (d *Driver) FetchOrder(ctx context.Context, orderId string) (unified.Order, error) {
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/trade/order", map[string]string{"orderId": orderId}, true, 1)
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
	return d.fetchOrdersByPath(ctx, "/api/v1/trade/openOrders")
}

func (d *Driver) FetchClosedOrders(ctx context.Context) ([]unified.Order, error) {
	return d.fetchOrdersByPath(ctx, "/api/v1/trade/allOrders")
}

func (d *Driver) FetchMyTrades(ctx context.Context, since int64, limit int) ([]unified.MyTrade, error) {
	params := map[string]string{}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/trade/fills", params, true, 1)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	fills := asSlice(m["fills"])
	out := make([]unified.MyTrade, 0, len(fills))
	for _, raw := range fills {
		out = append(out, d.parseMyTrade(coerce.M(asMap(raw))))
	}
	return out, nil
}

func (d *Driver) FetchBalance(ctx context.Context) (unified.Balance, error) {
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/account/balances", nil, true, 1)
	if err != nil {
		return unified.Balance{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Balance{}, err
	}
	balances := asSlice(m["balances"])
	currencies := make(map[string]unified.BalanceEntry, len(balances))
	for _, raw := range balances {
		b := coerce.M(asMap(raw))
		free := coerce.Float(b, "free", 0)
		frozen := coerce.Float(b, "frozen", 0)
		currencies[coerce.Str(b, "coin", "")] = unified.BalanceEntry{Free: free, Used: frozen, Total: free + frozen}
	}
	return unified.Balance{Currencies: currencies}, nil
}

func (d *Driver) FetchTradingFees(ctx context.Context) (unified.TradingFee, error) {
	return d.DefaultFees, nil
}
