package kraken

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

var timeframes = map[string]string{
	"1m": "1", "5m": "5", "15m": "15", "1h": "60", "4h": "240", "1d": "1440",
}

func (d *Driver) LoadMarkets(ctx context.Context, reload bool) (map[string]unified.Market, error) {
	if d.Loaded() && !reload {
		return d.Markets(), nil
	}
	body, err := d.Do(ctx, http.MethodGet, "/0/public/AssetPairs", nil, false, 1)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return nil, fmt.Errorf("kraken: decode AssetPairs: %w", err)
	}

	markets := make(map[string]unified.Market, len(m))
	byId := make(map[string]unified.Market, len(m))
	symbolList := make([]string, 0, len(m))
	for id, raw := range m {
		mkt := parseMarket(id, coerce.M(asMap(raw)))
		markets[mkt.Symbol] = mkt
		byId[id] = mkt
		if altname := coerce.Str(coerce.M(asMap(raw)), "altname", ""); altname != "" {
			byId[altname] = mkt
		}
		symbolList = append(symbolList, mkt.Symbol)
	}
	d.Publish(markets, byId, symbolList)
	return markets, nil
}

func (d *Driver) FetchTicker(ctx context.Context, symbol string) (unified.Ticker, error) {
	id := d.toVenueId(symbol)
	body, err := d.Do(ctx, http.MethodGet, "/0/public/Ticker", map[string]string{"pair": id}, false, 1)
	if err != nil {
		return unified.Ticker{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Ticker{}, err
	}
	for _, raw := range m {
		return parseTicker(symbol, coerce.M(asMap(raw))), nil
	}
	return unified.Ticker{}, unified.NewVenueError(unified.BadSymbol, "kraken", "", "no ticker data")
}

func (d *Driver) FetchTickers(ctx context.Context, syms []string) (map[string]unified.Ticker, error) {
	out := make(map[string]unified.Ticker, len(syms))
	for _, s := range syms {
		t, err := d.FetchTicker(ctx, s)
		if err != nil {
			log.Warn().Err(err).Str("symbol", s).Msg("kraken: fetchTickers skipping symbol")
			continue
		}
		out[s] = t
	}
	return out, nil
}

func (d *Driver) FetchOrderBook(ctx context.Context, symbol string, limit int) (unified.OrderBook, error) {
	id := d.toVenueId(symbol)
	params := map[string]string{"pair": id}
	if limit > 0 {
		params["count"] = strconv.Itoa(limit)
	}
	body, err := d.Do(ctx, http.MethodGet, "/0/public/Depth", params, false, 1)
	if err != nil {
		return unified.OrderBook{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.OrderBook{}, err
	}
	for _, raw := range m {
		return parseOrderBook(symbol, coerce.M(asMap(raw))), nil
	}
	return unified.OrderBook{}, nil
}

func (d *Driver) FetchTrades(ctx context.Context, symbol string, since int64, limit int) ([]unified.Trade, error) {
	id := d.toVenueId(symbol)
	params := map[string]string{"pair": id}
	if since > 0 {
		params["since"] = strconv.FormatInt(since*1000000, 10)
	}
	body, err := d.Do(ctx, http.MethodGet, "/0/public/Trades", params, false, 1)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	var out []unified.Trade
	for key, raw := range m {
		if key == "last" {
			continue
		}
		for _, row := range asSlice(raw) {
			out = append(out, parseTrade(symbol, row))
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (d *Driver) FetchOHLCV(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]unified.Candle, error) {
	id := d.toVenueId(symbol)
	interval, ok := timeframes[timeframe]
	if !ok {
		interval = timeframe
	}
	params := map[string]string{"pair": id, "interval": interval}
	if since > 0 {
		params["since"] = strconv.FormatInt(since/1000, 10)
	}
	body, err := d.Do(ctx, http.MethodGet, "/0/public/OHLC", params, false, 1)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	var out []unified.Candle
	for key, raw := range m {
		if key == "last" {
			continue
		}
		for _, row := range asSlice(raw) {
			out = append(out, parseCandle(row))
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (d *Driver) CreateOrder(ctx context.Context, symbol string, orderType unified.OrderType, side unified.OrderSide, amount, price float64) (unified.Order, error) {
	id := d.toVenueId(symbol)
	params := map[string]string{
		"pair":      id,
		"type":      lowerSide(side),
		"ordertype": lowerType(orderType),
		"volume":    strconv.FormatFloat(amount, 'f', -1, 64),
	}
	if orderType == unified.OrderTypeLimit {
		params["price"] = strconv.FormatFloat(price, 'f', -1, 64)
	}
	body, err := d.Do(ctx, http.MethodPost, "/0/private/AddOrder", params, true, 1)
	if err != nil {
		return unified.Order{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Order{}, err
	}
	ids := asSlice(m["txid"])
	orderId := ""
	if len(ids) > 0 {
		orderId, _ = ids[0].(string)
	}
	o := unified.Order{
		Id:     orderId,
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

func lowerSide(s unified.OrderSide) string {
	if s == unified.OrderSideSell {
		return "sell"
	}
	return "buy"
}

func lowerType(t unified.OrderType) string {
	if t == unified.OrderTypeMarket {
		return "market"
	}
	return "limit"
}

func (d *Driver) CancelOrder(ctx context.Context, orderId string) error {
	_, err := d.Do(ctx, http.MethodPost, "/0/private/CancelOrder", map[string]string{"txid": orderId}, true, 1)
	return err
}

func (d *Driver) CancelAllOrders(ctx context.Context) error {
	_, err := d.Do(ctx, http.MethodPost, "/0/private/CancelAll", nil, true, 1)
	return err
}

func (d *Driver) FetchOrder(ctx context.Context, orderId string) (unified.Order, error) {
	body, err := d.Do(ctx, http.MethodPost, "/0/private/QueryOrders", map[string]string{"txid": orderId}, true, 1)
	if err != nil {
		return unified.Order{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Order{}, err
	}
	if raw, ok := m[orderId]; ok {
		return d.parseOrder(orderId, coerce.M(asMap(raw))), nil
	}
	return unified.Order{}, unified.NewVenueError(unified.OrderNotFound, "kraken", "", "order not found")
}

func (d *Driver) FetchOpenOrders(ctx context.Context) ([]unified.Order, error) {
	body, err := d.Do(ctx, http.MethodPost, "/0/private/OpenOrders", nil, true, 1)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	open := coerce.Sub(m, "open")
	out := make([]unified.Order, 0, len(open))
	for id, raw := range open {
		out = append(out, d.parseOrder(id, coerce.M(asMap(raw))))
	}
	return out, nil
}

func (d *Driver) FetchClosedOrders(ctx context.Context) ([]unified.Order, error) {
	body, err := d.Do(ctx, http.MethodPost, "/0/private/ClosedOrders", nil, true, 2)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	closed := coerce.Sub(m, "closed")
	out := make([]unified.Order, 0, len(closed))
	for id, raw := range closed {
		out = append(out, d.parseOrder(id, coerce.M(asMap(raw))))
	}
	return out, nil
}

func (d *Driver) FetchMyTrades(ctx context.Context, since int64, limit int) ([]unified.MyTrade, error) {
	params := map[string]string{}
	if since > 0 {
		params["start"] = strconv.FormatInt(since/1000, 10)
	}
	body, err := d.Do(ctx, http.MethodPost, "/0/private/TradesHistory", params, true, 2)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	trades := coerce.Sub(m, "trades")
	out := make([]unified.MyTrade, 0, len(trades))
	for id, raw := range trades {
		t := coerce.M(asMap(raw))
		symbol := d.fromVenueId(coerce.Str(t, "pair", ""))
		price := coerce.Float(t, "price", 0)
		amount := coerce.Float(t, "vol", 0)
		out = append(out, unified.MyTrade{
			Trade: unified.Trade{
				Id:        id,
				Symbol:    symbol,
				Price:     price,
				Amount:    amount,
				Cost:      coerce.Float(t, "cost", 0),
				Timestamp: int64(coerce.Float(t, "time", 0) * 1000),
				Info:      t,
			},
			OrderId: coerce.Str(t, "ordertxid", ""),
			Fee:     unified.Fee{Cost: coerce.Float(t, "fee", 0)},
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// FetchBalance stores Kraken's venue-reported total verbatim: Kraken's
// /0/private/Balance only reports one amount per currency, so free/used
// split is unavailable — the exception spec.md §3 tolerates.
func (d *Driver) FetchBalance(ctx context.Context) (unified.Balance, error) {
	body, err := d.Do(ctx, http.MethodPost, "/0/private/Balance", nil, true, 1)
	if err != nil {
		return unified.Balance{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Balance{}, err
	}
	currencies := make(map[string]unified.BalanceEntry, len(m))
	for ccy, raw := range m {
		total := coerce.Float(coerce.M{"v": raw}, "v", 0)
		currencies[cleanCurrency(ccy)] = unified.BalanceEntry{Total: total}
	}
	return unified.Balance{Currencies: currencies, Info: m}, nil
}

func (d *Driver) FetchTradingFees(ctx context.Context) (unified.TradingFee, error) {
	return d.DefaultFees, nil
}

// getWebSocketsToken implements the Kraken private bootstrap token of
// spec.md §4.9, cached via d.BootstrapToken until the transport closes.
func (d *Driver) getWebSocketsToken(ctx context.Context) (string, error) {
	return d.BootstrapToken("kraken-ws-token", func() (string, error) {
		body, err := d.Do(ctx, http.MethodPost, "/0/private/GetWebSocketsToken", nil, true, 1)
		if err != nil {
			return "", err
		}
		m, err := decodeObject(body)
		if err != nil {
			return "", err
		}
		return coerce.Str(m, "token", ""), nil
	})
}
