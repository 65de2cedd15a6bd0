package kucoin

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
	"1m": "1min", "5m": "5min", "15m": "15min", "1h": "1hour", "4h": "4hour", "1d": "1day",
}

func (d *Driver) LoadMarkets(ctx context.Context, reload bool) (map[string]unified.Market, error) {
	if d.Loaded() && !reload {
		return d.Markets(), nil
	}
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/symbols", nil, false, 1)
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
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/market/stats", map[string]string{"symbol": id}, false, 1)
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
			log.Warn().Err(err).Str("symbol", s).Msg("kucoin: fetchTickers skipping symbol")
			continue
		}
		out[s] = t
	}
	return out, nil
}

// FetchOrderBook rounds limit up to KuCoin's fixed 20/100 depth buckets,
// per spec.md §3's fetchOrderBook note.
func (d *Driver) FetchOrderBook(ctx context.Context, symbol string, limit int) (unified.OrderBook, error) {
	id := toVenueId(symbol)
	path := "/api/v1/market/orderbook/level2_20"
	if limit > 20 {
		path = "/api/v1/market/orderbook/level2_100"
	}
	body, err := d.Do(ctx, http.MethodGet, path, map[string]string{"symbol": id}, false, 1)
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
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/market/histories", map[string]string{"symbol": id}, false, 1)
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

// FetchOHLCV reverses KuCoin's newest-first candle order into chronological
// ascending, per spec.md §3.
func (d *Driver) FetchOHLCV(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]unified.Candle, error) {
	id := toVenueId(symbol)
	tf, ok := timeframes[timeframe]
	if !ok {
		tf = timeframe
	}
	params := map[string]string{"symbol": id, "type": tf}
	if since > 0 {
		params["startAt"] = strconv.FormatInt(since/1000, 10)
	}
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/market/candles", params, false, 1)
	if err != nil {
		return nil, err
	}
	arr, err := decodeArray(body)
	if err != nil {
		return nil, err
	}
	out := make([]unified.Candle, 0, len(arr))
	for _, raw := range arr {
		out = append(out, parseCandle(asSlice(raw)))
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (d *Driver) CreateOrder(ctx context.Context, symbol string, orderType unified.OrderType, side unified.OrderSide, amount, price float64) (unified.Order, error) {
	id := toVenueId(symbol)
	params := map[string]string{
		"clientOid": uuid.NewString(),
		"symbol":    id,
		"side":      lowerSide(side),
		"type":      lowerType(orderType),
		"size":      strconv.FormatFloat(amount, 'f', -1, 64),
	}
	if orderType == unified.OrderTypeLimit {
		params["price"] = strconv.FormatFloat(price, 'f', -1, 64)
	}
	body, err := d.Do(ctx, http.MethodPost, "/api/v1/orders", params, true, 1)
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
	_, err := d.Do(ctx, http.MethodDelete, "/api/v1/orders/"+orderId, nil, true, 1)
	return err
}

func (d *Driver) CancelAllOrders(ctx context.Context) error {
	_, err := d.Do(ctx, http.MethodDelete, "/api/v1/orders", nil, true, 1)
	return err
}

func (d *Driver) FetchOrder(ctx context.Context, orderId string) (unified.Order, error) {
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/orders/"+orderId, nil, true, 1)
	if err != nil {
		return unified.Order{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Order{}, err
	}
	return d.parseOrder(m), nil
}

func (d *Driver) FetchOpenOrders(ctx context.Context) ([]unified.Order, error) {
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/orders", map[string]string{"status": "active"}, true, 1)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	items := asSlice(m["items"])
	out := make([]unified.Order, 0, len(items))
	for _, raw := range items {
		out = append(out, d.parseOrder(coerce.M(asMap(raw))))
	}
	return out, nil
}

func (d *Driver) FetchClosedOrders(ctx context.Context) ([]unified.Order, error) {
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/orders", map[string]string{"status": "done"}, true, 1)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	items := asSlice(m["items"])
	out := make([]unified.Order, 0, len(items))
	for _, raw := range items {
		out = append(out, d.parseOrder(coerce.M(asMap(raw))))
	}
	return out, nil
}

func (d *Driver) FetchMyTrades(ctx context.Context, since int64, limit int) ([]unified.MyTrade, error) {
	params := map[string]string{}
	if since > 0 {
		params["startAt"] = strconv.FormatInt(since, 10)
	}
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/fills", params, true, 1)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	items := asSlice(m["items"])
	out := make([]unified.MyTrade, 0, len(items))
	for _, raw := range items {
		out = append(out, d.parseMyTrade(coerce.M(asMap(raw))))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (d *Driver) FetchBalance(ctx context.Context) (unified.Balance, error) {
	body, err := d.Do(ctx, http.MethodGet, "/api/v1/accounts", map[string]string{"type": "trade"}, true, 1)
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
		currencies[coerce.Str(m, "currency", "")] = unified.BalanceEntry{
			Free:  coerce.Float(m, "available", 0),
			Used:  coerce.Float(m, "holds", 0),
			Total: coerce.Float(m, "balance", 0),
		}
	}
	return unified.Balance{Currencies: currencies}, nil
}

func (d *Driver) FetchTradingFees(ctx context.Context) (unified.TradingFee, error) {
	return d.DefaultFees, nil
}

// bulletToken implements spec.md §5's "bootstrap tokens (KuCoin
// public/private)" — public and private bullet endpoints are cached under
// distinct keys since they carry different privilege.
func (d *Driver) bulletToken(ctx context.Context, private bool) (string, string, error) {
	path := "/api/v1/bullet-public"
	key := "kucoin-bullet-public"
	signed := false
	if private {
		path = "/api/v1/bullet-private"
		key = "kucoin-bullet-private"
		signed = true
	}
	var endpoint, token string
	cached, err := d.BootstrapToken(key, func() (string, error) {
		body, err := d.Do(ctx, http.MethodPost, path, nil, signed, 1)
		if err != nil {
			return "", err
		}
		m, err := decodeObject(body)
		if err != nil {
			return "", err
		}
		list := asSlice(m["instanceServers"])
		if len(list) == 0 {
			return "", err
		}
		first := coerce.M(asMap(list[0]))
		endpoint = coerce.Str(first, "endpoint", "")
		token = coerce.Str(m, "token", "")
		return endpoint + "|" + token, nil
	})
	if err != nil {
		return "", "", err
	}
	parts := splitOnce(cached, "|")
	return parts[0], parts[1], nil
}

func splitOnce(s, sep string) [2]string {
	for i := 0; i+len(sep) <= len(s); i++ {
		if s[i:i+len(sep)] == sep {
			return [2]string{s[:i], s[i+len(sep):]}
		}
	}
	return [2]string{s, ""}
}
