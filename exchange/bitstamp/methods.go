package bitstamp

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"xchange/internal/coerce"
	"xchange/pkg/unified"
)

// LoadMarkets fetches /v2/trading-pairs-info/ and publishes the markets
// cache. Idempotent unless reload is true.
func (d *Driver) LoadMarkets(ctx context.Context, reload bool) (map[string]unified.Market, error) {
	if d.Loaded() && !reload {
		return d.Markets(), nil
	}

	body, err := d.Do(ctx, http.MethodGet, "/v2/trading-pairs-info/", nil, false, 1)
	if err != nil {
		return nil, err
	}
	rows, err := decodeArray(body)
	if err != nil {
		return nil, fmt.Errorf("bitstamp: decode trading-pairs-info: %w", err)
	}

	markets := make(map[string]unified.Market, len(rows))
	byId := make(map[string]unified.Market, len(rows))
	symbolList := make([]string, 0, len(rows))
	for _, row := range rows {
		id := coerce.Lower(row, "url_symbol", "")
		mkt := parseMarket(id, row)
		markets[mkt.Symbol] = mkt
		byId[id] = mkt
		symbolList = append(symbolList, mkt.Symbol)
	}
	d.Publish(markets, byId, symbolList)
	return markets, nil
}

// FetchTicker implements GET /v2/ticker/{pair}/.
func (d *Driver) FetchTicker(ctx context.Context, symbol string) (unified.Ticker, error) {
	id := toVenueId(symbol)
	body, err := d.Do(ctx, http.MethodGet, "/v2/ticker/"+id+"/", nil, false, 1)
	if err != nil {
		return unified.Ticker{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Ticker{}, err
	}
	return parseTicker(symbol, m), nil
}

// FetchTickers has no bulk endpoint on Bitstamp; it iterates per symbol
// with failures skipped and logged (spec.md §4.8).
func (d *Driver) FetchTickers(ctx context.Context, symbols []string) (map[string]unified.Ticker, error) {
	out := make(map[string]unified.Ticker, len(symbols))
	for _, s := range symbols {
		t, err := d.FetchTicker(ctx, s)
		if err != nil {
			log.Warn().Err(err).Str("symbol", s).Msg("bitstamp: fetchTickers skipping symbol")
			continue
		}
		out[s] = t
	}
	return out, nil
}

// FetchOrderBook implements GET /v2/order_book/{pair}/.
func (d *Driver) FetchOrderBook(ctx context.Context, symbol string, limit int) (unified.OrderBook, error) {
	id := toVenueId(symbol)
	body, err := d.Do(ctx, http.MethodGet, "/v2/order_book/"+id+"/", nil, false, 1)
	if err != nil {
		return unified.OrderBook{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.OrderBook{}, err
	}
	ob := parseOrderBook(symbol, m)
	if limit > 0 {
		if len(ob.Bids) > limit {
			ob.Bids = ob.Bids[:limit]
		}
		if len(ob.Asks) > limit {
			ob.Asks = ob.Asks[:limit]
		}
	}
	return ob, nil
}

// FetchTrades implements GET /v2/transactions/{pair}/.
func (d *Driver) FetchTrades(ctx context.Context, symbol string, since int64, limit int) ([]unified.Trade, error) {
	id := toVenueId(symbol)
	body, err := d.Do(ctx, http.MethodGet, "/v2/transactions/"+id+"/", map[string]string{"time": "hour"}, false, 1)
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
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CreateOrder implements Bitstamp's side-in-URL convention: side goes in the
// path (/buy|sell[/market]/{pair}/), per spec.md §4.8's documented quirk.
func (d *Driver) CreateOrder(ctx context.Context, symbol string, orderType unified.OrderType, side unified.OrderSide, amount float64, price float64) (unified.Order, error) {
	id := toVenueId(symbol)
	sidePath := "buy"
	if side == unified.OrderSideSell {
		sidePath = "sell"
	}
	path := "/v2/" + sidePath + "/" + id + "/"
	params := map[string]string{"amount": strconv.FormatFloat(amount, 'f', -1, 64)}
	if orderType == unified.OrderTypeMarket {
		path = "/v2/" + sidePath + "/market/" + id + "/"
	} else {
		params["price"] = strconv.FormatFloat(price, 'f', -1, 64)
	}

	body, err := d.Do(ctx, http.MethodPost, path, params, true, 1)
	if err != nil {
		return unified.Order{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Order{}, err
	}
	return parseOrderFromCreate(symbol, m, orderType, side), nil
}

func parseOrderFromCreate(symbol string, m coerce.M, orderType unified.OrderType, side unified.OrderSide) unified.Order {
	o := unified.Order{
		Id:        coerce.Str(m, "id", ""),
		Symbol:    symbol,
		Type:      orderType,
		Side:      side,
		Price:     coerce.Float(m, "price", 0),
		Amount:    coerce.Float(m, "amount", 0),
		Status:    parseOrderStatusFromCreate(m),
		Timestamp: parseDatetimeMs(coerce.Str(m, "datetime", "")),
		Info:      m,
	}
	o.Datetime = coerce.ISODatetime(o.Timestamp)
	o.FillDerivedFields()
	return o
}

func parseOrderStatusFromCreate(m coerce.M) unified.OrderStatus {
	if coerce.Str(m, "status", "") == "Error" {
		return unified.OrderRejected
	}
	return unified.OrderNew
}

func parseDatetimeMs(s string) int64 {
	if ms, ok := coerceDateStringToMs(s); ok {
		return ms
	}
	return 0
}

// CancelOrder implements POST /v2/cancel_order/.
func (d *Driver) CancelOrder(ctx context.Context, orderId string) error {
	_, err := d.Do(ctx, http.MethodPost, "/v2/cancel_order/", map[string]string{"id": orderId}, true, 1)
	return err
}

// CancelAllOrders implements POST /v2/cancel_all_orders/.
func (d *Driver) CancelAllOrders(ctx context.Context) error {
	_, err := d.Do(ctx, http.MethodPost, "/v2/cancel_all_orders/", nil, true, 1)
	return err
}

// FetchOrder implements POST /v2/order_status/.
func (d *Driver) FetchOrder(ctx context.Context, orderId string) (unified.Order, error) {
	body, err := d.Do(ctx, http.MethodPost, "/v2/order_status/", map[string]string{"id": orderId}, true, 1)
	if err != nil {
		return unified.Order{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Order{}, err
	}
	o := unified.Order{
		Id:     orderId,
		Status: parseOrderStatus(coerce.Str(m, "status", "")),
		Info:   m,
	}
	o.FillDerivedFields()
	return o, nil
}

// FetchOpenOrders implements POST /v2/open_orders/all/.
func (d *Driver) FetchOpenOrders(ctx context.Context) ([]unified.Order, error) {
	body, err := d.Do(ctx, http.MethodPost, "/v2/open_orders/all/", nil, true, 1)
	if err != nil {
		return nil, err
	}
	rows, err := decodeArray(body)
	if err != nil {
		return nil, err
	}
	out := make([]unified.Order, 0, len(rows))
	for _, row := range rows {
		symbol := d.fromVenueId(coerce.Lower(row, "currency_pair", ""))
		side := unified.OrderSideBuy
		if coerce.Int(row, "type", 0) == 1 {
			side = unified.OrderSideSell
		}
		o := unified.Order{
			Id:        coerce.Str(row, "id", ""),
			Symbol:    symbol,
			Side:      side,
			Price:     coerce.Float(row, "price", 0),
			Amount:    coerce.Float(row, "amount", 0),
			Status:    unified.OrderNew,
			Timestamp: parseDatetimeMs(coerce.Str(row, "datetime", "")),
			Info:      row,
		}
		o.FillDerivedFields()
		out = append(out, o)
	}
	return out, nil
}

// FetchMyTrades implements POST /v2/user_transactions/{pair}/.
//
// Suspected source defect preserved per spec.md §9: the `since` parameter is
// accepted but forwarded as offset=0, so it has no filtering effect.
func (d *Driver) FetchMyTrades(ctx context.Context, symbol string, since int64, limit int) ([]unified.MyTrade, error) {
	id := toVenueId(symbol)
	params := map[string]string{"offset": "0"}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := d.Do(ctx, http.MethodPost, "/v2/user_transactions/"+id+"/", params, true, 1)
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

func parseMyTrade(symbol string, m coerce.M) unified.MyTrade {
	base, quote, _ := splitUnified(symbol)
	price := coerce.Float(m, strings.ToLower(base)+"_"+strings.ToLower(quote), 0)
	amount := coerce.Float(m, strings.ToLower(base), 0)
	fee := coerce.Float(m, "fee", 0)
	trade := unified.Trade{
		Id:        coerce.Str(m, "order_id", ""),
		Symbol:    symbol,
		Price:     price,
		Amount:    amount,
		Cost:      price * amount,
		Timestamp: coerce.Int(m, "datetime", 0) * 1000,
		Info:      m,
	}
	return unified.MyTrade{
		Trade:   trade,
		OrderId: coerce.Str(m, "order_id", ""),
		Fee:     unified.Fee{Cost: fee, Currency: quote},
	}
}

func splitUnified(symbol string) (string, string, bool) {
	parts := strings.SplitN(symbol, "/", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// FetchBalance implements POST /v2/balance/.
func (d *Driver) FetchBalance(ctx context.Context) (unified.Balance, error) {
	body, err := d.Do(ctx, http.MethodPost, "/v2/balance/", nil, true, 1)
	if err != nil {
		return unified.Balance{}, err
	}
	m, err := decodeObject(body)
	if err != nil {
		return unified.Balance{}, err
	}

	currencies := make(map[string]unified.BalanceEntry)
	for key, val := range m {
		if !strings.HasSuffix(key, "_balance") {
			continue
		}
		ccy := strings.ToUpper(strings.TrimSuffix(key, "_balance"))
		valM := coerce.M{"v": val}
		total := coerce.Float(valM, "v", 0)
		avail := coerce.Float(m, strings.TrimSuffix(key, "_balance")+"_available", total)
		currencies[ccy] = unified.BalanceEntry{Free: avail, Used: total - avail, Total: total}
	}

	return unified.Balance{Currencies: currencies, Info: m}, nil
}

// FetchTradingFees returns the flat default fee schedule; Bitstamp's
// per-pair fee endpoint requires a currency_pair-specific call which
// account-tier callers can drive via their own Do wrapper if needed.
func (d *Driver) FetchTradingFees(ctx context.Context) (unified.TradingFee, error) {
	return d.DefaultFees, nil
}

func coerceDateStringToMs(s string) (int64, bool) {
	return coerce.DateStringToMs(s)
}

// newClientOrderId is available to callers that want an idempotency key;
// Bitstamp itself doesn't accept one, unlike Coinbase.
func newClientOrderId() string { return uuid.NewString() }
