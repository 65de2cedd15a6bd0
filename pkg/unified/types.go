// Package unified defines the venue-independent value shapes every driver
// method returns: markets, tickers, order books, trades, candles, orders,
// balances and fee schedules, per spec.md §3.
package unified

import "github.com/shopspring/decimal"

// Precision expresses decimal-place precision for a market's price/amount
// fields. A negative value means "not reported by the venue".
type Precision struct {
	Price  int `json:"price"`
	Amount int `json:"amount"`
	Base   int `json:"base"`
	Quote  int `json:"quote"`
}

// Range is a venue-reported [min, max] bound; either side may be zero when
// the venue does not report it.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Limits bundles the three bounds a market commonly reports.
type Limits struct {
	Amount Range `json:"amount"`
	Price  Range `json:"price"`
	Cost   Range `json:"cost"`
}

// Market is a venue trading pair, normalized. Symbol is always
// "BASE/QUOTE"; Id is the venue's native token for the same pair.
type Market struct {
	Id        string         `json:"id"`
	Symbol    string         `json:"symbol"`
	Base      string         `json:"base"`
	Quote     string         `json:"quote"`
	Active    bool           `json:"active"`
	Precision Precision      `json:"precision"`
	Limits    Limits         `json:"limits"`
	StepSize  *float64       `json:"stepSize,omitempty"`
	TickSize  *float64       `json:"tickSize,omitempty"`
	Info      map[string]any `json:"info,omitempty"`
}

// Ticker is a point-in-time snapshot for one symbol.
type Ticker struct {
	Symbol      string         `json:"symbol"`
	Last        float64        `json:"last"`
	Bid         float64        `json:"bid"`
	Ask         float64        `json:"ask"`
	BidVolume   *float64       `json:"bidVolume,omitempty"`
	AskVolume   *float64       `json:"askVolume,omitempty"`
	High        float64        `json:"high"`
	Low         float64        `json:"low"`
	Open        float64        `json:"open"`
	Close       float64        `json:"close"`
	Volume      float64        `json:"volume"`
	QuoteVolume *float64       `json:"quoteVolume,omitempty"`
	Change      *float64       `json:"change,omitempty"`
	Percentage  *float64       `json:"percentage,omitempty"`
	Vwap        *float64       `json:"vwap,omitempty"`
	Timestamp   int64          `json:"timestamp"`
	Datetime    string         `json:"datetime"`
	Info        map[string]any `json:"info,omitempty"`
}

// FillChangeFields computes Change/Percentage from Last/Open when both are
// present, per spec.md §8 ("if last and open are both set, change == last -
// open and percentage == change/open*100"). Call after populating Last/Open.
func (t *Ticker) FillChangeFields() {
	if t.Last == 0 || t.Open == 0 {
		return
	}
	last := decimal.NewFromFloat(t.Last)
	open := decimal.NewFromFloat(t.Open)
	change := last.Sub(open)
	changeF, _ := change.Float64()
	t.Change = &changeF
	pct, _ := change.Div(open).Mul(decimal.NewFromInt(100)).Float64()
	t.Percentage = &pct
}

// PriceLevel is a single [price, size] order-book row.
type PriceLevel struct {
	Price float64
	Size  float64
}

// OrderBook is a symbol snapshot; Bids are best-bid-first (descending by
// price), Asks are best-ask-first (ascending by price), per spec.md §3/§8.
type OrderBook struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Timestamp int64        `json:"timestamp"`
	Datetime  string       `json:"datetime"`
	Nonce     *int64       `json:"nonce,omitempty"`
}

// Side is the unified "buy"/"sell" alphabet for trades.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Trade is a public market trade print.
type Trade struct {
	Id        string         `json:"id"`
	Symbol    string         `json:"symbol"`
	Price     float64        `json:"price"`
	Amount    float64        `json:"amount"`
	Cost      float64        `json:"cost"`
	Side      Side           `json:"side"`
	Timestamp int64          `json:"timestamp"`
	Datetime  string         `json:"datetime"`
	Info      map[string]any `json:"info,omitempty"`
}

// Fee is a trade-level or order-level commission.
type Fee struct {
	Cost     float64 `json:"cost"`
	Currency string  `json:"currency,omitempty"`
}

// MyTrade is an authenticated fill, a Trade plus order linkage and fee.
type MyTrade struct {
	Trade
	OrderId string `json:"orderId"`
	Fee     Fee    `json:"fee"`
	IsMaker *bool  `json:"isMaker,omitempty"`
}

// Candle is [timestamp_ms, open, high, low, close, volume].
type Candle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// OrderStatus is the unified status alphabet of spec.md §4.7.
type OrderStatus string

const (
	OrderNew             OrderStatus = "NEW"
	OrderPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderFilled          OrderStatus = "FILLED"
	OrderCanceled        OrderStatus = "CANCELED"
	OrderExpired         OrderStatus = "EXPIRED"
	OrderRejected        OrderStatus = "REJECTED"
)

// OrderType covers the baseline types plus venue-specific extensions
// (spec.md §3 allows free-form extension strings).
type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

// OrderSide is the unified "BUY"/"SELL" alphabet for orders (distinct
// casing from the lowercase trade Side, per spec.md §3).
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// Order is the unified order shape.
type Order struct {
	Id            string         `json:"id"`
	ClientOrderId string         `json:"clientOrderId,omitempty"`
	Symbol        string         `json:"symbol"`
	Type          OrderType      `json:"type"`
	Side          OrderSide      `json:"side"`
	Price         float64        `json:"price"`
	Amount        float64        `json:"amount"`
	Filled        float64        `json:"filled"`
	Remaining     float64        `json:"remaining"`
	Cost          float64        `json:"cost"`
	Average       float64        `json:"average"`
	Status        OrderStatus    `json:"status"`
	Timestamp     int64          `json:"timestamp"`
	Datetime      string         `json:"datetime"`
	Trades        []MyTrade      `json:"trades"`
	Fee           *Fee           `json:"fee,omitempty"`
	Info          map[string]any `json:"info,omitempty"`
}

// FillDerivedFields computes Remaining and Average from Amount/Filled/Cost
// per spec.md §3's invariants:
//
//	remaining = max(0, amount - filled)
//	average   = cost/filled when filled > 0, else 0
func (o *Order) FillDerivedFields() {
	amount := decimal.NewFromFloat(o.Amount)
	filled := decimal.NewFromFloat(o.Filled)
	remaining := amount.Sub(filled)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	o.Remaining, _ = remaining.Float64()

	if filled.IsPositive() {
		avg, _ := decimal.NewFromFloat(o.Cost).Div(filled).Float64()
		o.Average = avg
	} else {
		o.Average = 0
	}
}

// BalanceEntry is one currency's free/used/total.
type BalanceEntry struct {
	Free  float64 `json:"free"`
	Used  float64 `json:"used"`
	Total float64 `json:"total"`
}

// Balance is keyed by uppercased currency code.
type Balance struct {
	Currencies map[string]BalanceEntry `json:"currencies"`
	Info       map[string]any          `json:"info,omitempty"`
	Timestamp  int64                   `json:"timestamp"`
	Datetime   string                  `json:"datetime"`
}

// TradingFee is either per-symbol or a venue default, per spec.md §3.
type TradingFee struct {
	Symbol string  `json:"symbol,omitempty"`
	Maker  float64 `json:"maker"`
	Taker  float64 `json:"taker"`
}
