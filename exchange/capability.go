package exchange

// Capability is a bitset recording which unified methods a driver
// advertises, per spec.md §9: "not inheritance but a capability set".
// Driver methods do not consult it: calling a method whose bit is not set
// is not turned into a FeatureUnsupported error.
type Capability uint64

const (
	CapLoadMarkets Capability = 1 << iota
	CapFetchTicker
	CapFetchTickers
	CapFetchOrderBook
	CapFetchTrades
	CapFetchOHLCV
	CapCreateOrder
	CapCancelOrder
	CapCancelAllOrders
	CapFetchOrder
	CapFetchOpenOrders
	CapFetchClosedOrders
	CapFetchMyTrades
	CapFetchBalance
	CapFetchTradingFees
	CapWatchTicker
	CapWatchOrderBook
	CapWatchTrades
	CapWatchOrders
	CapWatchMyTrades
)

// Has reports whether every bit set in want is also set in c.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}
