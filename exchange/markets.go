package exchange

import (
	"sync/atomic"

	"xchange/pkg/unified"
)

// marketsSnapshot is the immutable payload loadMarkets publishes. Concurrent
// readers always see a fully-populated snapshot or none at all — never a
// partially filled one — satisfying spec.md §5's "write-once-publish"
// requirement for markets/marketsById/symbols without taking a read lock on
// every access.
type marketsSnapshot struct {
	markets     map[string]unified.Market
	marketsById map[string]unified.Market
	symbols     []string
}

// MarketsCache is embedded in Driver.
type MarketsCache struct {
	snapshot atomic.Pointer[marketsSnapshot]
}

// Publish atomically replaces the cache with a new, fully built snapshot.
// Called once per loadMarkets/reload.
func (m *MarketsCache) Publish(markets, marketsById map[string]unified.Market, symbols []string) {
	m.snapshot.Store(&marketsSnapshot{
		markets:     markets,
		marketsById: marketsById,
		symbols:     symbols,
	})
}

// Loaded reports whether Publish has ever been called.
func (m *MarketsCache) Loaded() bool {
	return m.snapshot.Load() != nil
}

func (m *MarketsCache) Market(symbol string) (unified.Market, bool) {
	snap := m.snapshot.Load()
	if snap == nil {
		return unified.Market{}, false
	}
	mkt, ok := snap.markets[symbol]
	return mkt, ok
}

func (m *MarketsCache) MarketById(id string) (unified.Market, bool) {
	snap := m.snapshot.Load()
	if snap == nil {
		return unified.Market{}, false
	}
	mkt, ok := snap.marketsById[id]
	return mkt, ok
}

func (m *MarketsCache) Markets() map[string]unified.Market {
	snap := m.snapshot.Load()
	if snap == nil {
		return nil
	}
	return snap.markets
}

func (m *MarketsCache) MarketsById() map[string]unified.Market {
	snap := m.snapshot.Load()
	if snap == nil {
		return nil
	}
	return snap.marketsById
}

func (m *MarketsCache) Symbols() []string {
	snap := m.snapshot.Load()
	if snap == nil {
		return nil
	}
	return snap.symbols
}
