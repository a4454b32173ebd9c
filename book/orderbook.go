// Package book implements the per-symbol order book: two price ladders
// (bids descending, asks ascending), each key mapping to a price level,
// plus last-trade tracking and snapshotting.
package book

import (
	"sort"
	"sync"

	"github.com/k2302/golang-order-matching/models"
)

// OrderBook holds both ladders for one symbol behind a single exclusion
// lock covering both ladders and the order-id lookup. The matching engine
// holds this lock for the entire processing of one incoming order so no
// other worker can observe a crossed or mid-fill book.
type OrderBook struct {
	mu     sync.Mutex
	symbol string

	bidPrices []int64 // sorted descending
	askPrices []int64 // sorted ascending
	bids      map[int64]*priceLevel
	asks      map[int64]*priceLevel
	bidPrice  map[uint64]int64 // order id -> price, for O(1) removal lookup
	askPrice  map[uint64]int64

	lastTradePrice    int64
	lastTradeQuantity uint64
	totalVolume       uint64
}

func New(symbol string) *OrderBook {
	return &OrderBook{
		symbol:   symbol,
		bids:     make(map[int64]*priceLevel),
		asks:     make(map[int64]*priceLevel),
		bidPrice: make(map[uint64]int64),
		askPrice: make(map[uint64]int64),
	}
}

func (b *OrderBook) Symbol() string { return b.symbol }

// Lock/Unlock expose the book's single exclusion lock directly so the
// matching engine can hold it across an entire incoming order's processing,
// including the maker-lookup, fill loop, and book-insertion of any residual.
// Methods below that are called while already holding the lock use the
// *Locked suffix and assume the caller holds it; the unsuffixed methods
// take the lock themselves for standalone callers (HTTP handlers, tests).
func (b *OrderBook) Lock()   { b.mu.Lock() }
func (b *OrderBook) Unlock() { b.mu.Unlock() }

// AddLocked rests a LIMIT order in the book. Precondition: order is non-terminal
// and Unfilled() > 0. Caller must hold the book lock.
func (b *OrderBook) AddLocked(o *models.Order) {
	var prices *[]int64
	var levels map[int64]*priceLevel
	var byPrice map[uint64]int64
	if o.Side == models.Buy {
		prices, levels, byPrice = &b.bidPrices, b.bids, b.bidPrice
	} else {
		prices, levels, byPrice = &b.askPrices, b.asks, b.askPrice
	}

	pl, ok := levels[o.Price]
	if !ok {
		pl = newPriceLevel(o.Price)
		levels[o.Price] = pl
		insertSorted(prices, o.Price, o.Side == models.Buy)
	}
	pl.pushBack(o)
	byPrice[o.ID] = o.Price
}

func insertSorted(prices *[]int64, price int64, descending bool) {
	s := *prices
	var less func(i int) bool
	if descending {
		less = func(i int) bool { return s[i] < price }
	} else {
		less = func(i int) bool { return s[i] > price }
	}
	i := sort.Search(len(s), less)
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = price
	*prices = s
}

func removeSorted(prices *[]int64, price int64) {
	s := *prices
	for i, p := range s {
		if p == price {
			*prices = append(s[:i], s[i+1:]...)
			return
		}
	}
}

// RemoveLocked deletes an order from its ladder, pruning the price level if
// it becomes empty. Caller must hold the book lock.
func (b *OrderBook) RemoveLocked(orderID uint64, side models.Side) bool {
	var prices *[]int64
	var levels map[int64]*priceLevel
	var byPrice map[uint64]int64
	if side == models.Buy {
		prices, levels, byPrice = &b.bidPrices, b.bids, b.bidPrice
	} else {
		prices, levels, byPrice = &b.askPrices, b.asks, b.askPrice
	}

	price, ok := byPrice[orderID]
	if !ok {
		return false
	}
	delete(byPrice, orderID)

	pl := levels[price]
	pl.remove(orderID)
	if pl.isEmpty() {
		delete(levels, price)
		removeSorted(prices, price)
	}
	return true
}

// Remove is the standalone (self-locking) form of RemoveLocked, used by
// cancellation paths that are not already inside the matching engine's
// book-lock scope.
func (b *OrderBook) Remove(orderID uint64, side models.Side) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.RemoveLocked(orderID, side)
}

// BestBidLocked returns the best (highest) bid price, or 0 when empty.
func (b *OrderBook) BestBidLocked() int64 {
	if len(b.bidPrices) == 0 {
		return 0
	}
	return b.bidPrices[0]
}

// BestAskLocked returns the best (lowest) ask price, or 0 when empty.
func (b *OrderBook) BestAskLocked() int64 {
	if len(b.askPrices) == 0 {
		return 0
	}
	return b.askPrices[0]
}

func (b *OrderBook) BestBid() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.BestBidLocked()
}

func (b *OrderBook) BestAsk() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.BestAskLocked()
}

// BestBidOrderLocked returns the front order of the best bid level, for
// matching. nil if the book has no bids.
func (b *OrderBook) BestBidOrderLocked() *models.Order {
	if len(b.bidPrices) == 0 {
		return nil
	}
	return b.bids[b.bidPrices[0]].front()
}

// BestAskOrderLocked returns the front order of the best ask level.
func (b *OrderBook) BestAskOrderLocked() *models.Order {
	if len(b.askPrices) == 0 {
		return nil
	}
	return b.asks[b.askPrices[0]].front()
}

// RefreshFrontLocked updates the running unfilled total for the level the
// given side's best order sits in, after the matching engine mutated that
// order's Filled field directly. prevUnfilled is the unfilled quantity the
// order had before the mutation.
func (b *OrderBook) RefreshFrontLocked(side models.Side, price int64, prevUnfilled uint64) {
	levels := b.bids
	if side == models.Sell {
		levels = b.asks
	}
	if pl, ok := levels[price]; ok {
		pl.refreshFront(prevUnfilled)
	}
}

// BidDepthLocked returns up to n aggregated (price, unfilled) pairs in
// priority order (highest price first).
func (b *OrderBook) BidDepthLocked(n int) []models.DepthLevel {
	return depth(b.bidPrices, b.bids, n)
}

// AskDepthLocked returns up to n aggregated (price, unfilled) pairs in
// priority order (lowest price first).
func (b *OrderBook) AskDepthLocked(n int) []models.DepthLevel {
	return depth(b.askPrices, b.asks, n)
}

func (b *OrderBook) BidDepth(n int) []models.DepthLevel {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.BidDepthLocked(n)
}

func (b *OrderBook) AskDepth(n int) []models.DepthLevel {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.AskDepthLocked(n)
}

func depth(prices []int64, levels map[int64]*priceLevel, n int) []models.DepthLevel {
	if n > len(prices) {
		n = len(prices)
	}
	out := make([]models.DepthLevel, 0, n)
	for i := 0; i < n; i++ {
		p := prices[i]
		out = append(out, models.DepthLevel{Price: p, Quantity: levels[p].totalUnfilledQuantity()})
	}
	return out
}

// UpdateLastTradeLocked sets the last trade price/quantity and adds to
// cumulative volume.
func (b *OrderBook) UpdateLastTradeLocked(price int64, qty uint64) {
	b.lastTradePrice = price
	b.lastTradeQuantity = qty
	b.totalVolume += qty
}

// SnapshotLocked returns an immutable read of the book at this instant.
// timestampNs should come from the caller's allocator so it carries the
// same monotonic ordering as everything else.
func (b *OrderBook) SnapshotLocked(timestampNs int64) models.MarketSnapshot {
	snap := models.MarketSnapshot{
		Symbol:            b.symbol,
		LastTradePrice:    b.lastTradePrice,
		LastTradeQuantity: b.lastTradeQuantity,
		TotalVolume:       b.totalVolume,
		Timestamp:         timestampNs,
	}
	if len(b.bidPrices) > 0 {
		p := b.bidPrices[0]
		snap.BidPrice = p
		snap.BidQuantity = b.bids[p].totalUnfilledQuantity()
	}
	if len(b.askPrices) > 0 {
		p := b.askPrices[0]
		snap.AskPrice = p
		snap.AskQuantity = b.asks[p].totalUnfilledQuantity()
	}
	return snap
}

// Snapshot is the standalone (self-locking) form of SnapshotLocked.
func (b *OrderBook) Snapshot(timestampNs int64) models.MarketSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.SnapshotLocked(timestampNs)
}
