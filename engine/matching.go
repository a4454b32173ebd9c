package engine

import (
	"go.uber.org/zap"

	"github.com/k2302/golang-order-matching/book"
	"github.com/k2302/golang-order-matching/models"
)

// processLocked runs one incoming order through matching, time-in-force
// policy, and resting. The caller must already hold b's lock (acquired
// before the funds check that may have reserved against the same book) and
// keeps holding it until this returns, so no other worker can observe a
// crossed or mid-fill book.
func (e *Engine) processLocked(o *models.Order, b *book.OrderBook) {
	if o.TimeInForce == models.FOK {
		if !e.canFillCompletelyLocked(o, b) {
			o.Status = models.Cancelled
			e.releaseUnusedReservation(o)
			e.sink.OnOrderUpdate(*o)
			return
		}
	}

	if o.Type == models.Limit {
		e.matchLimitLocked(o, b)
	} else {
		e.matchMarketLocked(o, b)
	}

	e.finalize(o, b)
}

// matchLimitLocked matches a LIMIT order against the opposite ladder while
// it remains crossed: BUY crosses asks priced at or below its limit, SELL
// crosses bids priced at or above its limit.
func (e *Engine) matchLimitLocked(o *models.Order, b *book.OrderBook) {
	for o.Unfilled() > 0 {
		var counter *models.Order
		if o.Side == models.Buy {
			counter = b.BestAskOrderLocked()
			if counter == nil || counter.Price > o.Price {
				break
			}
		} else {
			counter = b.BestBidOrderLocked()
			if counter == nil || counter.Price < o.Price {
				break
			}
		}
		tradeQty := minU64(o.Unfilled(), counter.Unfilled())
		e.fillOnce(o, counter, counter.Price, tradeQty, b)
	}
}

// matchMarketLocked matches a MARKET order unconditionally against the best
// of the opposite side until filled or liquidity is exhausted.
func (e *Engine) matchMarketLocked(o *models.Order, b *book.OrderBook) {
	for o.Unfilled() > 0 {
		var counter *models.Order
		if o.Side == models.Buy {
			counter = b.BestAskOrderLocked()
		} else {
			counter = b.BestBidOrderLocked()
		}
		if counter == nil {
			break
		}
		tradeQty := minU64(o.Unfilled(), counter.Unfilled())
		e.fillOnce(o, counter, counter.Price, tradeQty, b)
	}
}

// fillOnce executes a single fill between the incoming order o and the
// resting maker counter, at counter's price (maker-sets-price). It updates
// both orders, settles funds, updates the book's last trade, and emits the
// maker's order-update, the trade, and the tick, in that order.
func (e *Engine) fillOnce(o, counter *models.Order, tradePrice int64, tradeQty uint64, b *book.OrderBook) {
	var buyOrder, sellOrder *models.Order
	if o.Side == models.Buy {
		buyOrder, sellOrder = o, counter
	} else {
		buyOrder, sellOrder = counter, o
	}

	lockedPortion := fillLockedPortion(buyOrder, tradePrice, tradeQty)
	tradeValue := tradePrice * int64(tradeQty)
	if code := e.ledger.SettleFill(buyOrder.UserID, sellOrder.UserID, lockedPortion, tradeValue); code != models.Success {
		e.log.Error("settle_fill invariant violation",
			zap.Uint64("buy_order", buyOrder.ID), zap.Uint64("sell_order", sellOrder.ID),
			zap.String("code", string(code)))
		e.sink.OnError(code, "fund settlement failed for fill")
	}
	buyOrder.Reserved -= lockedPortion
	if buyOrder.Reserved < 0 {
		buyOrder.Reserved = 0
	}

	prevCounterUnfilled := counter.Unfilled()
	o.Filled += tradeQty
	counter.Filled += tradeQty

	if counter.Filled >= counter.Quantity {
		counter.Status = models.Filled
		b.RemoveLocked(counter.ID, counter.Side)
	} else {
		counter.Status = models.PartiallyFilled
		b.RefreshFrontLocked(counter.Side, counter.Price, prevCounterUnfilled)
	}

	trade := models.Trade{
		ID:          e.ids.NextTradeID(),
		BuyOrderID:  buyOrder.ID,
		SellOrderID: sellOrder.ID,
		BuyUserID:   buyOrder.UserID,
		SellUserID:  sellOrder.UserID,
		Symbol:      o.Symbol,
		Price:       tradePrice,
		Quantity:    tradeQty,
		Timestamp:   e.ids.NextTimestamp(),
	}

	b.UpdateLastTradeLocked(tradePrice, tradeQty)

	e.sink.OnOrderUpdate(*counter)
	e.sink.OnTrade(trade)
	e.sink.OnTick(b.SnapshotLocked(e.ids.NextTimestamp()))
}

// fillLockedPortion returns the per-fill amount to release from the
// buyer's locked balance. A LIMIT BUY locked price*quantity at its own
// limit price up front, so each fill releases buyOrder.Price*tradeQty
// (refunding the difference against the maker's better price). A MARKET
// BUY locked a sentinel computed from the same visible depth it is now
// consuming, so each fill simply drains that sentinel at the fill's own
// price; there is no separate "limit price" to improve against.
func fillLockedPortion(buyOrder *models.Order, tradePrice int64, tradeQty uint64) int64 {
	if buyOrder.Type == models.Market {
		return tradePrice * int64(tradeQty)
	}
	return buyOrder.Price * int64(tradeQty)
}

// canFillCompletelyLocked is FOK's pre-match check: can the opposite
// ladder, within maxDepthScan levels, supply the full requested quantity?
func (e *Engine) canFillCompletelyLocked(o *models.Order, b *book.OrderBook) bool {
	var depth []models.DepthLevel
	if o.Side == models.Buy {
		depth = b.AskDepthLocked(maxDepthScan)
	} else {
		depth = b.BidDepthLocked(maxDepthScan)
	}

	var available uint64
	for _, lvl := range depth {
		if o.Type == models.Limit {
			if o.Side == models.Buy && lvl.Price > o.Price {
				break
			}
			if o.Side == models.Sell && lvl.Price < o.Price {
				break
			}
		}
		available += lvl.Quantity
		if available >= o.Quantity {
			return true
		}
	}
	return false
}

// finalize sets the incoming order's terminal/resting status once matching
// has stopped, applies the GFD resting rule, and releases any reservation
// that is no longer needed.
func (e *Engine) finalize(o *models.Order, b *book.OrderBook) {
	switch {
	case o.Filled >= o.Quantity:
		o.Status = models.Filled
	case o.Filled > 0:
		o.Status = models.PartiallyFilled
	}

	rests := o.TimeInForce == models.GFD && o.Type == models.Limit && o.Unfilled() > 0 && o.Status != models.Cancelled
	if rests {
		b.AddLocked(o)
		e.sink.OnOrderUpdate(*o)
		return
	}

	if o.Filled == 0 && o.Status == models.Pending {
		// MARKET with no liquidity, or IOC with nothing to match against.
		o.Status = models.Cancelled
	}
	e.releaseUnusedReservation(o)
	e.sink.OnOrderUpdate(*o)
}

// releaseUnusedReservation unlocks whatever portion of a BUY order's
// reservation was never consumed by a fill. The IOC/FOK/MARKET unlock rules
// all reduce to this once Reserved is tracked per order.
func (e *Engine) releaseUnusedReservation(o *models.Order) {
	if o.Side != models.Buy || o.Reserved <= 0 {
		return
	}
	e.ledger.Unlock(o.UserID, o.Reserved)
	o.Reserved = 0
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
