package engine

import (
	"github.com/k2302/golang-order-matching/book"
	"github.com/k2302/golang-order-matching/models"
)

// Submit is submit_order: create, reserve funds, match, apply time-in-force
// policy, rest if eligible. Returns the order in its final state for this
// call (it may still be PENDING/PARTIALLY_FILLED and resting; "final" means
// final for this one invocation, not terminal).
//
// The symbol's book lock is acquired once here and held through funds
// checking and matching, so the MARKET BUY sentinel reservation computed
// below is against the exact same book state the match loop then consumes.
// Nothing else can mutate the ladder in between.
func (e *Engine) Submit(user uint64, symbol string, side models.Side, typ models.OrderType, tif models.TimeInForce, price int64, qty uint64) (*models.Order, models.ErrorCode) {
	b := e.getOrCreateBook(symbol)
	b.Lock()
	defer b.Unlock()

	fundsCheck := e.fundsCheckForLocked(b)

	order, code := e.registry.CreateChecked(user, symbol, side, typ, tif, price, qty, fundsCheck)
	if code != models.Success {
		e.sink.OnError(code, code.Error())
		return order, code
	}

	e.processLocked(order, b)
	return order, models.Success
}

// fundsCheckForLocked returns the closure registry.CreateChecked runs after
// structural validation, implementing required_funds plus the MARKET BUY
// sentinel-reservation resolution. b's lock must already be held by the
// caller and stay held until matching for this order completes.
func (e *Engine) fundsCheckForLocked(b *book.OrderBook) func(*models.Order) models.ErrorCode {
	return func(o *models.Order) models.ErrorCode {
		if o.Side != models.Buy {
			return models.Success
		}

		if o.Type == models.Limit {
			required := o.Price * int64(o.Quantity)
			if code := e.ledger.Lock(o.UserID, required); code != models.Success {
				return code
			}
			o.Reserved = required
			return models.Success
		}

		// MARKET BUY: lock a sentinel equal to the value of the visible,
		// currently-fillable depth up to the requested quantity, rather
		// than not pre-locking at all.
		sentinel := sentinelCost(b.AskDepthLocked(maxDepthScan), o.Quantity)

		if sentinel == 0 {
			return models.Success
		}
		if code := e.ledger.Lock(o.UserID, sentinel); code != models.Success {
			return code
		}
		o.Reserved = sentinel
		return models.Success
	}
}

// sentinelCost sums price*quantity across depth levels until qty units'
// worth of value has been accounted for, matching however much of qty is
// actually visible.
func sentinelCost(depth []models.DepthLevel, qty uint64) int64 {
	var cost int64
	var remaining = qty
	for _, lvl := range depth {
		if remaining == 0 {
			break
		}
		take := lvl.Quantity
		if take > remaining {
			take = remaining
		}
		cost += lvl.Price * int64(take)
		remaining -= take
	}
	return cost
}

// Cancel is cancel_order: mark the order CANCELLED in the
// registry, release any locked funds for its unfilled portion, and remove
// it from its order book if it was resting.
func (e *Engine) Cancel(orderID uint64) models.ErrorCode {
	o := e.registry.Get(orderID)
	if o == nil {
		e.sink.OnError(models.ErrOrderNotFound, "order not found")
		return models.ErrOrderNotFound
	}

	b := e.getOrCreateBook(o.Symbol)
	b.Lock()
	defer b.Unlock()

	code := e.registry.Cancel(orderID)
	if code != models.Success {
		e.sink.OnError(code, code.Error())
		return code
	}

	b.RemoveLocked(orderID, o.Side)
	e.releaseUnusedReservation(o)
	e.sink.OnOrderUpdate(*o)
	return models.Success
}
