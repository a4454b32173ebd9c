package book

import (
	"container/list"

	"github.com/k2302/golang-order-matching/models"
)

// priceLevel is a time-ordered sequence of orders at one price, with an
// auxiliary lookup from order id to its list element so removal is O(1).
// Mirrors the original engine's std::list + id->iterator pairing
// one-for-one; unexported, callers only ever see it through OrderBook.
type priceLevel struct {
	price    int64
	orders   *list.List // of *models.Order, front = earliest arrival
	index    map[uint64]*list.Element
	unfilled uint64 // sum of (total - filled) across members
}

func newPriceLevel(price int64) *priceLevel {
	return &priceLevel{
		price:  price,
		orders: list.New(),
		index:  make(map[uint64]*list.Element),
	}
}

// pushBack appends an order in FIFO time-priority order.
func (pl *priceLevel) pushBack(o *models.Order) {
	el := pl.orders.PushBack(o)
	pl.index[o.ID] = el
	pl.unfilled += o.Unfilled()
}

// remove deletes an order by id in O(1).
func (pl *priceLevel) remove(orderID uint64) {
	el, ok := pl.index[orderID]
	if !ok {
		return
	}
	o := el.Value.(*models.Order)
	pl.unfilled -= o.Unfilled()
	pl.orders.Remove(el)
	delete(pl.index, orderID)
}

// front peeks the earliest-arrived order still in the level, or nil if
// empty.
func (pl *priceLevel) front() *models.Order {
	el := pl.orders.Front()
	if el == nil {
		return nil
	}
	return el.Value.(*models.Order)
}

func (pl *priceLevel) isEmpty() bool {
	return pl.orders.Len() == 0
}

// totalUnfilledQuantity returns the running sum of (total - filled) across
// members, maintained incrementally on pushBack/remove and externally via
// refreshFront when the front order is partially filled by a match.
func (pl *priceLevel) totalUnfilledQuantity() uint64 {
	return pl.unfilled
}

// refreshFront recomputes the level's running unfilled total after the
// front order's Filled field was mutated directly by the matching engine
// (the order object is shared, not copied).
func (pl *priceLevel) refreshFront(prevUnfilled uint64) {
	front := pl.front()
	if front == nil {
		return
	}
	pl.unfilled = pl.unfilled - prevUnfilled + front.Unfilled()
}
