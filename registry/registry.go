// Package registry is the canonical store of every order ever accepted.
// It serialises under its own exclusion lock, independent of the ledger's
// and each order book's locks.
package registry

import (
	"sync"

	"github.com/k2302/golang-order-matching/idgen"
	"github.com/k2302/golang-order-matching/models"
)

type Registry struct {
	mu         sync.Mutex
	ids        *idgen.Allocator
	orders     map[uint64]*models.Order
	userOrders map[uint64][]uint64
}

func New(ids *idgen.Allocator) *Registry {
	return &Registry{
		ids:        ids,
		orders:     make(map[uint64]*models.Order),
		userOrders: make(map[uint64][]uint64),
	}
}

// Create allocates an order id, validates the request, and, on success,
// indexes the order in PENDING status. On validation failure the returned
// order has Status == REJECTED and is NOT indexed, but is still returned.
func (r *Registry) Create(user uint64, symbol string, side models.Side, typ models.OrderType, tif models.TimeInForce, price int64, qty uint64) (*models.Order, models.ErrorCode) {
	return r.CreateChecked(user, symbol, side, typ, tif, price, qty, nil)
}

// CreateChecked is Create plus an additional check run after structural
// validation but before indexing. fundsCheck is given the fully-built order
// (so it may set Order.Reserved) and, if it returns anything other than
// Success, the order is rejected and left unindexed exactly like a
// structural validation failure. This is how the engine folds
// INSUFFICIENT_BALANCE into the same "rejected, not indexed" bucket as
// INVALID_SYMBOL/INVALID_QUANTITY/INVALID_PRICE.
func (r *Registry) CreateChecked(user uint64, symbol string, side models.Side, typ models.OrderType, tif models.TimeInForce, price int64, qty uint64, fundsCheck func(*models.Order) models.ErrorCode) (*models.Order, models.ErrorCode) {
	o := &models.Order{
		ID:          r.ids.NextOrderID(),
		UserID:      user,
		Symbol:      symbol,
		Side:        side,
		Type:        typ,
		TimeInForce: tif,
		Price:       price,
		Quantity:    qty,
		Status:      models.Pending,
		CreatedAt:   r.ids.NextTimestamp(),
	}

	if code := validate(symbol, typ, price, qty); code != models.Success {
		o.Status = models.Rejected
		return o, code
	}

	if fundsCheck != nil {
		if code := fundsCheck(o); code != models.Success {
			o.Status = models.Rejected
			return o, code
		}
	}

	r.mu.Lock()
	r.orders[o.ID] = o
	r.userOrders[user] = append(r.userOrders[user], o.ID)
	r.mu.Unlock()

	return o, models.Success
}

func validate(symbol string, typ models.OrderType, price int64, qty uint64) models.ErrorCode {
	if symbol == "" {
		return models.ErrInvalidSymbol
	}
	if qty == 0 {
		return models.ErrInvalidQuantity
	}
	if typ == models.Limit && price <= 0 {
		return models.ErrInvalidPrice
	}
	return models.Success
}

// Cancel transitions the order to CANCELLED. It fails with
// ORDER_NOT_FOUND if unknown, SYSTEM_ERROR if already terminal. This only
// mutates registry state; the caller removes the order from any book it
// rests in.
func (r *Registry) Cancel(orderID uint64) models.ErrorCode {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return models.ErrOrderNotFound
	}
	if o.Status.IsTerminal() {
		return models.ErrSystemError
	}
	o.Status = models.Cancelled
	return models.Success
}

// Get returns the order by id, or nil if unknown.
func (r *Registry) Get(orderID uint64) *models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[orderID]
}

// UserOrders returns every order the user has ever submitted.
func (r *Registry) UserOrders(user uint64) []*models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.userOrders[user]
	out := make([]*models.Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := r.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out
}

// All returns every order ever accepted, for the periodic snapshot sweep.
// The returned slice is a point-in-time copy of the index; the *Order
// pointers themselves are still live and may mutate concurrently.
func (r *Registry) All() []*models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out
}

// ActiveBySymbol returns every PENDING or PARTIALLY_FILLED order for a
// symbol.
func (r *Registry) ActiveBySymbol(symbol string) []*models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Order
	for _, o := range r.orders {
		if o.Symbol != symbol {
			continue
		}
		if o.Status == models.Pending || o.Status == models.PartiallyFilled {
			out = append(out, o)
		}
	}
	return out
}
