// Package ledger implements the per-user available/locked balance ledger.
// A single exclusion lock serialises every mutation and every read; simple
// and correct, contention is the price paid.
package ledger

import (
	"sync"

	"go.uber.org/zap"

	"github.com/k2302/golang-order-matching/models"
)

type Ledger struct {
	mu       sync.Mutex
	balances map[uint64]*models.Balance
	log      *zap.Logger
}

func New(log *zap.Logger) *Ledger {
	return &Ledger{
		balances: make(map[uint64]*models.Balance),
		log:      log,
	}
}

func (l *Ledger) getOrCreate(user uint64) *models.Balance {
	b, ok := l.balances[user]
	if !ok {
		b = &models.Balance{UserID: user}
		l.balances[user] = b
	}
	return b
}

// Initialize sets available = amount, locked = 0, overwriting any prior
// state for the user.
func (l *Ledger) Initialize(user uint64, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[user] = &models.Balance{UserID: user, Available: amount}
}

// Balance returns a point-in-time copy of the user's balance.
func (l *Ledger) Balance(user uint64) models.Balance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.getOrCreate(user)
}

// All returns a point-in-time copy of every user's balance, for the
// periodic snapshot sweep.
func (l *Ledger) All() []models.Balance {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Balance, 0, len(l.balances))
	for _, b := range l.balances {
		out = append(out, *b)
	}
	return out
}

// HasAvailable reports whether available(user) >= amount.
func (l *Ledger) HasAvailable(user uint64, amount int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getOrCreate(user).Available >= amount
}

// Lock moves amount from available to locked, failing with
// INSUFFICIENT_BALANCE if available < amount.
func (l *Ledger) Lock(user uint64, amount int64) models.ErrorCode {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.getOrCreate(user)
	if b.Available < amount {
		return models.ErrInsufficientFunds
	}
	b.Available -= amount
	b.Locked += amount
	return models.Success
}

// Unlock reverses Lock, failing with SYSTEM_ERROR if locked < amount; that
// would indicate an invariant violation elsewhere in the engine.
func (l *Ledger) Unlock(user uint64, amount int64) models.ErrorCode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unlockLocked(user, amount)
}

func (l *Ledger) unlockLocked(user uint64, amount int64) models.ErrorCode {
	b := l.getOrCreate(user)
	if b.Locked < amount {
		l.log.Error("unlock exceeds locked balance",
			zap.Uint64("user", user), zap.Int64("locked", b.Locked), zap.Int64("amount", amount))
		return models.ErrSystemError
	}
	b.Locked -= amount
	b.Available += amount
	return models.Success
}

// Transfer moves amount from from.available to to.available, failing with
// INSUFFICIENT_BALANCE if available(from) < amount.
func (l *Ledger) Transfer(from, to uint64, amount int64) models.ErrorCode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transferLocked(from, to, amount)
}

func (l *Ledger) transferLocked(from, to uint64, amount int64) models.ErrorCode {
	fb := l.getOrCreate(from)
	if fb.Available < amount {
		return models.ErrInsufficientFunds
	}
	tb := l.getOrCreate(to)
	fb.Available -= amount
	tb.Available += amount
	return models.Success
}

// CompleteTrade releases lockedPortion from the user's locked balance and
// credits back lockedPortion-actualCost to available (price improvement or
// an unused sentinel reservation). Fails with SYSTEM_ERROR if locked <
// lockedPortion.
func (l *Ledger) CompleteTrade(user uint64, lockedPortion, actualCost int64) models.ErrorCode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.completeTradeLocked(user, lockedPortion, actualCost)
}

func (l *Ledger) completeTradeLocked(user uint64, lockedPortion, actualCost int64) models.ErrorCode {
	b := l.getOrCreate(user)
	if b.Locked < lockedPortion {
		l.log.Error("complete_trade exceeds locked balance",
			zap.Uint64("user", user), zap.Int64("locked", b.Locked), zap.Int64("locked_portion", lockedPortion))
		return models.ErrSystemError
	}
	b.Locked -= lockedPortion
	refund := lockedPortion - actualCost
	if refund > 0 {
		b.Available += refund
	}
	return models.Success
}

// SettleFill settles one fill atomically: it releases the buyer's
// lockedPortion (refunding lockedPortion-tradeValue as price improvement,
// exactly like CompleteTrade) and credits the seller with tradeValue out of
// the funds CompleteTrade just consumed. The buyer must not be debited a
// second time by a separate Transfer: tradeValue already left the buyer's
// balance when completeTradeLocked declined to refund it.
func (l *Ledger) SettleFill(buyer, seller uint64, lockedPortion, tradeValue int64) models.ErrorCode {
	l.mu.Lock()
	defer l.mu.Unlock()
	if code := l.completeTradeLocked(buyer, lockedPortion, tradeValue); code != models.Success {
		return code
	}
	l.getOrCreate(seller).Available += tradeValue
	return models.Success
}

// RequiredFunds returns price*quantity for BUY LIMIT orders, 0 otherwise.
// MARKET BUYs are reserved by the matching engine's sentinel-reservation
// path instead; SELL orders reserve nothing.
func RequiredFunds(side models.Side, orderType models.OrderType, price int64, quantity uint64) int64 {
	if side == models.Buy && orderType == models.Limit {
		return price * int64(quantity)
	}
	return 0
}
