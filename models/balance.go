package models

// Balance is a per-user snapshot returned by the ledger's read path. The
// ledger itself keeps the authoritative, mutex-guarded copy; this value is
// a point-in-time copy safe to hand to callers outside the lock.
type Balance struct {
	UserID    uint64
	Available int64
	Locked    int64
}

// Total is conserved by Lock/Unlock; CompleteTrade removes actualCost from
// it, and Transfer and SettleFill move value between users.
func (b Balance) Total() int64 {
	return b.Available + b.Locked
}
