package models

// Trade is immutable once constructed: the matching engine builds one value
// per fill and never mutates it again.
type Trade struct {
	ID          uint64
	BuyOrderID  uint64
	SellOrderID uint64
	BuyUserID   uint64
	SellUserID  uint64
	Symbol      string
	Price       int64
	Quantity    uint64
	Timestamp   int64
}
