package models

// MarketSnapshot is the immutable read OrderBook.snapshot hands back:
// symbol, last trade, and top of book at one instant.
type MarketSnapshot struct {
	Symbol            string
	LastTradePrice    int64
	LastTradeQuantity uint64
	BidPrice          int64
	BidQuantity       uint64
	AskPrice          int64
	AskQuantity       uint64
	TotalVolume       uint64
	Timestamp         int64
}

// DepthLevel is one aggregated (price, total unfilled quantity) pair as
// returned by OrderBook.BidDepth/AskDepth.
type DepthLevel struct {
	Price    int64
	Quantity uint64
}
