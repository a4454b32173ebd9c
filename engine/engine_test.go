package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/k2302/golang-order-matching/models"
)

func newTestEngine() *Engine {
	e := New(zap.NewNop())
	e.InitializeBalance(1, 1_000_000)
	e.InitializeBalance(2, 1_000_000)
	return e
}

// Scenario 1: simple cross, price-improvement refund on the marketable buy.
func TestScenarioSimpleCross(t *testing.T) {
	e := newTestEngine()

	sell, code := e.Submit(2, "X", models.Sell, models.Limit, models.GFD, 10000, 5)
	require.Equal(t, models.Success, code)

	buy, code := e.Submit(1, "X", models.Buy, models.Limit, models.GFD, 10500, 5)
	require.Equal(t, models.Success, code)

	assert.Equal(t, models.Filled, buy.Status)
	assert.Equal(t, models.Filled, sell.Status)

	b1 := e.Ledger().Balance(1)
	b2 := e.Ledger().Balance(2)
	assert.Equal(t, int64(950_000), b1.Available)
	assert.Equal(t, int64(0), b1.Locked)
	assert.Equal(t, int64(1_050_000), b2.Available)
	assert.Equal(t, int64(0), b2.Locked)
}

// Scenario 2: partial fill leaves a residual resting bid.
func TestScenarioPartialFillWithResidualRest(t *testing.T) {
	e := newTestEngine()

	buy, code := e.Submit(1, "X", models.Buy, models.Limit, models.GFD, 10000, 10)
	require.Equal(t, models.Success, code)

	sell, code := e.Submit(2, "X", models.Sell, models.Limit, models.GFD, 10000, 4)
	require.Equal(t, models.Success, code)

	assert.Equal(t, models.PartiallyFilled, buy.Status)
	assert.Equal(t, models.Filled, sell.Status)

	assert.Equal(t, int64(10000), e.Book("X").BestBid())
	depth := e.Book("X").BidDepth(1)
	require.Len(t, depth, 1)
	assert.Equal(t, uint64(6), depth[0].Quantity)

	b1 := e.Ledger().Balance(1)
	assert.Equal(t, int64(60_000), b1.Locked)
	assert.Equal(t, int64(900_000), b1.Available)

	b2 := e.Ledger().Balance(2)
	assert.Equal(t, int64(1_040_000), b2.Available)
}

// Scenario 3: IOC partial fill is terminal, unfilled reservation released.
func TestScenarioIOCInsufficientLiquidity(t *testing.T) {
	e := newTestEngine()

	_, code := e.Submit(2, "X", models.Sell, models.Limit, models.GFD, 10000, 3)
	require.Equal(t, models.Success, code)

	buy, code := e.Submit(1, "X", models.Buy, models.Limit, models.IOC, 10000, 10)
	require.Equal(t, models.Success, code)

	assert.Equal(t, models.PartiallyFilled, buy.Status)
	assert.Equal(t, uint64(3), buy.Filled)
	assert.Equal(t, int64(0), e.Ledger().Balance(1).Locked)
	assert.Equal(t, int64(0), e.Book("X").BestBid())
}

// Scenario 4: FOK fails outright, resting sell untouched, nothing locked.
func TestScenarioFOKFailure(t *testing.T) {
	e := newTestEngine()

	sell, code := e.Submit(2, "X", models.Sell, models.Limit, models.GFD, 10000, 3)
	require.Equal(t, models.Success, code)

	buy, code := e.Submit(1, "X", models.Buy, models.Limit, models.FOK, 10000, 10)
	require.Equal(t, models.Success, code)

	assert.Equal(t, models.Cancelled, buy.Status)
	assert.Equal(t, uint64(0), buy.Filled)
	assert.Equal(t, int64(0), e.Ledger().Balance(1).Locked)

	resting := e.Registry().Get(sell.ID)
	assert.Equal(t, models.Pending, resting.Status)
	assert.Equal(t, uint64(3), resting.Quantity)
}

// Scenario 5: MARKET buy walks two levels, sentinel drains exactly.
func TestScenarioMarketBuyConsumesMultipleLevels(t *testing.T) {
	e := newTestEngine()

	_, code := e.Submit(2, "X", models.Sell, models.Limit, models.GFD, 10000, 4)
	require.Equal(t, models.Success, code)
	_, code = e.Submit(2, "X", models.Sell, models.Limit, models.GFD, 10100, 3)
	require.Equal(t, models.Success, code)

	buy, code := e.Submit(1, "X", models.Buy, models.Market, models.IOC, 0, 6)
	require.Equal(t, models.Success, code)

	assert.Equal(t, models.Filled, buy.Status)
	assert.Equal(t, int64(0), e.Ledger().Balance(1).Locked)
	assert.Equal(t, int64(1_000_000-60_200), e.Ledger().Balance(1).Available)

	depth := e.Book("X").AskDepth(5)
	require.Len(t, depth, 1)
	assert.Equal(t, int64(10100), depth[0].Price)
	assert.Equal(t, uint64(1), depth[0].Quantity)
}

// Scenario 6: cancel of a resting order unlocks its funds.
func TestScenarioCancelUnlocksFunds(t *testing.T) {
	e := newTestEngine()

	buy, code := e.Submit(1, "X", models.Buy, models.Limit, models.GFD, 10000, 5)
	require.Equal(t, models.Success, code)
	require.Equal(t, models.Pending, buy.Status)

	code = e.Cancel(buy.ID)
	require.Equal(t, models.Success, code)

	cancelled := e.Registry().Get(buy.ID)
	assert.Equal(t, models.Cancelled, cancelled.Status)

	b1 := e.Ledger().Balance(1)
	assert.Equal(t, int64(0), b1.Locked)
	assert.Equal(t, int64(1_000_000), b1.Available)
	assert.Equal(t, int64(0), e.Book("X").BestBid())
}

// Self-trade is permitted: the same user can cross their own resting order.
func TestSelfTradePermitted(t *testing.T) {
	e := newTestEngine()

	sell, code := e.Submit(1, "X", models.Sell, models.Limit, models.GFD, 10000, 5)
	require.Equal(t, models.Success, code)

	buy, code := e.Submit(1, "X", models.Buy, models.Limit, models.GFD, 10000, 5)
	require.Equal(t, models.Success, code)

	assert.Equal(t, models.Filled, buy.Status)
	assert.Equal(t, models.Filled, sell.Status)
}

// Value conservation: across any sequence of fills, the sum of available +
// locked balances across all users never changes.
func TestInvariantValueConservation(t *testing.T) {
	e := newTestEngine()
	total := func() int64 {
		b1, b2 := e.Ledger().Balance(1), e.Ledger().Balance(2)
		return b1.Total() + b2.Total()
	}
	before := total()

	_, code := e.Submit(2, "X", models.Sell, models.Limit, models.GFD, 10000, 5)
	require.Equal(t, models.Success, code)
	_, code = e.Submit(1, "X", models.Buy, models.Limit, models.GFD, 10500, 5)
	require.Equal(t, models.Success, code)

	assert.Equal(t, before, total())
}

// Order ids and trade ids are strictly increasing within one engine instance.
func TestInvariantStrictlyIncreasingIDs(t *testing.T) {
	e := newTestEngine()

	o1, _ := e.Submit(1, "X", models.Buy, models.Limit, models.GFD, 9000, 1)
	o2, _ := e.Submit(1, "X", models.Buy, models.Limit, models.GFD, 9000, 1)
	assert.Less(t, o1.ID, o2.ID)
}

// Two independent engines allocate independent, non-interfering id spaces.
func TestInvariantEnginesAreIndependent(t *testing.T) {
	e1 := newTestEngine()
	e2 := newTestEngine()

	o1, _ := e1.Submit(1, "X", models.Buy, models.Limit, models.GFD, 9000, 1)
	o2, _ := e2.Submit(1, "X", models.Buy, models.Limit, models.GFD, 9000, 1)
	assert.Equal(t, o1.ID, o2.ID)
}

// A book never ends up crossed: best_bid < best_ask whenever both sides
// are non-empty.
func TestInvariantBookNeverCrossed(t *testing.T) {
	e := newTestEngine()

	_, code := e.Submit(2, "X", models.Sell, models.Limit, models.GFD, 10100, 5)
	require.Equal(t, models.Success, code)
	_, code = e.Submit(1, "X", models.Buy, models.Limit, models.GFD, 10000, 5)
	require.Equal(t, models.Success, code)

	bid, ask := e.Book("X").BestBid(), e.Book("X").BestAsk()
	if bid != 0 && ask != 0 {
		assert.Less(t, bid, ask)
	}
}
