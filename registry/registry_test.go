package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k2302/golang-order-matching/idgen"
	"github.com/k2302/golang-order-matching/models"
)

func newTestRegistry() *Registry {
	return New(idgen.New())
}

func TestCreateValidOrder(t *testing.T) {
	r := newTestRegistry()
	o, code := r.Create(1, "X", models.Buy, models.Limit, models.GFD, 100, 5)
	require.Equal(t, models.Success, code)
	assert.Equal(t, models.Pending, o.Status)
	assert.Equal(t, uint64(0), o.Filled)
	assert.Same(t, o, r.Get(o.ID))
}

func TestCreateRejectsEmptySymbol(t *testing.T) {
	r := newTestRegistry()
	o, code := r.Create(1, "", models.Buy, models.Limit, models.GFD, 100, 5)
	assert.Equal(t, models.ErrInvalidSymbol, code)
	assert.Equal(t, models.Rejected, o.Status)
	assert.Nil(t, r.Get(o.ID))
}

func TestCreateRejectsZeroQuantity(t *testing.T) {
	r := newTestRegistry()
	_, code := r.Create(1, "X", models.Buy, models.Limit, models.GFD, 100, 0)
	assert.Equal(t, models.ErrInvalidQuantity, code)
}

func TestCreateRejectsLimitWithZeroPrice(t *testing.T) {
	r := newTestRegistry()
	_, code := r.Create(1, "X", models.Buy, models.Limit, models.GFD, 0, 5)
	assert.Equal(t, models.ErrInvalidPrice, code)
}

func TestCreateAllowsMarketWithZeroPrice(t *testing.T) {
	r := newTestRegistry()
	o, code := r.Create(1, "X", models.Buy, models.Market, models.IOC, 0, 5)
	require.Equal(t, models.Success, code)
	assert.Equal(t, models.Pending, o.Status)
}

func TestCancelUnknownOrder(t *testing.T) {
	r := newTestRegistry()
	assert.Equal(t, models.ErrOrderNotFound, r.Cancel(999))
}

func TestCancelTerminalOrderIsSystemError(t *testing.T) {
	r := newTestRegistry()
	o, _ := r.Create(1, "X", models.Buy, models.Limit, models.GFD, 100, 5)
	require.Equal(t, models.Success, r.Cancel(o.ID))
	assert.Equal(t, models.Cancelled, r.Get(o.ID).Status)
	assert.Equal(t, models.ErrSystemError, r.Cancel(o.ID))
}

func TestActiveBySymbolFiltersTerminal(t *testing.T) {
	r := newTestRegistry()
	o1, _ := r.Create(1, "X", models.Buy, models.Limit, models.GFD, 100, 5)
	o2, _ := r.Create(1, "X", models.Sell, models.Limit, models.GFD, 100, 5)
	o3, _ := r.Create(1, "Y", models.Sell, models.Limit, models.GFD, 100, 5)
	require.Equal(t, models.Success, r.Cancel(o2.ID))

	active := r.ActiveBySymbol("X")
	require.Len(t, active, 1)
	assert.Equal(t, o1.ID, active[0].ID)
	_ = o3
}

func TestUserOrdersReturnsAllEverSubmitted(t *testing.T) {
	r := newTestRegistry()
	o1, _ := r.Create(1, "X", models.Buy, models.Limit, models.GFD, 100, 5)
	o2, _ := r.Create(1, "X", models.Sell, models.Limit, models.GFD, 100, 5)
	require.Equal(t, models.Success, r.Cancel(o1.ID))

	orders := r.UserOrders(1)
	require.Len(t, orders, 2)
	assert.Equal(t, models.Cancelled, orders[0].Status)
	assert.Equal(t, o2.ID, orders[1].ID)
}
