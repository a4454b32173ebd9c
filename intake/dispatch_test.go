package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/k2302/golang-order-matching/engine"
	"github.com/k2302/golang-order-matching/models"
	"github.com/k2302/golang-order-matching/pricefmt"
)

func newTestDispatcher() (*Dispatcher, *engine.Engine) {
	eng := engine.New(zap.NewNop())
	eng.InitializeBalance(1, 1_000_000)
	eng.InitializeBalance(2, 1_000_000)
	d := NewDispatcher(eng, pricefmt.NewCodec(2), zap.NewNop())
	return d, eng
}

func TestHandlePlaceCreatesRestingOrder(t *testing.T) {
	d, eng := newTestDispatcher()

	d.Handle(IntentMessage{
		Action: "place", UserID: 1, Symbol: "X", Side: "BUY", Type: "LIMIT",
		Price: "100.00", Quantity: 5, TimeInForce: "GFD",
	})

	orders := eng.Registry().UserOrders(1)
	require.Len(t, orders, 1)
	assert.Equal(t, models.Pending, orders[0].Status)
	assert.Equal(t, int64(10000), orders[0].Price)
}

func TestHandleCancelRemovesRestingOrder(t *testing.T) {
	d, eng := newTestDispatcher()

	d.Handle(IntentMessage{
		Action: "place", UserID: 1, Symbol: "X", Side: "BUY", Type: "LIMIT",
		Price: "100.00", Quantity: 5, TimeInForce: "GFD",
	})
	id := eng.Registry().UserOrders(1)[0].ID

	d.Handle(IntentMessage{Action: "cancel", OrderID: id})

	assert.Equal(t, models.Cancelled, eng.Registry().Get(id).Status)
}

func TestHandleUnknownActionIsIgnored(t *testing.T) {
	d, eng := newTestDispatcher()
	d.Handle(IntentMessage{Action: "explode"})
	assert.Empty(t, eng.Registry().UserOrders(1))
}

func TestHandleInvalidSideIsIgnored(t *testing.T) {
	d, eng := newTestDispatcher()
	d.Handle(IntentMessage{Action: "place", UserID: 1, Symbol: "X", Side: "SIDEWAYS", Type: "LIMIT", Price: "1.00", Quantity: 1})
	assert.Empty(t, eng.Registry().UserOrders(1))
}

func TestHandleRawDecodesJSON(t *testing.T) {
	d, eng := newTestDispatcher()
	payload := []byte(`{"action":"place","userId":2,"symbol":"X","side":"SELL","type":"LIMIT","price":"50.00","quantity":3,"timeInForce":"GFD"}`)
	d.HandleRaw(payload)

	orders := eng.Registry().UserOrders(2)
	require.Len(t, orders, 1)
	assert.Equal(t, models.Sell, orders[0].Side)
}

func TestHandleRawMalformedJSONIsDropped(t *testing.T) {
	d, _ := newTestDispatcher()
	d.HandleRaw([]byte(`not json`))
}
