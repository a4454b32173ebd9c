package intake

import (
	"go.uber.org/zap"

	"github.com/k2302/golang-order-matching/engine"
	"github.com/k2302/golang-order-matching/models"
	"github.com/k2302/golang-order-matching/pricefmt"
)

// Dispatcher turns one decoded wire message into a call against the
// matching engine. Decode failures and unknown actions are reported but
// never terminate the caller.
type Dispatcher struct {
	eng   *engine.Engine
	codec pricefmt.Codec
	log   *zap.Logger
}

func NewDispatcher(eng *engine.Engine, codec pricefmt.Codec, log *zap.Logger) *Dispatcher {
	return &Dispatcher{eng: eng, codec: codec, log: log}
}

// HandleRaw decodes one raw intake-queue payload and dispatches it. It
// never panics or returns an error that should stop the reader loop.
// Decode failures, unknown actions and unparseable side, type, time in
// force or price are only logged; errors returned by the engine's
// Submit/Cancel are published by the engine on its error sink.
func (d *Dispatcher) HandleRaw(payload []byte) {
	msg, err := decodeIntent(payload)
	if err != nil {
		d.log.Warn("intake: decode failed", zap.Error(err))
		return
	}
	d.Handle(msg)
}

func (d *Dispatcher) Handle(msg IntentMessage) {
	switch msg.Action {
	case "place":
		d.handlePlace(msg)
	case "cancel":
		d.eng.Cancel(msg.OrderID)
	default:
		d.log.Warn("intake: unknown action", zap.String("action", msg.Action))
	}
}

func (d *Dispatcher) handlePlace(msg IntentMessage) {
	side, ok := parseSide(msg.Side)
	if !ok {
		d.log.Warn("intake: invalid side", zap.String("side", msg.Side))
		return
	}
	typ, ok := parseType(msg.Type)
	if !ok {
		d.log.Warn("intake: invalid order type", zap.String("type", msg.Type))
		return
	}
	tif, ok := parseTIF(msg.TimeInForce)
	if !ok {
		d.log.Warn("intake: invalid time in force", zap.String("timeInForce", msg.TimeInForce))
		return
	}

	var price int64
	if typ == models.Limit {
		p, err := d.codec.ParseFixed(string(msg.Price))
		if err != nil {
			d.log.Warn("intake: invalid price", zap.Error(err))
			return
		}
		price = p
	}

	d.eng.Submit(msg.UserID, msg.Symbol, side, typ, tif, price, msg.Quantity)
}

func parseSide(s string) (models.Side, bool) {
	switch s {
	case "BUY":
		return models.Buy, true
	case "SELL":
		return models.Sell, true
	default:
		return "", false
	}
}

func parseType(s string) (models.OrderType, bool) {
	switch s {
	case "LIMIT":
		return models.Limit, true
	case "MARKET":
		return models.Market, true
	default:
		return "", false
	}
}

func parseTIF(s string) (models.TimeInForce, bool) {
	switch s {
	case "":
		return models.GFD, true
	case "GFD":
		return models.GFD, true
	case "IOC":
		return models.IOC, true
	case "FOK":
		return models.FOK, true
	default:
		return "", false
	}
}
