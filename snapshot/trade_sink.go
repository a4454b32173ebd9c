package snapshot

import (
	"go.uber.org/zap"

	"github.com/k2302/golang-order-matching/models"
)

// TradeSink persists each trade as it is emitted, under key trade:<id>.
// Registered as an additional engine.EventSink alongside the Kafka
// publisher and WebSocket hub; the emitter's fan-out is sink-count-agnostic.
type TradeSink struct {
	store *Store
	log   *zap.Logger
}

func NewTradeSink(store *Store, log *zap.Logger) *TradeSink {
	return &TradeSink{store: store, log: log}
}

func (t *TradeSink) OnTrade(trade models.Trade) {
	sw := t.store.BeginSweep()
	sw.PutTrade(trade)
	if err := sw.Commit(); err != nil {
		t.log.Error("snapshot: trade persist failed", zap.Error(err))
	}
}

func (t *TradeSink) OnOrderUpdate(models.Order)       {}
func (t *TradeSink) OnTick(models.MarketSnapshot)     {}
func (t *TradeSink) OnError(models.ErrorCode, string) {}
