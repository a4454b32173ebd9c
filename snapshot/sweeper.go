package snapshot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/k2302/golang-order-matching/engine"
)

// Sweeper periodically walks the engine's live state and commits one
// snapshot sweep. The set of symbols swept
// is re-discovered from the engine on every tick, so a symbol is covered
// starting with the first sweep after its first order arrives.
type Sweeper struct {
	store    *Store
	eng      *engine.Engine
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(store *Store, eng *engine.Engine, interval time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{store: store, eng: eng, interval: interval, log: log}
}

// Run blocks, sweeping every interval, until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *Sweeper) sweepOnce() {
	sw := s.store.BeginSweep()

	for _, symbol := range s.eng.Symbols() {
		sw.PutOrderBook(symbol, s.eng.MarketSnapshot(symbol))
	}
	for _, o := range s.eng.Registry().All() {
		sw.PutOrder(o)
	}
	for _, b := range s.eng.Ledger().All() {
		b := b
		sw.PutBalance(&b)
	}

	if err := sw.Commit(); err != nil {
		s.log.Error("snapshot: sweep commit failed", zap.Error(err))
	}
}
