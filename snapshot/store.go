// Package snapshot persists the engine's live state to a pebble key-value
// store on a periodic sweep. Recovery from a snapshot is out of scope; each
// sweep commits atomically, but consistency across sweeps is not attempted.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"github.com/k2302/golang-order-matching/models"
)

// Store wraps a pebble.DB at the configured data directory, writing keys
// orderbook:<symbol>, order:<id>, balance:<user>, trade:<id> as JSON
// values.
type Store struct {
	db  *pebble.DB
	log *zap.Logger
}

func Open(dir string, log *zap.Logger) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Sweep writes every key passed to it inside a single pebble.Batch so the
// sweep as a whole commits atomically, even though consistency across
// sweeps is not guaranteed.
type Sweep struct {
	batch *pebble.Batch
	log   *zap.Logger
}

func (s *Store) BeginSweep() *Sweep {
	return &Sweep{batch: s.db.NewBatch(), log: s.log}
}

func (sw *Sweep) PutOrderBook(symbol string, snap models.MarketSnapshot) {
	sw.put(orderBookKey(symbol), snap)
}

func (sw *Sweep) PutOrder(o *models.Order) {
	sw.put(orderKey(o.ID), o)
}

func (sw *Sweep) PutBalance(b *models.Balance) {
	sw.put(balanceKey(b.UserID), b)
}

func (sw *Sweep) PutTrade(t models.Trade) {
	sw.put(tradeKey(t.ID), t)
}

func (sw *Sweep) put(key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		sw.log.Error("snapshot: marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := sw.batch.Set([]byte(key), payload, nil); err != nil {
		sw.log.Error("snapshot: batch set failed", zap.String("key", key), zap.Error(err))
	}
}

// Commit flushes the sweep's batch to disk atomically.
func (sw *Sweep) Commit() error {
	defer sw.batch.Close()
	return sw.batch.Commit(pebble.Sync)
}

func orderBookKey(symbol string) string { return fmt.Sprintf("orderbook:%s", symbol) }
func orderKey(id uint64) string         { return fmt.Sprintf("order:%d", id) }
func balanceKey(user uint64) string     { return fmt.Sprintf("balance:%d", user) }
func tradeKey(id uint64) string         { return fmt.Sprintf("trade:%d", id) }
