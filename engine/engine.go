// Package engine is the matching core: it composes the identifier
// allocator, balance ledger, order registry and per-symbol order books into
// the order lifecycle. It owns no data directly; every piece of state
// lives in one of those four collaborators.
package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/k2302/golang-order-matching/book"
	"github.com/k2302/golang-order-matching/idgen"
	"github.com/k2302/golang-order-matching/ledger"
	"github.com/k2302/golang-order-matching/models"
	"github.com/k2302/golang-order-matching/registry"
)

// maxDepthScan bounds how many price levels FOK's pre-check and MARKET
// BUY's sentinel-reservation walk will look at.
const maxDepthScan = 100

type Engine struct {
	ids      *idgen.Allocator
	ledger   *ledger.Ledger
	registry *registry.Registry
	sink     EventSink
	log      *zap.Logger

	booksMu sync.Mutex
	books   map[string]*book.OrderBook
}

func New(log *zap.Logger, sinks ...EventSink) *Engine {
	ids := idgen.New()
	return &Engine{
		ids:      ids,
		ledger:   ledger.New(log),
		registry: registry.New(ids),
		sink:     &multiSink{sinks: sinks},
		log:      log,
		books:    make(map[string]*book.OrderBook),
	}
}

// getOrCreateBook returns the OrderBook for a symbol, creating it under the
// books-collection lock on first use.
func (e *Engine) getOrCreateBook(symbol string) *book.OrderBook {
	e.booksMu.Lock()
	defer e.booksMu.Unlock()
	b, ok := e.books[symbol]
	if !ok {
		b = book.New(symbol)
		e.books[symbol] = b
	}
	return b
}

// Book exposes the per-symbol order book for read-only callers (HTTP
// handlers, snapshotting). It creates the book if the symbol has never been
// traded, matching getOrCreateBook's semantics.
func (e *Engine) Book(symbol string) *book.OrderBook {
	return e.getOrCreateBook(symbol)
}

// Ledger exposes the balance ledger for read-only callers.
func (e *Engine) Ledger() *ledger.Ledger { return e.ledger }

// Registry exposes the order registry for read-only callers.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// InitializeBalance seeds a user's starting balance (test/bootstrap path).
func (e *Engine) InitializeBalance(user uint64, amount int64) {
	e.ledger.Initialize(user, amount)
}

// MarketSnapshot returns an immutable read of a symbol's book.
func (e *Engine) MarketSnapshot(symbol string) models.MarketSnapshot {
	b := e.getOrCreateBook(symbol)
	return b.Snapshot(e.ids.NextTimestamp())
}

// Symbols returns every symbol that has had a book created so far: by its
// first order, or by a Book or MarketSnapshot lookup of it. Callers that need a stable snapshot for
// iteration, such as the periodic sweeper, should call this once per pass
// rather than holding a reference to the returned slice across ticks.
func (e *Engine) Symbols() []string {
	e.booksMu.Lock()
	defer e.booksMu.Unlock()
	out := make([]string, 0, len(e.books))
	for symbol := range e.books {
		out = append(out, symbol)
	}
	return out
}
