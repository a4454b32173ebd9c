package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/k2302/golang-order-matching/engine"
	"github.com/k2302/golang-order-matching/models"
)

// kind discriminates which of the four callbacks produced an envelope.
type kind int

const (
	kindTrade kind = iota
	kindOrderUpdate
	kindTick
	kindError
)

type envelope struct {
	kind    kind
	trade   models.Trade
	order   models.Order
	tick    models.MarketSnapshot
	errCode models.ErrorCode
	errMsg  string
}

// Emitter is itself an engine.EventSink: the matching engine's calls into
// it just enqueue an envelope on a bounded channel and return, so while the
// channel has room matching latency does not depend on how slow a
// downstream sink (Kafka, a database) is. A single goroutine drains the channel and fans each envelope out to
// the registered sinks in arrival order, which satisfies the per-symbol
// (and, here, global) causal-ordering requirement.
type Emitter struct {
	ch    chan envelope
	sinks []engine.EventSink
	log   *zap.Logger
}

// NewEmitter builds an Emitter with the given downstream sinks and a
// channel of the given capacity. A full channel makes OnX calls block;
// this is a deliberate backpressure choice, since the alternative of
// dropping events would silently desynchronize sinks from engine state.
func NewEmitter(capacity int, log *zap.Logger, sinks ...engine.EventSink) *Emitter {
	return &Emitter{ch: make(chan envelope, capacity), sinks: sinks, log: log}
}

// Run drains the channel until ctx is cancelled and the channel is empty.
func (e *Emitter) Run(ctx context.Context) {
	for {
		select {
		case env := <-e.ch:
			e.dispatch(env)
		case <-ctx.Done():
			e.log.Info("emitter: shutdown signal received, draining")
			e.drain()
			return
		}
	}
}

func (e *Emitter) drain() {
	for {
		select {
		case env := <-e.ch:
			e.dispatch(env)
		default:
			return
		}
	}
}

func (e *Emitter) dispatch(env envelope) {
	for _, s := range e.sinks {
		switch env.kind {
		case kindTrade:
			s.OnTrade(env.trade)
		case kindOrderUpdate:
			s.OnOrderUpdate(env.order)
		case kindTick:
			s.OnTick(env.tick)
		case kindError:
			s.OnError(env.errCode, env.errMsg)
		}
	}
}

func (e *Emitter) OnTrade(t models.Trade)        { e.ch <- envelope{kind: kindTrade, trade: t} }
func (e *Emitter) OnOrderUpdate(o models.Order)  { e.ch <- envelope{kind: kindOrderUpdate, order: o} }
func (e *Emitter) OnTick(s models.MarketSnapshot) { e.ch <- envelope{kind: kindTick, tick: s} }
func (e *Emitter) OnError(code models.ErrorCode, msg string) {
	e.ch <- envelope{kind: kindError, errCode: code, errMsg: msg}
}
