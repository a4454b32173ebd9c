package engine

import "github.com/k2302/golang-order-matching/models"

// EventSink receives every trade, order-update, tick and error the
// matching engine produces, in the causal order those state transitions
// happened. An Engine may have zero or more sinks; see the
// events package for concrete fan-out implementations (Kafka, WebSocket).
type EventSink interface {
	OnTrade(t models.Trade)
	OnOrderUpdate(o models.Order)
	OnTick(s models.MarketSnapshot)
	OnError(code models.ErrorCode, message string)
}

// multiSink fans a single call out to every registered sink in
// registration order, synchronously; it does not recover from a panicking
// sink. events.Emitter (the production EventSink) decouples matching from
// downstream sink latency via a buffered channel, so multiSink itself stays
// simple.
type multiSink struct {
	sinks []EventSink
}

func (m *multiSink) OnTrade(t models.Trade) {
	for _, s := range m.sinks {
		s.OnTrade(t)
	}
}

func (m *multiSink) OnOrderUpdate(o models.Order) {
	for _, s := range m.sinks {
		s.OnOrderUpdate(o)
	}
}

func (m *multiSink) OnTick(s models.MarketSnapshot) {
	for _, sink := range m.sinks {
		sink.OnTick(s)
	}
}

func (m *multiSink) OnError(code models.ErrorCode, message string) {
	for _, s := range m.sinks {
		s.OnError(code, message)
	}
}

// NopSink discards every event. Useful for tests that don't care about
// emission.
type NopSink struct{}

func (NopSink) OnTrade(models.Trade)                 {}
func (NopSink) OnOrderUpdate(models.Order)            {}
func (NopSink) OnTick(models.MarketSnapshot)          {}
func (NopSink) OnError(models.ErrorCode, string)      {}
