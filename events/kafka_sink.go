// Package events holds the event-emitter sinks that sit outside the
// matching core: a Kafka publisher and a WebSocket market-data hub, each
// implementing engine.EventSink so the emitter's fan-out stays
// sink-count-agnostic.
package events

import (
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/k2302/golang-order-matching/models"
)

// KafkaSink publishes every emitted event to one of four topics
// (trades/orders/ticks/errors), keyed by symbol so Kafka's per-partition
// ordering preserves per-symbol event ordering.
type KafkaSink struct {
	producer sarama.SyncProducer
	topics   Topics
	log      *zap.Logger
}

// Topics names the four topics a KafkaSink publishes to.
type Topics struct {
	Trades string
	Orders string
	Ticks  string
	Errors string
}

// NewKafkaSink dials brokers with a SyncProducer that waits for all
// replicas to ack and retries a bounded number of times before giving up.
func NewKafkaSink(brokers []string, topics Topics, log *zap.Logger) (*KafkaSink, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &KafkaSink{producer: producer, topics: topics, log: log}, nil
}

func (k *KafkaSink) Close() error { return k.producer.Close() }

func (k *KafkaSink) OnTrade(t models.Trade) {
	k.publish(k.topics.Trades, t.Symbol, t)
}

func (k *KafkaSink) OnOrderUpdate(o models.Order) {
	k.publish(k.topics.Orders, o.Symbol, o)
}

func (k *KafkaSink) OnTick(s models.MarketSnapshot) {
	k.publish(k.topics.Ticks, s.Symbol, s)
}

func (k *KafkaSink) OnError(code models.ErrorCode, msg string) {
	k.publish(k.topics.Errors, "", struct {
		Code    models.ErrorCode `json:"code"`
		Message string           `json:"message"`
	}{code, msg})
}

func (k *KafkaSink) publish(topic, key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		k.log.Error("kafka sink: marshal failed", zap.Error(err), zap.String("topic", topic))
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(payload),
	}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}
	if _, _, err := k.producer.SendMessage(msg); err != nil {
		k.log.Error("kafka sink: publish failed", zap.Error(err), zap.String("topic", topic))
	}
}
