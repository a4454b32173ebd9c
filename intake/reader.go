package intake

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Pool runs N reader goroutines against the intake topic. Each owns its own kafka.Reader on the
// same consumer group so partitions distribute across workers.
type Pool struct {
	brokers    []string
	topic      string
	groupID    string
	numWorkers int
	dispatcher *Dispatcher
	log        *zap.Logger
}

func NewPool(brokers []string, topic, groupID string, numWorkers int, dispatcher *Dispatcher, log *zap.Logger) *Pool {
	return &Pool{
		brokers:    brokers,
		topic:      topic,
		groupID:    groupID,
		numWorkers: numWorkers,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Run blocks until ctx is cancelled, at which point all worker readers are
// closed and Run returns. Each read is given ctx, so a worker blocked on
// the queue returns as soon as ctx is cancelled; no per-read timeout is
// set.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.runWorker(ctx, workerID)
		}(i)
	}
	wg.Wait()
}

func (p *Pool) runWorker(ctx context.Context, workerID int) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: p.brokers,
		Topic:   p.topic,
		GroupID: p.groupID,
	})
	defer r.Close()

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			p.log.Error("intake: read failed", zap.Int("worker", workerID), zap.Error(err))
			continue
		}
		p.dispatcher.HandleRaw(m.Value)
	}
}
