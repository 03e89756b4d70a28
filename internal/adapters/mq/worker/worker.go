// Package worker delivers queued summary triggers to an outbound sink.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/prhealth/internal/adapters/mq/queue"
	"github.com/okian/prhealth/pkg/logger"
	"github.com/okian/prhealth/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount     = 4
	defaultDeliveryTimeout = 10 * time.Second
)

// Delivery outcomes recorded in metrics.
const (
	outcomeDelivered = "delivered"
	outcomeFailed    = "failed"
)

// Trigger is what workers read off the queue.
type Trigger = queue.Trigger

// Sink receives summary triggers.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, t Trigger) error
}

// Queue defines how workers receive triggers.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Trigger
}

// InMemoryWorker delivers triggers one at a time.
type InMemoryWorker struct {
	queue           Queue
	sink            Sink
	name            string
	deliveryTimeout time.Duration

	delivered *atomic.Int64
	failed    *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:           q,
		sink:            sink,
		name:            "worker",
		deliveryTimeout: defaultDeliveryTimeout,
		delivered:       &atomic.Int64{},
		failed:          &atomic.Int64{},
		shutdown:        make(chan struct{}),
		done:            make(chan struct{}),
		logger:          logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.With(logger.String("worker", w.name))
	}
	return w
}

// Run delivers triggers until the queue is drained, ctx ends, or Shutdown is called.
// The queue reader started here ends with Run.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	triggers := w.queue.Dequeue(ctx)
	for {
		select {
		case <-w.shutdown:
			return
		default:
		}
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-triggers:
			if !ok {
				return
			}
			if err := w.deliver(ctx, t); err != nil {
				w.logger.Error(ctx, "summary trigger delivery failed",
					logger.String("trigger_id", t.ID),
					logger.String("account_id", t.AccountID),
					logger.String("sink", w.sink.Name()),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker without waiting for the queue to drain.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) deliver(ctx context.Context, t Trigger) error { //nolint:gocritic // hugeParam: read by value off the channel
	start := time.Now()
	dctx, cancel := context.WithTimeout(ctx, w.deliveryTimeout)
	defer cancel()

	err := w.sink.Deliver(dctx, t)
	ms := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordWorkerProcessingLatency(ms)
	if err != nil {
		w.failed.Add(1)
		metrics.RecordDelivery(w.sink.Name(), outcomeFailed, ms)
		metrics.RecordErrorByComponent("worker", "delivery")
		return fmt.Errorf("deliver trigger %s: %w", t.ID, err)
	}
	w.delivered.Add(1)
	metrics.RecordDelivery(w.sink.Name(), outcomeDelivered, ms)
	return nil
}

// Pool manages multiple workers sharing one queue and sink.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	delivered atomic.Int64
	failed    atomic.Int64

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, q Queue, sink Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(q, sink, wopts...)
		w.delivered, w.failed = &p.delivered, &p.failed
		p.workers[i] = w
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Delivered returns the number of triggers delivered successfully.
func (p *Pool) Delivered() int64 { return p.delivered.Load() }

// Failed returns the number of triggers whose delivery failed.
func (p *Pool) Failed() int64 { return p.failed.Load() }

// Shutdown closes the queue and lets workers drain it until ctx ends, then stops them.
// It reports an error when ctx ended before every worker drained.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drained := true
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			drained = false
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for _, w := range p.workers {
		_ = w.Shutdown(stopCtx)
	}
	metrics.UpdateWorkerCount(0)
	if !drained {
		return fmt.Errorf("worker pool drain: %w", ctx.Err())
	}
	return nil
}
