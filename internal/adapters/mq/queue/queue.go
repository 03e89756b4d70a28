// Package queue defines the contract for enqueuing and consuming summary triggers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/prhealth/internal/domain/model"
	"github.com/okian/prhealth/pkg/metrics"
)

const defaultQueueCapacity = 1_000

// Trigger is the payload flowing through the queue.
type Trigger = model.SummaryTrigger

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a trigger to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, t Trigger) bool

	// Dequeue returns a channel that receives triggers as they become available.
	// The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Trigger

	// Len returns the current number of queued triggers.
	Len(ctx context.Context) int

	// Capacity returns the maximum number of queued triggers.
	Capacity() int

	// Close stops accepting triggers. Triggers already queued are still delivered.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	triggers chan Trigger
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.triggers = make(chan Trigger, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

// Enqueue adds a trigger to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Trigger) bool { //nolint:gocritic // hugeParam: passed by value into the channel
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.rejected("closed")
		return false
	}
	if ctx.Err() != nil {
		q.rejected("context_cancelled")
		return false
	}

	select {
	case q.triggers <- t:
		metrics.RecordQueueEnqueue()
		q.updateGauges()
		return true
	default:
		q.rejected("queue_full")
		return false
	}
}

// Dequeue returns a channel that receives triggers until the queue is closed or ctx ends.
// An idle reader stops on ctx without taking a trigger off the queue.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Trigger {
	out := make(chan Trigger)
	go func() {
		defer close(out)
		for {
			var t Trigger
			select {
			case <-ctx.Done():
				return
			case next, ok := <-q.triggers:
				if !ok {
					return
				}
				t = next
			}
			select {
			case out <- t:
				metrics.RecordQueueDequeue()
				q.updateGauges()
			case <-ctx.Done():
				metrics.RecordErrorByComponent("queue", "dropped")
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued triggers.
func (q *InMemoryQueue) Len(_ context.Context) int {
	q.updateGauges()
	return len(q.triggers)
}

// Capacity returns the maximum number of queued triggers.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close stops accepting triggers.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.triggers)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) updateGauges() {
	size := len(q.triggers)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

func (q *InMemoryQueue) rejected(reason string) {
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", reason)
}
