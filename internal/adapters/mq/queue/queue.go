// Package queue buffers placed orders between the HTTP handler and the
// workers that append them to the order store.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/pkg/metrics"
)

const defaultQueueCapacity = 10000

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an order without blocking. It returns ErrFull when the
	// queue is at capacity and ErrClosed after Close.
	Enqueue(ctx context.Context, o model.Order) error
	// Dequeue returns a channel of pending orders, closed when the queue is
	// closed and drained.
	Dequeue(ctx context.Context) <-chan model.Order
	Len(ctx context.Context) int
	Capacity() int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	orders   chan model.Order
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.orders = make(chan model.Order, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds an order to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, o model.Order) error { //nolint:gocritic // hugeParam: orders are passed by value through the channel
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	select {
	case q.orders <- o:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.orders))
		return nil
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return fmt.Errorf("enqueue: %w", ctx.Err())
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that receives orders as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan model.Order {
	out := make(chan model.Order)
	go func() {
		defer close(out)
		for o := range q.orders {
			select {
			case out <- o:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.orders))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the number of pending orders.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.orders)
	metrics.UpdateQueueSize(size)
	return size
}

// Capacity returns the maximum number of pending orders.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close stops new enqueues; pending orders can still be drained.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.orders)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
