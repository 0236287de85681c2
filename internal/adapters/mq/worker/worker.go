package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/pkg/logger"
	"github.com/okian/canteen/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Appender persists an order.
type Appender interface {
	AppendOrder(ctx context.Context, o model.Order) error
}

// Queue defines how workers receive orders.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Order
}

// Worker processes orders until its queue closes or it is stopped.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker appends dequeued orders to the store.
type InMemoryWorker struct {
	queue    Queue
	store    Appender
	name     string
	onStored func(id string)
	onFailed func(id string, err error)

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, store Appender, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		store:    store,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop. It returns when ctx is done, Shutdown is
// called, or the queue is closed and drained.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	orders := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case o, ok := <-orders:
			if !ok {
				return
			}
			if err := w.processOrder(ctx, o); err != nil {
				w.logger.Error(ctx, "error processing order", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker without draining further orders.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) processOrder(ctx context.Context, o model.Order) error { //nolint:gocritic // hugeParam: orders are passed by value through the channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := w.store.AppendOrder(ctx, o); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "append_order")
		if w.onFailed != nil {
			w.onFailed(o.ID, err)
		}
		return fmt.Errorf("append order %s: %w", o.ID, err)
	}

	metrics.RecordOrderStored()
	w.logger.Debug(ctx, "order stored",
		logger.String("order_id", o.ID),
		logger.String("hostel_block", o.HostelBlock),
	)
	if w.onStored != nil {
		w.onStored(o.ID)
	}
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	processed atomic.Int64

	logger logger.Logger
}

// NewPool creates a new worker pool. workerCount < 1 picks a default from
// the CPU count. opts apply to every worker after the pool's own.
func NewPool(workerCount int, queue Queue, store Appender, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	count := func(string) { p.processed.Add(1) }
	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{
			WithName("worker-" + strconv.Itoa(i)),
			WithOnStored(count),
		}, opts...)
		p.workers[i] = NewInMemoryWorker(queue, store, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of orders the pool has stored.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Shutdown closes the queue so workers drain what is pending, then waits for
// them to exit or for ctx to expire.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}
