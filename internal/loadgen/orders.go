package loadgen

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/pkg/logger"
)

type submitResult int

const (
	resultPending submitResult = iota
	resultAccepted
	resultDuplicate
	resultRejected
	resultFailed
)

func unmarshalAck(body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode ack: %w", err)
	}
	return nil
}

// submitOrders posts orders concurrently and returns the ones the service
// accepted as new, in submission order.
func submitOrders(ctx context.Context, cfg *Config, c *client, orders []model.Order, stats *Stats) []model.Order {
	log := logger.Named("loadgen")
	log.Info(ctx, "submitting orders", logger.Int("orders", len(orders)), logger.Int("workers", cfg.Workers))

	var (
		accepted  int64
		duplicate int64
		rejected  int64
		failed    int64
		submitted int64
	)
	results := make([]submitResult, len(orders))

	var lastReport atomic.Int64
	reportInterval := time.Second

	jobs := make(chan int, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res := submitOrder(ctx, c, orders[idx])
				results[idx] = res

				total := atomic.AddInt64(&submitted, 1)
				switch res {
				case resultAccepted:
					atomic.AddInt64(&accepted, 1)
				case resultDuplicate:
					atomic.AddInt64(&duplicate, 1)
				case resultRejected:
					atomic.AddInt64(&rejected, 1)
				case resultFailed:
					atomic.AddInt64(&failed, 1)
				}

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if cfg.Verbose && now-last >= int64(reportInterval) && lastReport.CompareAndSwap(last, now) {
					log.Info(ctx, "progress",
						logger.Int("submitted", int(total)),
						logger.Int("total", len(orders)),
						logger.Int("accepted", int(atomic.LoadInt64(&accepted))),
						logger.Int("failed", int(atomic.LoadInt64(&failed))))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range orders {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()

	stats.OrdersAccepted = int(accepted)
	stats.OrdersDuplicate = int(duplicate)
	stats.OrdersRejected = int(rejected)
	stats.OrdersFailed = int(failed)

	out := make([]model.Order, 0, accepted)
	for i, res := range results {
		if res == resultAccepted {
			out = append(out, orders[i])
		}
	}
	log.Info(ctx, "order submission completed",
		logger.Int("accepted", stats.OrdersAccepted),
		logger.Int("duplicate", stats.OrdersDuplicate),
		logger.Int("rejected", stats.OrdersRejected),
		logger.Int("failed", stats.OrdersFailed))
	return out
}

// submitOrder posts one order. 202 is a new order, 200 a duplicate of an
// earlier submission and 429 backpressure from the order queue.
func submitOrder(ctx context.Context, c *client, order model.Order) submitResult {
	status, body, err := c.postJSON(ctx, "/api/orders", order)
	if err != nil {
		return resultFailed
	}
	switch status {
	case http.StatusAccepted:
		return resultAccepted
	case http.StatusOK:
		var ack orderAck
		if err := unmarshalAck(body, &ack); err == nil && ack.Duplicate {
			return resultDuplicate
		}
		return resultFailed
	case http.StatusTooManyRequests:
		return resultRejected
	default:
		return resultFailed
	}
}
