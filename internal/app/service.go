// Package service wires the stores, the order pipeline and the
// recommendation engine behind the operations the HTTP API exposes.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/canteen/internal/adapters/gateway"
	"github.com/okian/canteen/internal/adapters/mq/queue"
	"github.com/okian/canteen/internal/adapters/mq/worker"
	"github.com/okian/canteen/internal/adapters/repository"
	"github.com/okian/canteen/internal/config"
	"github.com/okian/canteen/internal/domain/dedupe"
	"github.com/okian/canteen/internal/domain/recommend"
	"github.com/okian/canteen/internal/domain/scoring"
	"github.com/okian/canteen/internal/domain/trending"
	"github.com/okian/canteen/internal/domain/types"
	"github.com/okian/canteen/pkg/logger"
	"github.com/okian/canteen/pkg/metrics"
)

// Service implements the API dependencies for the canteen backend.
type Service struct {
	mu  sync.RWMutex
	cfg *config.Config

	// Core components
	store        repository.Store
	deduper      dedupe.Deduper
	orderQueue   *queue.InMemoryQueue
	workerPool   *worker.Pool
	gateway      scoring.Gateway
	remote       *gateway.Gateway
	orchestrator *recommend.Orchestrator
	aggregator   *trending.Aggregator

	// State
	started   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a Service with configuration defaults; call Start before use.
func New(opts ...Option) *Service {
	s := &Service{cfg: config.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store, seeds the catalog and starts the order writers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting canteen service...")

	if s.store == nil {
		store, err := repository.Open(ctx, s.cfg.StoreDriver, s.cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
	}
	if s.cfg.SeedCatalog {
		if err := repository.Seed(ctx, s.store, repository.DefaultCatalog()); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.cfg.DedupeSize))
	s.orderQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.cfg.QueueSize))
	deduper := s.deduper
	s.workerPool = worker.NewPool(s.cfg.WorkerCount, s.orderQueue, s.store,
		// An order that never reached the store may be placed again under
		// the same id. ErrDuplicate means it is stored already.
		worker.WithOnFailed(func(id string, err error) {
			if !errors.Is(err, repository.ErrDuplicate) {
				deduper.Unrecord(context.Background(), id)
			}
		}),
	)
	// Workers outlive the start context; Stop drains them.
	s.workerPool.Start(context.WithoutCancel(ctx))

	if s.gateway == nil {
		s.gateway = s.newGateway()
	}

	s.orchestrator = recommend.New(s.store, s.store, s.store, s.gateway,
		recommend.WithRecentWindow(s.cfg.RecentOrderWindow),
		recommend.WithFallbackLimit(s.cfg.FallbackLimit),
		recommend.WithNotFound(func(err error) bool { return errors.Is(err, repository.ErrNotFound) }),
	)
	s.aggregator = trending.New(s.store, s.store, trending.WithLimit(s.cfg.TrendingLimit))

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "canteen service started",
		logger.String("store", s.cfg.StoreDriver),
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.cfg.QueueSize),
		logger.Bool("remoteScoring", s.remote != nil),
	)
	return nil
}

func (s *Service) newGateway() scoring.Gateway {
	if s.cfg.ScoringURL == "" {
		s.logger.Warn(context.Background(), "no scoring_url configured, using in-process scorer")
		return scoring.NewLocal()
	}
	s.remote = gateway.New(s.cfg.ScoringURL,
		gateway.WithTimeout(s.cfg.ScoringTimeout()),
		gateway.WithRateLimit(s.cfg.ScoringRatePerSec, s.cfg.ScoringBurst),
		gateway.WithBreaker(uint32(max(s.cfg.BreakerMinRequests, 0)), s.cfg.BreakerFailureRatio, s.cfg.BreakerOpenTimeout()), //nolint:gosec // clamped above
		gateway.WithLogger(s.logger.Named("gateway")),
	)
	return s.remote
}

// Stop drains pending orders and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping canteen service...")

	var errs []error
	if err := s.workerPool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	s.store = nil

	s.started = false
	s.logger.Info(ctx, "canteen service stopped")
	return errors.Join(errs...)
}

// running returns ErrNotStarted until Start succeeds.
func (s *Service) running() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Recommendations never fails once started; see recommend.Orchestrator.
func (s *Service) Recommendations(ctx context.Context, userID string) types.Result {
	if s.running() != nil {
		return types.NewResult(types.SourceGuest, nil)
	}
	return s.orchestrator.Recommend(ctx, userID)
}

// Trending ranks the most ordered foods of a hostel block.
func (s *Service) Trending(ctx context.Context, hostelBlock string) types.Result {
	if s.running() != nil {
		return types.NewResult(types.SourceTrending, nil)
	}
	return s.aggregator.Result(ctx, hostelBlock)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"storeDriver": s.cfg.StoreDriver,
		"workerCount": s.cfg.WorkerCount,
		"queueSize":   s.cfg.QueueSize,
		"dedupeSize":  s.cfg.DedupeSize,
		"scoring":     "local",
	}
	if s.remote != nil {
		stats["scoring"] = s.cfg.ScoringURL
		stats["breakerState"] = s.remote.State().String()
	}

	if s.started {
		queueLen := s.orderQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["ordersProcessed"] = s.workerPool.Processed()
		stats["dedupeEntries"] = s.deduper.Size()
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		if n, err := s.store.CountOrders(ctx); err == nil {
			stats["ordersStored"] = n
		}
		if n, err := s.store.CountUsers(ctx); err == nil {
			stats["users"] = n
		}

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		metrics.UpdateSystemMemoryUsage(mem.Alloc)
		metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
