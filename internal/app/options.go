package service

import (
	"github.com/okian/canteen/internal/adapters/repository"
	"github.com/okian/canteen/internal/config"
	"github.com/okian/canteen/internal/domain/scoring"
	"github.com/okian/canteen/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig copies every tunable from cfg.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			c := *cfg
			s.cfg = &c
		}
	}
}

// WithWorkerCount sets the number of order writers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.cfg.WorkerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending orders.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.cfg.QueueSize = size
		}
	}
}

// WithDedupeSize sets how many client order ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.cfg.DedupeSize = size
	}
}

// WithStore injects an already opened store; Start then skips opening one.
// The service still closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithGateway injects the scoring gateway, overriding scoring_url.
func WithGateway(gw scoring.Gateway) Option {
	return func(s *Service) {
		s.gateway = gw
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
