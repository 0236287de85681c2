// Package worker drains the order queue into the order store.
package worker

import (
	"github.com/okian/canteen/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithOnStored registers a callback run after each order is appended.
func WithOnStored(fn func(id string)) Option {
	return func(w *InMemoryWorker) {
		w.onStored = fn
	}
}

// WithOnFailed registers a callback run when the store rejects an order.
func WithOnFailed(fn func(id string, err error)) Option {
	return func(w *InMemoryWorker) {
		w.onFailed = fn
	}
}
