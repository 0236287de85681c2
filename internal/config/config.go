// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults, Load to layer a YAML
//   file and CANTEEN_* environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver picks the backing store: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`
	SQLitePath  string `koanf:"sqlite_path"`

	// SeedCatalog loads the built-in campus catalog on start.
	SeedCatalog bool `koanf:"seed_catalog"`

	// QueueSize bounds the in-memory order queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of order writers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many client order ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// ScoringURL is the base URL of the external scoring service. Empty means
	// the in-process scorer is used.
	ScoringURL         string  `koanf:"scoring_url"`
	ScoringTimeoutMS   int     `koanf:"scoring_timeout_ms"`
	ScoringRatePerSec  float64 `koanf:"scoring_rate_per_sec"`
	ScoringBurst       int     `koanf:"scoring_burst"`
	BreakerMinRequests int     `koanf:"breaker_min_requests"`

	BreakerFailureRatio  float64 `koanf:"breaker_failure_ratio"`
	BreakerOpenTimeoutMS int     `koanf:"breaker_open_timeout_ms"`

	// RecentOrderWindow is how many of a user's latest orders are sent to
	// the scorer.
	RecentOrderWindow int `koanf:"recent_order_window"`

	FallbackLimit int `koanf:"fallback_limit"`
	TrendingLimit int `koanf:"trending_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":8080",
		StoreDriver:          StoreMemory,
		SQLitePath:           "canteen.db",
		SeedCatalog:          true,
		QueueSize:            10_000,
		WorkerCount:          runtime.NumCPU() * 2,
		DedupeSize:           50_000,
		ScoringTimeoutMS:     3000,
		ScoringRatePerSec:    50,
		ScoringBurst:         100,
		BreakerMinRequests:   10,
		BreakerFailureRatio:  0.6,
		BreakerOpenTimeoutMS: 30_000,
		RecentOrderWindow:    5,
		FallbackLimit:        3,
		TrendingLimit:        5,
	}
}

// ScoringTimeout returns the scoring call budget.
func (c *Config) ScoringTimeout() time.Duration {
	return time.Duration(c.ScoringTimeoutMS) * time.Millisecond
}

// BreakerOpenTimeout returns how long the breaker stays open.
func (c *Config) BreakerOpenTimeout() time.Duration {
	return time.Duration(c.BreakerOpenTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StoreDriver != StoreMemory && c.StoreDriver != StoreSQLite:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	case c.StoreDriver == StoreSQLite && c.SQLitePath == "":
		return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.ScoringTimeoutMS < 1:
		return fmt.Errorf("%w: scoring_timeout_ms must be positive", ErrInvalidConfig)
	case c.ScoringRatePerSec < 0:
		return fmt.Errorf("%w: scoring_rate_per_sec must not be negative", ErrInvalidConfig)
	case c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1:
		return fmt.Errorf("%w: breaker_failure_ratio must be in (0,1]", ErrInvalidConfig)
	case c.RecentOrderWindow < 1:
		return fmt.Errorf("%w: recent_order_window must be positive", ErrInvalidConfig)
	case c.FallbackLimit < 1 || c.TrendingLimit < 1:
		return fmt.Errorf("%w: result limits must be positive", ErrInvalidConfig)
	}
	return nil
}
