// Package loadgen drives a running canteen service with registered students
// and concurrent orders, then checks every hostel's trending list against a
// ranking computed from the orders it accepted.
package loadgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// withDefaults fills zero fields of cfg.
func withDefaults(cfg *Config) *Config {
	c := *cfg
	if c.NumUsers <= 0 {
		c.NumUsers = DefaultUsers
	}
	if c.NumOrders < 0 {
		c.NumOrders = 0
	}
	if c.MaxItems <= 0 {
		c.MaxItems = DefaultMaxItems
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Settle <= 0 {
		c.Settle = DefaultSettle
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	return &c
}

// Run executes a complete load run and returns its statistics. The trending
// check assumes the service had no orders before the run.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	cfg := withDefaults(config)
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("loadgen")

	log.Info(ctx, "starting canteen load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("users", cfg.NumUsers),
		logger.Int("orders", cfg.NumOrders),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Any("seed", cfg.Seed))

	c := newClient(cfg)

	// Step 1: Check service health
	if err := c.getJSON(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}

	// Step 2: Read the menu and the hostel blocks
	cat, err := fetchCatalog(ctx, c)
	if err != nil {
		return stats, err
	}
	gen := newGenerator(cfg.Seed, cat)

	// Step 3: Register students
	students, err := registerStudents(ctx, c, gen.students(cfg.NumUsers), stats)
	if err != nil {
		return stats, fmt.Errorf("student registration failed: %w", err)
	}

	// Step 4: Place orders concurrently
	orders := gen.orders(cfg.NumOrders, cfg.MaxItems, students)
	stats.OrdersGenerated = len(orders)
	accepted := submitOrders(ctx, cfg, c, orders, stats)

	if err := saveOrdersToFile(ctx, cfg.OutputFile, orders); err != nil {
		log.Warn(ctx, "failed to save orders to file", logger.Error(err))
	}

	// Step 5: Verify trending once the order writers catch up
	if err := verifyTrending(ctx, cfg, c, expectTrending(cat, accepted), stats); err != nil {
		return stats, fmt.Errorf("trending verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	log.Info(ctx, "load run completed successfully")
	return stats, nil
}

// saveOrdersToFile writes the generated orders as a JSON array. An empty
// filename disables the dump.
func saveOrdersToFile(ctx context.Context, filename string, orders []model.Order) error {
	if filename == "" || len(orders) == 0 {
		return nil
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal orders: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Named("loadgen").Info(ctx, "orders saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, ordersPerSecond float64

	if stats.OrdersGenerated > 0 {
		acceptRate = float64(stats.OrdersAccepted) / float64(stats.OrdersGenerated) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		ordersPerSecond = float64(stats.OrdersGenerated) / stats.Duration.Seconds()
	}

	logger.Named("loadgen").Info(ctx, "final statistics",
		logger.Int("usersRegistered", stats.UsersRegistered),
		logger.Int("ordersGenerated", stats.OrdersGenerated),
		logger.Int("ordersAccepted", stats.OrdersAccepted),
		logger.Int("ordersDuplicate", stats.OrdersDuplicate),
		logger.Int("ordersRejected", stats.OrdersRejected),
		logger.Int("ordersFailed", stats.OrdersFailed),
		logger.Int("cohortsVerified", stats.CohortsVerified),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("ordersPerSecond", ordersPerSecond))
}
