package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/canteen/internal/loadgen"
)

// Default configuration constants.
const (
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8080", "Base URL of the service")
		numUsers   = flag.Int("users", loadgen.DefaultUsers, "Number of students to register")
		numOrders  = flag.Int("orders", loadgen.DefaultOrders, "Number of orders to place")
		maxItems   = flag.Int("items", loadgen.DefaultMaxItems, "Maximum line items per order")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", loadgen.DefaultTimeout, "HTTP request timeout")
		settle     = flag.Duration("settle", loadgen.DefaultSettle, "How long to wait for trending to converge")
		seed       = flag.Int64("seed", 0, "Generator seed (0 picks one from the clock)")
		outputFile = flag.String("output", "", "Write the generated orders to this JSON file")
		logFile    = flag.String("log", "", "Also append log output to this file")
		logFormat  = flag.String("log-format", "text", "Log format: text or json")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	closer, err := loadgen.SetupLogging(*logFile, *logFormat)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	if _, err := loadgen.Run(ctx, &loadgen.Config{
		BaseURL:    *baseURL,
		NumUsers:   *numUsers,
		NumOrders:  *numOrders,
		MaxItems:   *maxItems,
		Workers:    *workers,
		Timeout:    *timeout,
		Settle:     *settle,
		Seed:       *seed,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}); err != nil {
		os.Stderr.WriteString("Load run failed: " + err.Error() + "\n")
		cancel()
		stop()
		_ = closer.Close()
		os.Exit(1)
	}
}
