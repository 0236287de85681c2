package loadgen

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/canteen/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging initializes the global logger. With a non-empty logFile the
// output is also appended to that file. The returned closer releases it.
func SetupLogging(logFile, format string) (io.Closer, error) {
	var out io.Writer = os.Stdout
	var closer io.Closer = io.NopCloser(nil)

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	if err := logger.Init(logger.WithFormat(format), logger.WithWriter(out)); err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return closer, nil
}

// ShowHelp prints usage information for the load generator.
func ShowHelp() {
	os.Stdout.WriteString(`Canteen Load Generator
======================

Registers students, places random orders concurrently and checks that every
hostel's trending list matches the orders the service accepted. Run it
against a service with an empty order history.

Usage:
  go run ./cmd/loadgen [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -users int
        Number of students to register (default 50)
  -orders int
        Number of orders to place (default 1000)
  -items int
        Maximum line items per order (default 3)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -settle duration
        How long to wait for trending to converge (default 30s)
  -seed int
        Generator seed (default: current time)
  -output string
        Write the generated orders to this JSON file
  -log string
        Also append log output to this file
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Default run against a local service
  go run ./cmd/loadgen

  # Heavier run with a fixed seed
  go run ./cmd/loadgen -orders 20000 -workers 32 -seed 7
`)
}
