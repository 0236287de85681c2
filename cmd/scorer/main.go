package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/canteen/internal/adapters/http/scorer"
	"github.com/okian/canteen/internal/domain/scoring"
	"github.com/okian/canteen/pkg/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	var (
		addr       = flag.String("addr", ":5000", "Listen address")
		minLatency = flag.Duration("min-latency", 100*time.Millisecond, "Lower bound of the simulated scoring latency")
		maxLatency = flag.Duration("max-latency", 500*time.Millisecond, "Upper bound of the simulated scoring latency")
		logFormat  = flag.String("log-format", "text", "Log format: text or json")
		logLevel   = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*logFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString(*logLevel)
	log := logger.Named("scorer")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	model := scoring.NewLocal(scoring.WithLatencyRange(*minLatency, *maxLatency))
	scorer.NewHandler(model).Register(ctx, mux)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting reference scoring service",
			logger.String("addr", *addr),
			logger.Duration("minLatency", *minLatency),
			logger.Duration("maxLatency", *maxLatency))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "scoring service failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "scoring service shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "scoring service stopped")
}
