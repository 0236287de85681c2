// Package gateway implements the scoring gateway over HTTP/JSON.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/internal/domain/scoring"
	"github.com/okian/canteen/pkg/logger"
	"github.com/okian/canteen/pkg/metrics"
)

// Gateway posts scoring requests to the external service. It makes a single
// attempt per call and holds no locks while the call is in flight.
type Gateway struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration

	ratePerSec float64
	burst      int
	limiter    *rate.Limiter

	breakerMinRequests uint32
	breakerRatio       float64
	breakerOpenTimeout time.Duration
	breaker            *gobreaker.CircuitBreaker[[]model.Recommendation]

	log logger.Logger
}

// New creates a gateway for the service at baseURL.
func New(baseURL string, opts ...Option) *Gateway {
	g := &Gateway{
		endpoint:           strings.TrimRight(baseURL, "/") + scoring.RecommendPath,
		timeout:            DefaultTimeout,
		breakerMinRequests: DefaultBreakerMinRequests,
		breakerRatio:       DefaultBreakerRatio,
		breakerOpenTimeout: DefaultBreakerOpenTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	client := http.Client{}
	if g.client != nil {
		client = *g.client
	}
	client.Timeout = g.timeout
	g.client = &client
	if g.log == nil {
		g.log = logger.Get().Named("gateway")
	}
	if g.ratePerSec > 0 {
		burst := g.burst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(g.ratePerSec), burst)
	}

	metrics.UpdateBreakerState(int(gobreaker.StateClosed))
	g.breaker = gobreaker.NewCircuitBreaker[[]model.Recommendation](gobreaker.Settings{
		Name:        "scoring",
		MaxRequests: defaultBreakerHalfOpen,
		Interval:    defaultBreakerInterval,
		Timeout:     g.breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < g.breakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= g.breakerRatio
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			g.log.Warn(context.Background(), "scoring breaker state change",
				logger.String("from", from.String()), logger.String("to", to.String()))
			metrics.UpdateBreakerState(int(to))
			metrics.RecordBreakerTransition(from.String(), to.String())
		},
	})
	return g
}

// State reports the circuit breaker state.
func (g *Gateway) State() gobreaker.State {
	return g.breaker.State()
}

// Score implements scoring.Gateway.
func (g *Gateway) Score(ctx context.Context, req scoring.Request) scoring.Outcome {
	start := time.Now()
	outcome := g.score(ctx, req)
	label := "success"
	if !outcome.OK() {
		label = scoring.Kind(outcome.Reason())
	}
	metrics.RecordScoringCall(label, float64(time.Since(start).Microseconds())/1000)
	return outcome
}

func (g *Gateway) score(ctx context.Context, req scoring.Request) scoring.Outcome {
	if g.limiter != nil && !g.limiter.Allow() {
		return scoring.Failure(scoring.ErrRateLimited)
	}

	recs, err := g.breaker.Execute(func() ([]model.Recommendation, error) {
		return g.call(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return scoring.Failure(fmt.Errorf("%w: %w", scoring.ErrCircuitOpen, err))
	}
	if err != nil {
		return scoring.Failure(err)
	}
	return scoring.Success(recs)
}

func (g *Gateway) call(ctx context.Context, req scoring.Request) ([]model.Recommendation, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scoring.ErrEncodeRequest, err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", scoring.ErrUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classify(ctx, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %d", scoring.ErrBadStatus, resp.StatusCode)
	}
	return scoring.DecodeResponse(data)
}

// classify folds transport errors into timeout or unavailable.
func classify(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", scoring.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", scoring.ErrUnavailable, err)
}
