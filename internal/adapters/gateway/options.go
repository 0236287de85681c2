package gateway

import (
	"net/http"
	"time"

	"github.com/okian/canteen/pkg/logger"
)

// Defaults for the scoring gateway.
const (
	DefaultTimeout            = 3 * time.Second
	DefaultBreakerMinRequests = 10
	DefaultBreakerRatio       = 0.6
	DefaultBreakerOpenTimeout = 30 * time.Second
	defaultBreakerHalfOpen    = 3
	defaultBreakerInterval    = time.Minute
	maxResponseBytes          = 1 << 20
)

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout bounds a single scoring call, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client. The gateway uses a copy whose
// Timeout is the gateway timeout; c itself is left untouched.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		if c != nil {
			g.client = c
		}
	}
}

// WithRateLimit sheds calls above perSecond (burst allowed). Rejected calls
// fail immediately instead of waiting. perSecond <= 0 disables the limiter.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(g *Gateway) {
		g.ratePerSec = perSecond
		g.burst = burst
	}
}

// WithBreaker configures the circuit breaker: it opens once at least
// minRequests calls were made in the current interval and the failure ratio
// reaches ratio, and lets a trial call through after openTimeout.
func WithBreaker(minRequests uint32, ratio float64, openTimeout time.Duration) Option {
	return func(g *Gateway) {
		if minRequests > 0 {
			g.breakerMinRequests = minRequests
		}
		if ratio > 0 && ratio <= 1 {
			g.breakerRatio = ratio
		}
		if openTimeout > 0 {
			g.breakerOpenTimeout = openTimeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}
