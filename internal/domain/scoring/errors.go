package scoring

import "errors"

// Sentinel kinds for scoring failures. Gateways wrap these so logs and
// metrics can tell them apart; the orchestrator does not.
var (
	ErrUnavailable   = errors.New("scoring service unavailable")
	ErrTimeout       = errors.New("scoring service timed out")
	ErrBadStatus     = errors.New("scoring service returned non-success status")
	ErrMalformed     = errors.New("scoring service returned malformed body")
	ErrCircuitOpen   = errors.New("scoring circuit open")
	ErrRateLimited   = errors.New("scoring call rate limited")
	ErrEmptyCatalog  = errors.New("no foods available")
	ErrEncodeRequest = errors.New("encode scoring request")
)

// Kind maps an error to a short label for metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrBadStatus):
		return "bad_status"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrEncodeRequest):
		return "encode"
	default:
		return "transport"
	}
}
