// Package scoring defines the contract of the external scoring service and
// the explicit success/failure outcome returned by gateways.
package scoring

import (
	"context"

	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/internal/domain/preference"
)

const (
	// DefaultRecentWindow bounds how many of a user's orders are sent.
	DefaultRecentWindow = 5
	// RecommendPath is the scoring service endpoint.
	RecommendPath = "/recommend"
)

// Request is the scoring service request body.
type Request struct {
	UserPreferences preference.Profile `json:"user_preferences"`
	RecentOrders    []model.Order      `json:"recent_orders"`
	AvailableFoods  []model.Food       `json:"available_foods"`
}

// Response is the success body of the scoring service.
type Response struct {
	Recommendations []model.Recommendation `json:"recommendations"`
}

// Gateway calls the scoring service. Implementations never return an error:
// every failure mode is folded into a Failure outcome.
type Gateway interface {
	Score(ctx context.Context, req Request) Outcome
}

// Outcome is either Success(list) or Failure(reason).
type Outcome struct {
	recs   []model.Recommendation
	reason error
}

// Success wraps a validated recommendation list.
func Success(recs []model.Recommendation) Outcome {
	if recs == nil {
		recs = []model.Recommendation{}
	}
	return Outcome{recs: recs}
}

// Failure wraps the reason the call did not succeed.
func Failure(reason error) Outcome {
	if reason == nil {
		reason = ErrUnavailable
	}
	return Outcome{reason: reason}
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool { return o.reason == nil }

// Recommendations returns the list and true on success.
func (o Outcome) Recommendations() ([]model.Recommendation, bool) {
	if o.reason != nil {
		return nil, false
	}
	return o.recs, true
}

// Reason returns nil on success.
func (o Outcome) Reason() error { return o.reason }
