// Package types contains common types used across the application
package types

import "github.com/okian/canteen/internal/domain/model"

// Source tells callers which path produced a Result.
type Source string

// Result sources.
const (
	SourceScored   Source = "scored"
	SourceFallback Source = "fallback"
	SourceGuest    Source = "guest"
	SourceTrending Source = "trending"
)

// Result is the uniform response shape for both recommendation and trending
// reads, so callers can treat them identically.
type Result struct {
	Recommendations []model.Recommendation `json:"recommendations"`
	Source          Source                 `json:"source,omitempty"`
}

// NewResult never returns a nil list so it always encodes as [].
func NewResult(src Source, recs []model.Recommendation) Result {
	if recs == nil {
		recs = []model.Recommendation{}
	}
	return Result{Recommendations: recs, Source: src}
}

// Len returns the number of recommendations.
func (r Result) Len() int { return len(r.Recommendations) }

// FoodDetail is a food together with the restaurant that serves it.
type FoodDetail struct {
	model.Food
	Restaurant *model.Restaurant `json:"restaurant,omitempty"`
}

// RestaurantDetail is a restaurant together with its menu in catalog order.
type RestaurantDetail struct {
	model.Restaurant
	Menu []model.Food `json:"menu"`
}

// OrderAck is returned when an order is accepted for storage.
type OrderAck struct {
	Success   bool        `json:"success"`
	Duplicate bool        `json:"duplicate"`
	Order     model.Order `json:"order"`
}

// UserAck is returned on signup.
type UserAck struct {
	Success bool       `json:"success"`
	User    model.User `json:"user"`
}
