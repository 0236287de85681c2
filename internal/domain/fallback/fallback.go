// Package fallback produces recommendation lists without the external
// scoring service. Everything here is a pure function of its inputs.
package fallback

import (
	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/internal/domain/preference"
)

// DefaultLimit caps both fallback paths.
const DefaultLimit = 3

// Reasons attached to fallback entries.
const (
	ReasonGuest      = "Popular items for everyone"
	ReasonPreference = "Based on your preferences (Fallback)"
)

// Guest returns the first limit foods in catalog order. It does not rank by
// popularity.
func Guest(foods []model.Food, limit int) []model.Recommendation {
	return take(foods, limit, ReasonGuest, func(model.Food) bool { return true })
}

// ByPreference keeps foods matching a preferred cuisine OR the profile's
// dietary flag; one matching attribute is enough. A "Both" dietary flag never
// equals a food's flag, so such users match on cuisine only.
func ByPreference(p preference.Profile, foods []model.Food, limit int) []model.Recommendation {
	return take(foods, limit, ReasonPreference, func(f model.Food) bool {
		return p.PrefersCuisine(f.Cuisine) || f.VegNonVeg == p.VegNonVeg
	})
}

// take walks foods in order, skipping repeated names so a result never lists
// the same food twice.
func take(foods []model.Food, limit int, reason string, keep func(model.Food) bool) []model.Recommendation {
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := make([]model.Recommendation, 0, limit)
	seen := make(map[string]struct{}, limit)
	for _, f := range foods {
		if len(out) == limit {
			break
		}
		if !keep(f) {
			continue
		}
		if _, dup := seen[f.Name]; dup {
			continue
		}
		seen[f.Name] = struct{}{}
		out = append(out, model.Recommendation{Name: f.Name, Reason: reason})
	}
	return out
}
