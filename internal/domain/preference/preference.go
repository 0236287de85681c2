// Package preference derives a normalized preference profile from a raw user
// record.
package preference

import (
	"strings"

	"github.com/okian/canteen/internal/domain/model"
)

// Defaults applied when a user record leaves a field out.
const (
	DefaultSpiceLevel = model.SpiceMedium
	DefaultVegNonVeg  = model.Both
)

// Profile is built fresh for every request and never cached.
// Cuisines and FavouriteFoods are never nil.
type Profile struct {
	Cuisines       []string `json:"cuisines"`
	SpiceLevel     string   `json:"spiceLevel"`
	VegNonVeg      string   `json:"vegNonVeg"`
	FavouriteFoods []string `json:"favouriteFoods"`
}

// Extract never fails: an absent field is a normal case.
func Extract(u model.User) Profile {
	p := Profile{
		Cuisines:       dedupe(u.Cuisines),
		SpiceLevel:     strings.TrimSpace(u.SpiceLevel),
		VegNonVeg:      strings.TrimSpace(u.VegNonVeg),
		FavouriteFoods: dedupe(u.FavouriteFoods),
	}
	if p.SpiceLevel == "" {
		p.SpiceLevel = DefaultSpiceLevel
	}
	if p.VegNonVeg == "" {
		p.VegNonVeg = DefaultVegNonVeg
	}
	return p
}

// PrefersCuisine reports whether cuisine is in the preferred set.
func (p Profile) PrefersCuisine(cuisine string) bool {
	for _, c := range p.Cuisines {
		if c == cuisine {
			return true
		}
	}
	return false
}

// dedupe keeps first occurrences in input order.
func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
