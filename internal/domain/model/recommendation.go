package model

// Recommendation is one suggested food with a human readable reason.
type Recommendation struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// TrendingEntry is an aggregated demand count for one food in a cohort.
type TrendingEntry struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Reason string `json:"reason"`
}

// Recommendation drops the count for the uniform response shape.
func (e TrendingEntry) Recommendation() Recommendation {
	return Recommendation{Name: e.Name, Reason: e.Reason}
}
