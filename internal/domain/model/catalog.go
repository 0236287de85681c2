// Package model contains domain models passed between layers.
//
// JSON field names follow the wire format shared with the scoring service
// and the web client, which is why they are camelCase.
package model

// Dietary flags.
const (
	Veg    = "Veg"
	NonVeg = "Non-veg"
	// Both is only ever a preference, never a property of a food.
	Both = "Both"
)

// Spice levels.
const (
	SpiceLow    = "Low"
	SpiceMedium = "Medium"
	SpiceHigh   = "High"
)

// Food is immutable catalog reference data.
type Food struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Image        string  `json:"image,omitempty"`
	Cuisine      string  `json:"cuisine"`
	VegNonVeg    string  `json:"vegNonVeg"`
	SpiceLevel   string  `json:"spiceLevel"`
	Price        float64 `json:"price"`
	RestaurantID string  `json:"restaurantId"`
}

// Restaurant owns a menu of foods.
type Restaurant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// HostelBlock is a cohort of students; its name is the trending cohort key.
type HostelBlock struct {
	Name   string `json:"name"`
	Floors int    `json:"floors"`
}
