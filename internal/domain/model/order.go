package model

import (
	"time"

	"github.com/goccy/go-json"
)

// OrderStatusConfirmed is the only status this service assigns.
const OrderStatusConfirmed = "Confirmed"

// LineItem references a food by id, by display name, or both.
type LineItem struct {
	FoodID   string `json:"foodId,omitempty"`
	Name     string `json:"name,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// UnmarshalJSON also accepts "id" for the food reference; some clients send
// cart entries as {id, name, quantity}.
func (li *LineItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		FoodID   string `json:"foodId"`
		ID       string `json:"id"`
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	li.FoodID = raw.FoodID
	if li.FoodID == "" {
		li.FoodID = raw.ID
	}
	li.Name = raw.Name
	li.Quantity = raw.Quantity
	return nil
}

// Units returns the quantity this line contributes. An item present in an
// order always counts at least once.
func (li LineItem) Units() int {
	if li.Quantity < 1 {
		return 1
	}
	return li.Quantity
}

// Order is an append-only order record. HostelBlock is the cohort key.
type Order struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	RestaurantID string     `json:"restaurantId,omitempty"`
	HostelBlock  string     `json:"hostelBlock"`
	Floor        string     `json:"floor,omitempty"`
	RoomNumber   string     `json:"roomNumber,omitempty"`
	TimeSlot     string     `json:"timeSlot,omitempty"`
	Items        []LineItem `json:"items"`
	Status       string     `json:"status"`
	Timestamp    time.Time  `json:"timestamp"`
}
