package loadgen

import (
	"time"

	"github.com/okian/canteen/internal/domain/model"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumUsers   int           // Number of students to register
	NumOrders  int           // Number of orders to place
	MaxItems   int           // Upper bound of line items per order
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	Settle     time.Duration // How long to wait for trending to converge
	Seed       int64         // Seed for the order generator
	OutputFile string        // Optional file for the generated orders
	Verbose    bool          // Enable verbose logging
}

// Student is a user registered by the generator.
type Student struct {
	ID         string           `json:"id,omitempty"`
	StudentID  string           `json:"studentId"`
	Name       string           `json:"name"`
	Hostel     string           `json:"hostel"`
	Floor      string           `json:"floor,omitempty"`
	RoomNumber string           `json:"roomNumber"`
	Cuisines   model.StringList `json:"cuisines,omitempty"`
	SpiceLevel string           `json:"spiceLevel,omitempty"`
	VegNonVeg  string           `json:"vegNonVeg,omitempty"`
}

// userAck is the body of a successful signup.
type userAck struct {
	Success bool    `json:"success"`
	User    Student `json:"user"`
}

// orderAck is the body of an accepted or duplicate order.
type orderAck struct {
	Success   bool        `json:"success"`
	Duplicate bool        `json:"duplicate"`
	Order     model.Order `json:"order"`
}

// Stats holds run statistics.
type Stats struct {
	UsersRegistered int
	OrdersGenerated int
	OrdersAccepted  int
	OrdersDuplicate int
	OrdersRejected  int
	OrdersFailed    int
	CohortsVerified int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
