package loadgen

import "time"

// Defaults applied to zero Config fields.
const (
	DefaultUsers    = 50
	DefaultOrders   = 1000
	DefaultMaxItems = 3
	DefaultTimeout  = 10 * time.Second
	DefaultSettle   = 30 * time.Second
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
	maxQuantity             = 3
)

// Runner configuration constants.
const (
	pollInterval         = 250 * time.Millisecond
	PercentageMultiplier = 100
)
