package loadgen

import "errors"

var (
	// ErrUnhealthy is returned when the service health check fails.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrEmptyCatalog is returned when the service has no foods or hostels to order from.
	ErrEmptyCatalog = errors.New("empty catalog")
	// ErrUnexpectedStatus is returned for a response status the run cannot use.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrTrendingMismatch is returned when a hostel's trending list never matches the expectation.
	ErrTrendingMismatch = errors.New("trending mismatch")
)
