package service

import "errors"

// Sentinel error kinds returned by the service. Store errors such as
// repository.ErrNotFound and repository.ErrDuplicate pass through wrapped.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrInvalidOrder = errors.New("invalid order")
	ErrInvalidUser  = errors.New("invalid user")
	ErrBackpressure = errors.New("order queue full")
)
