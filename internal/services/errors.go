package services

import "errors"

// Data service errors
var (
	ErrSeriesNotFound  = errors.New("series not found")
	ErrNoObservations  = errors.New("series contains no observations")
	ErrNoSeriesMatched = errors.New("no series matched")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
