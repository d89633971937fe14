package errors

import "errors"

var (
	// ErrNotFound is returned when a booking is not found by ID
	ErrNotFound = errors.New("booking not found")

	// ErrInvalidID is returned when an ID format is invalid
	ErrInvalidID = errors.New("invalid booking ID format")
)
