package errors

import "errors"

var (
	// ErrNotFound is returned when an experience is not found by ID
	ErrNotFound = errors.New("experience not found")

	// ErrInvalidID is returned when an ID format is invalid
	ErrInvalidID = errors.New("invalid experience ID format")

	// ErrSlotConflict is returned when a guarded slot update matched no
	// document, meaning a concurrent writer changed the slot first
	ErrSlotConflict = errors.New("slot modified concurrently")
)
