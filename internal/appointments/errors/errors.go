package errors

import "errors"

var (
	ErrNotFound = errors.New("record not found")

	ErrInvalidID = errors.New("invalid ID format")

	// ErrDuplicate is returned when another active appointment already holds the slot.
	ErrDuplicate = errors.New("slot already booked")

	ErrLockHeld = errors.New("booking lock is held by another request")
)
