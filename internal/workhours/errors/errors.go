package errors

import "errors"

var (
	ErrNotFound = errors.New("record not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrDuplicate = errors.New("working interval already exists for this date")
)
