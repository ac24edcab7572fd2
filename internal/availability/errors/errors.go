package errors

import "errors"

var (
	ErrInvalidID = errors.New("invalid organization or delivery type ID format")

	ErrSlotUnavailable = errors.New("requested slot is not available")
)
