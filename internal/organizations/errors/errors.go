package errors

import "errors"

var (
	ErrNotFound = errors.New("organization resource not found")

	ErrInvalidID = errors.New("invalid organization resource ID format")
)
