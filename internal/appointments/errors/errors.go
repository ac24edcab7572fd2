package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	// ErrStatusChanged means another request moved the appointment between
	// our read and our write.
	ErrStatusChanged = errors.New("appointment status changed concurrently")
)
