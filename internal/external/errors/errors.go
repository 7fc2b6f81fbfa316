package errors

import "errors"

var (
	ErrChargeNotFound = errors.New("charge not found")

	ErrEmailNotFound = errors.New("email not found")

	// ErrStatusChanged is returned when a conditional status update finds
	// the charge already moved on.
	ErrStatusChanged = errors.New("charge status changed concurrently")
)
