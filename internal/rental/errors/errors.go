package errors

import "errors"

var (
	ErrRentalNotFound = errors.New("rental not found")

	ErrChargeNotFound = errors.New("charge not found")

	ErrCyclistNotFound = errors.New("cyclist not found")

	// ErrActiveRentalExists is returned when an insert collides with the
	// unique in-progress rental index for the cyclist or bicycle.
	ErrActiveRentalExists = errors.New("an in-progress rental already exists")

	ErrRentalNotActive = errors.New("rental is not in progress")

	ErrCheckoutInProgress = errors.New("checkout already running for cyclist")
)
