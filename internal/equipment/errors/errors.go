package errors

import "errors"

var (
	ErrBicycleNotFound = errors.New("bicycle not found")

	ErrLockNotFound = errors.New("lock not found")

	ErrTotemNotFound = errors.New("totem not found")

	ErrDuplicateNumber = errors.New("equipment number already in use")
)
