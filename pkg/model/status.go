package model

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned by the status transition methods when the
// current status does not allow the requested event.
var ErrInvalidTransition = errors.New("invalid status transition")

func invalidTransition(kind string, from fmt.Stringer, event string) error {
	return fmt.Errorf("%w: %s %s cannot %s", ErrInvalidTransition, kind, from, event)
}
