package procurement

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound is returned when a purchase order does not exist.
	ErrOrderNotFound = errors.New("procurement: order not found")
	// ErrInvalidTransition is returned on a disallowed order status move.
	ErrInvalidTransition = errors.New("procurement: invalid status transition")
)

// ValidationError rejects bad order input naming the offending field. It is
// never retried and surfaced to the caller verbatim.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("procurement: invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
