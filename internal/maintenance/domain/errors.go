package maintenance

import "errors"

var (
	// ErrAlreadyRetired is returned when a retirement record already exists for
	// the blade. Re-retirement is rejected, not silently ignored.
	ErrAlreadyRetired = errors.New("maintenance: blade already retired")
	// ErrEmptyReason is returned when no retirement reason was given.
	ErrEmptyReason = errors.New("maintenance: empty reason")
	// ErrRecordNotFound is returned when no retirement record exists.
	ErrRecordNotFound = errors.New("maintenance: retirement record not found")
)
