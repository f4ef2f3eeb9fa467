package inventory

import "errors"

var (
	// ErrBladeTypeNotFound is returned when a blade type does not exist.
	ErrBladeTypeNotFound = errors.New("inventory: blade type not found")
	// ErrBladeTypeExists is returned when a blade type code is already taken.
	ErrBladeTypeExists = errors.New("inventory: blade type already exists")
	// ErrCounterNotFound is returned when no serial counter was initialized for a type.
	ErrCounterNotFound = errors.New("inventory: serial counter not found")
	// ErrCounterExists is returned when initializing a counter that already exists.
	ErrCounterExists = errors.New("inventory: serial counter already exists")
	// ErrBladeNotFound is returned when a blade record does not exist.
	ErrBladeNotFound = errors.New("inventory: blade not found")
	// ErrInvalidQuantity is returned when a reservation quantity is outside [1, MaxReserveQuantity].
	ErrInvalidQuantity = errors.New("inventory: invalid quantity")
	// ErrConflict is returned on a transient write race; the whole reservation may be retried.
	ErrConflict = errors.New("inventory: write conflict")
	// ErrAllocationCorruption is returned when the counter advanced but the reserved
	// range could not be materialized or released. Serials in the gap are consumed
	// forever; operator reconciliation is required.
	ErrAllocationCorruption = errors.New("inventory: allocation corruption")
	// ErrSerialOutOfRange is returned when a serial number cannot be rendered at the fixed width.
	ErrSerialOutOfRange = errors.New("inventory: serial number out of range")
	// ErrDuplicateSerial is returned when a blade insert hits the unique serial constraint.
	ErrDuplicateSerial = errors.New("inventory: duplicate serial number")
	// ErrInvalidStatus is returned on a disallowed blade status transition.
	ErrInvalidStatus = errors.New("inventory: invalid status transition")
)
