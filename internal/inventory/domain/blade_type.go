package inventory

import "time"

// BladeType is a category of interchangeable blades sharing a serial prefix
// and a lifecycle-hours rating. Immutable once blades reference it.
type BladeType struct {
	ID             string
	Code           string
	MachineName    string
	LifecycleHours int
	SerialPrefix   string
	CreatedAt      time.Time
}
