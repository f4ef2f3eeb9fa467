package inventory

import "time"

// BladeStatus is the lifecycle state of a physical blade.
type BladeStatus string

const (
	StatusNew        BladeStatus = "new"
	StatusActive     BladeStatus = "active"
	StatusSharpening BladeStatus = "sharpening"
	StatusRetired    BladeStatus = "retired"
)

// NormalizeStatus validates a status string.
func NormalizeStatus(value string) (BladeStatus, bool) {
	switch BladeStatus(value) {
	case StatusNew, StatusActive, StatusSharpening, StatusRetired:
		return BladeStatus(value), true
	default:
		return "", false
	}
}

// Blade is one physical unit, identified by a serial number unique within its type.
type Blade struct {
	ID             string
	BladeTypeID    string
	SerialNumber   string
	Status         BladeStatus
	DefaultMachine string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CanTransition reports whether a lifecycle move is allowed. Retired is
// terminal and may only be entered through the retirement service.
func CanTransition(from, to BladeStatus) bool {
	if from == StatusRetired {
		return false
	}
	switch to {
	case StatusNew:
		return false
	case StatusActive, StatusSharpening:
		return from != to
	case StatusRetired:
		return true
	default:
		return false
	}
}
