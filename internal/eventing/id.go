package eventing

import "github.com/google/uuid"

// NewEventID returns a random event identifier.
func NewEventID() string {
	return uuid.NewString()
}
