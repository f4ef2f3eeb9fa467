package maintenance

import "time"

// RetirementRecord permanently documents one blade leaving service. At most
// one record exists per blade; it is never mutated or deleted.
type RetirementRecord struct {
	ID             string
	BladeID        string
	BladeTypeID    string
	Reason         string
	Notes          string
	RetiredBy      string
	RetirementDate time.Time
}
