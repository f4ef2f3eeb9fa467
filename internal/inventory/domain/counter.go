package inventory

import "time"

// MaxReserveQuantity caps a single reservation. The cap is a policy constant
// carried over from the original ordering rules; review before raising it.
const MaxReserveQuantity = 1000

// SerialCounter tracks the last serial number issued for one blade type,
// together with aggregate totals. CurrentCounter is monotonically
// non-decreasing for the lifetime of the counter.
type SerialCounter struct {
	BladeTypeID    string
	SerialPrefix   string
	CurrentCounter int
	TotalAllocated int
	TotalActive    int
	TotalRetired   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewSerialCounter initializes a counter at zero for a blade type.
func NewSerialCounter(bladeTypeID, prefix string, now time.Time) (*SerialCounter, error) {
	if bladeTypeID == "" {
		return nil, ErrBladeTypeNotFound
	}
	if !ValidPrefix(prefix) {
		return nil, ErrSerialOutOfRange
	}
	return &SerialCounter{
		BladeTypeID:  bladeTypeID,
		SerialPrefix: prefix,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}, nil
}

// NextSerial renders the next serial that would be issued. It is a preview,
// not a reservation; a concurrent Reserve can invalidate it immediately.
func (c *SerialCounter) NextSerial() (string, error) {
	return FormatSerial(c.SerialPrefix, c.CurrentCounter+1)
}

// Reservation is a contiguous serial range handed out by a Reserve call.
type Reservation struct {
	BladeTypeID  string
	SerialPrefix string
	Start        int
	End          int
}

// Quantity returns the number of serials in the reservation.
func (r Reservation) Quantity() int {
	return r.End - r.Start + 1
}
