package inventory

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SerialWidth is the fixed number of digits in a rendered serial number.
const SerialWidth = 5

// maxSerialNumber is the largest number representable at SerialWidth digits.
// Numbers beyond it are a documented limit of the scheme, not silently truncated.
const maxSerialNumber = 99999

var prefixPattern = regexp.MustCompile(`^[A-Z0-9]{1,8}$`)

// ValidPrefix reports whether a serial prefix is acceptable.
func ValidPrefix(prefix string) bool {
	return prefixPattern.MatchString(prefix)
}

// FormatSerial renders a serial number as prefix plus a zero-padded integer.
// This is the single place serials are rendered so that order ranges and blade
// records always derive identically.
func FormatSerial(prefix string, number int) (string, error) {
	if !ValidPrefix(prefix) {
		return "", fmt.Errorf("%w: bad prefix %q", ErrSerialOutOfRange, prefix)
	}
	if number < 1 || number > maxSerialNumber {
		return "", fmt.Errorf("%w: %d", ErrSerialOutOfRange, number)
	}
	return fmt.Sprintf("%s%0*d", prefix, SerialWidth, number), nil
}

// ParseSerial recovers the integer portion of a serial rendered with FormatSerial.
func ParseSerial(prefix, serial string) (int, error) {
	if !strings.HasPrefix(serial, prefix) {
		return 0, fmt.Errorf("inventory: serial %q does not match prefix %q", serial, prefix)
	}
	digits := strings.TrimPrefix(serial, prefix)
	if len(digits) != SerialWidth {
		return 0, fmt.Errorf("inventory: serial %q has wrong width", serial)
	}
	number, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("inventory: serial %q not numeric: %v", serial, err)
	}
	if number < 1 {
		return 0, fmt.Errorf("%w: %d", ErrSerialOutOfRange, number)
	}
	return number, nil
}
