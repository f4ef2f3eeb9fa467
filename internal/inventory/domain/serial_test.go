package inventory

import (
	"errors"
	"testing"
	"time"
)

func TestFormatSerial_ZeroPadded(t *testing.T) {
	serial, err := FormatSerial("B4", 1)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if serial != "B400001" {
		t.Fatalf("expected B400001, got %s", serial)
	}

	serial, err = FormatSerial("B4", 99999)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if serial != "B499999" {
		t.Fatalf("expected B499999, got %s", serial)
	}
}

func TestFormatSerial_OutOfRange(t *testing.T) {
	if _, err := FormatSerial("B4", 0); !errors.Is(err, ErrSerialOutOfRange) {
		t.Fatalf("expected ErrSerialOutOfRange for 0, got %v", err)
	}
	if _, err := FormatSerial("B4", 100000); !errors.Is(err, ErrSerialOutOfRange) {
		t.Fatalf("expected ErrSerialOutOfRange for 100000, got %v", err)
	}
}

func TestFormatSerial_BadPrefix(t *testing.T) {
	for _, prefix := range []string{"", "b4", "TOOLONGPFX", "B-4"} {
		if _, err := FormatSerial(prefix, 1); !errors.Is(err, ErrSerialOutOfRange) {
			t.Fatalf("expected error for prefix %q, got %v", prefix, err)
		}
	}
}

func TestParseSerial_RoundTrip(t *testing.T) {
	for _, number := range []int{1, 42, 400, 99999} {
		serial, err := FormatSerial("SLIT", number)
		if err != nil {
			t.Fatalf("format %d: %v", number, err)
		}
		parsed, err := ParseSerial("SLIT", serial)
		if err != nil {
			t.Fatalf("parse %s: %v", serial, err)
		}
		if parsed != number {
			t.Fatalf("round trip %d -> %s -> %d", number, serial, parsed)
		}
	}
}

func TestParseSerial_Rejects(t *testing.T) {
	if _, err := ParseSerial("B4", "XX00001"); err == nil {
		t.Fatal("expected error for wrong prefix")
	}
	if _, err := ParseSerial("B4", "B4001"); err == nil {
		t.Fatal("expected error for wrong width")
	}
	if _, err := ParseSerial("B4", "B4000AB"); err == nil {
		t.Fatal("expected error for non numeric digits")
	}
}

func TestNextSerial_Preview(t *testing.T) {
	counter, err := NewSerialCounter("type-1", "B4", time.Now())
	if err != nil {
		t.Fatalf("new counter: %v", err)
	}
	next, err := counter.NextSerial()
	if err != nil {
		t.Fatalf("next serial: %v", err)
	}
	if next != "B400001" {
		t.Fatalf("expected B400001, got %s", next)
	}

	counter.CurrentCounter = maxSerialNumber
	if _, err := counter.NextSerial(); !errors.Is(err, ErrSerialOutOfRange) {
		t.Fatalf("expected exhaustion error, got %v", err)
	}
}

func TestReservationQuantity(t *testing.T) {
	res := Reservation{Start: 11, End: 15}
	if res.Quantity() != 5 {
		t.Fatalf("expected quantity 5, got %d", res.Quantity())
	}
}
