// Package reservation tracks pickup-slot holds that expire at a fixed time.
//
// A Hold stores one absolute expiry. Remaining time is derived from it on
// every render, so missed or late ticks never skew the countdown. Timer
// drives redraws and is disposed of with Stop.
package reservation

import (
	"errors"
	"fmt"
	"time"
)

// DefaultHoldDuration is how long a pickup slot stays reserved.
const DefaultHoldDuration = 10 * time.Minute

// Hold errors.
var (
	ErrMissingSlot = errors.New("slot id is required")
	ErrNoExpiry    = errors.New("hold expiry is required")
)

// Hold is a reservation on a slot until ExpiresAt.
type Hold struct {
	SlotID    string
	ExpiresAt time.Time
}

// NewHold creates a hold ending at expiresAt.
func NewHold(slotID string, expiresAt time.Time) (Hold, error) {
	if slotID == "" {
		return Hold{}, ErrMissingSlot
	}
	if expiresAt.IsZero() {
		return Hold{}, ErrNoExpiry
	}
	return Hold{SlotID: slotID, ExpiresAt: expiresAt}, nil
}

// HoldFor creates a hold that lasts d from now.
func HoldFor(slotID string, now time.Time, d time.Duration) (Hold, error) {
	return NewHold(slotID, now.Add(d))
}

// Remaining returns the time left at now, never negative.
func (h Hold) Remaining(now time.Time) time.Duration {
	if d := h.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Expired reports whether the hold has lapsed at now.
func (h Hold) Expired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

// Format renders the remaining time as m:ss, rounding up so the display
// reads 0:00 only once the hold has expired.
func (h Hold) Format(now time.Time) string {
	left := h.Remaining(now)
	secs := int((left + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
