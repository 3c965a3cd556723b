// Package patient defines the patient summary records shown in patient lists.
package patient

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Validation errors.
var (
	ErrMissingID   = errors.New("patient id is required")
	ErrMissingName = errors.New("patient name is required")
	ErrMissingMRN  = errors.New("patient mrn is required")
	ErrNegativeRx  = errors.New("active prescriptions cannot be negative")
	ErrFutureBirth = errors.New("birth date is in the future")
)

// titleCaser capitalizes names for display.
//
//nolint:gochecknoglobals // Caser is reused across renders.
var titleCaser = cases.Title(language.English)

// Summary is one row of a patient list.
type Summary struct {
	ID                  string     `json:"id"`
	MRN                 string     `json:"mrn"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	BirthDate           time.Time  `json:"birth_date"`
	Pharmacy            string     `json:"pharmacy,omitempty"`
	ActivePrescriptions int        `json:"active_prescriptions"`
	NextPickup          *time.Time `json:"next_pickup,omitempty"`
	Alerts              []string   `json:"alerts,omitempty"`
}

// Validate checks the fields every list row relies on.
func (s Summary) Validate() error {
	var errs []error
	if strings.TrimSpace(s.ID) == "" {
		errs = append(errs, ErrMissingID)
	}
	if strings.TrimSpace(s.MRN) == "" {
		errs = append(errs, ErrMissingMRN)
	}
	if strings.TrimSpace(s.FirstName) == "" && strings.TrimSpace(s.LastName) == "" {
		errs = append(errs, ErrMissingName)
	}
	if s.ActivePrescriptions < 0 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrNegativeRx, s.ActivePrescriptions))
	}
	if !s.BirthDate.IsZero() && s.BirthDate.After(time.Now()) {
		errs = append(errs, ErrFutureBirth)
	}
	return errors.Join(errs...)
}

// DisplayName returns "Last, First" in title case.
func (s Summary) DisplayName() string {
	first := titleCaser.String(strings.TrimSpace(s.FirstName))
	last := titleCaser.String(strings.TrimSpace(s.LastName))
	switch {
	case last == "":
		return first
	case first == "":
		return last
	default:
		return last + ", " + first
	}
}

// Age returns the age in whole years at now, or -1 when the birth date is unknown.
func (s Summary) Age(now time.Time) int {
	if s.BirthDate.IsZero() {
		return -1
	}
	years := now.Year() - s.BirthDate.Year()
	if now.YearDay() < s.BirthDate.YearDay() {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// HasAlerts reports whether the patient carries any clinical alert.
func (s Summary) HasAlerts() bool {
	return len(s.Alerts) > 0
}
