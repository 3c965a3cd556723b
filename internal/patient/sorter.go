package patient

import (
	"sort"
	"strings"
)

// Sort orders.
const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// Sort fields.
const (
	SortByName          = "name"
	SortByMRN           = "mrn"
	SortByBirthDate     = "birthDate"
	SortByPrescriptions = "prescriptions"
	SortByNextPickup    = "nextPickup"
)

// Sorter orders patient summaries by a named field.
type Sorter struct {
	validFields map[string]bool
}

// NewSorter creates a Sorter with the supported sort fields.
func NewSorter() *Sorter {
	return &Sorter{
		validFields: map[string]bool{
			SortByName:          true,
			SortByMRN:           true,
			SortByBirthDate:     true,
			SortByPrescriptions: true,
			SortByNextPickup:    true,
		},
	}
}

// IsValidField checks if the field is valid for sorting.
func (s *Sorter) IsValidField(field string) bool {
	return s.validFields[field]
}

// GetValidFields returns all valid sort fields.
func (s *Sorter) GetValidFields() []string {
	fields := make([]string, 0, len(s.validFields))
	for field := range s.validFields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Sort returns a sorted copy of patients. An invalid field returns the input unchanged.
func (s *Sorter) Sort(patients []Summary, field, order string) []Summary {
	if !s.IsValidField(field) {
		return patients
	}

	sorted := make([]Summary, len(patients))
	copy(sorted, patients)

	sort.SliceStable(sorted, func(i, j int) bool {
		if order == SortOrderDesc {
			i, j = j, i
		}
		a, b := sorted[i], sorted[j]

		switch field {
		case SortByName:
			return strings.ToLower(a.DisplayName()) < strings.ToLower(b.DisplayName())
		case SortByMRN:
			return a.MRN < b.MRN
		case SortByBirthDate:
			return a.BirthDate.Before(b.BirthDate)
		case SortByPrescriptions:
			return a.ActivePrescriptions < b.ActivePrescriptions
		case SortByNextPickup:
			return pickupBefore(a, b)
		default:
			return false
		}
	})

	return sorted
}

// pickupBefore orders scheduled pickups first, earliest first.
func pickupBefore(a, b Summary) bool {
	switch {
	case a.NextPickup == nil:
		return false
	case b.NextPickup == nil:
		return true
	default:
		return a.NextPickup.Before(*b.NextPickup)
	}
}
