package paging

import (
	"errors"
	"fmt"
	"strings"
)

// Paging defaults and validation limits.
const (
	DefaultPageSize  = 50
	MinPageSize      = 1
	MaxPageSize      = 1000
	DefaultSortField = ""
	DefaultSortOrder = "asc"
	SortOrderAsc     = "asc"
	SortOrderDesc    = "desc"
)

// Common validation errors.
var (
	ErrInvalidPageSize   = errors.New("page-size must be between 1 and 1000")
	ErrInvalidMaxItems   = errors.New("max-items cannot be negative")
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc' or 'desc'")
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'name:desc')")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
	ErrInvalidSortField  = errors.New("invalid sort field")
)

// Params controls how a Pager walks its source.
type Params struct {
	// PageSize is the number of records requested per fetch.
	PageSize int

	// MaxItems caps the total number of records loaded. Zero means no cap.
	MaxItems int

	// Sort is the field name to sort by. Empty keeps the source order.
	Sort string

	// Order is the sort direction: "asc" or "desc".
	Order string
}

// NewParams creates Params with default values.
func NewParams() Params {
	return Params{
		PageSize: DefaultPageSize,
		Sort:     DefaultSortField,
		Order:    DefaultSortOrder,
	}
}

// Validate checks that the parameters are in range.
func (p Params) Validate() error {
	if p.PageSize < MinPageSize || p.PageSize > MaxPageSize {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, p.PageSize)
	}
	if p.MaxItems < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxItems, p.MaxItems)
	}
	if p.Order != "" && p.Order != SortOrderAsc && p.Order != SortOrderDesc {
		return fmt.Errorf("%w: got %q", ErrInvalidSortOrder, p.Order)
	}
	return nil
}

// ValidateSortField checks Sort against the fields a source supports.
// An empty sort field is always valid.
func (p Params) ValidateSortField(valid func(string) bool) error {
	if p.Sort == "" || valid == nil || valid(p.Sort) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidSortField, p.Sort)
}

// WithSort returns a copy of p sorted by the parsed sort string.
func (p Params) WithSort(sortStr string) (Params, error) {
	field, order, err := ParseSort(sortStr)
	if err != nil {
		return p, err
	}
	p.Sort = field
	p.Order = order
	return p, nil
}

// sortPartsMax is the maximum number of parts in a sort string (field:order).
const sortPartsMax = 2

// ParseSort parses a sort string in the format "field" or "field:order".
// Examples: "name", "nextPickup:desc", "mrn:asc"
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(sortStr string) (field, order string, err error) {
	if sortStr == "" {
		return DefaultSortField, DefaultSortOrder, nil
	}

	parts := strings.Split(sortStr, ":")
	switch len(parts) {
	case 1:
		field = strings.TrimSpace(parts[0])
		order = DefaultSortOrder
	case sortPartsMax:
		field = strings.TrimSpace(parts[0])
		order = strings.ToLower(strings.TrimSpace(parts[1]))
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, sortStr)
	}

	if field == "" {
		return "", "", ErrEmptySortField
	}

	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}

	return field, order, nil
}
