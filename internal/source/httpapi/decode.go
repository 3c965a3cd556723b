package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rshade/carelist/internal/paging"
	"github.com/rshade/carelist/internal/patient"
)

// ErrMalformed is wrapped by every ParseError.
var ErrMalformed = errors.New("malformed response")

// ParseError describes a response body that does not match the page shape.
type ParseError struct {
	// Field is the JSON path of the offending value, empty for the whole body.
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", ErrMalformed, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrMalformed, e.Field, e.Err)
}

// Unwrap lets errors.Is match both ErrMalformed and the cause.
func (e *ParseError) Unwrap() []error {
	return []error{ErrMalformed, e.Err}
}

var (
	errMissing  = errors.New("field is required")
	errNegative = errors.New("must not be negative")
)

// envelope mirrors the wire shape. Pointers tell missing fields from zero values.
type envelope struct {
	Data    *[]json.RawMessage `json:"data"`
	Total   *int               `json:"total"`
	HasMore *bool              `json:"has_more"`
}

// DecodePage parses and validates a page body.
func DecodePage(body []byte) (paging.Page[patient.Summary], error) {
	var empty paging.Page[patient.Summary]

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return empty, &ParseError{Err: err}
	}
	switch {
	case env.Data == nil:
		return empty, &ParseError{Field: "data", Err: errMissing}
	case env.HasMore == nil:
		return empty, &ParseError{Field: "has_more", Err: errMissing}
	case env.Total != nil && *env.Total < 0:
		return empty, &ParseError{Field: "total", Err: errNegative}
	}

	items := make([]patient.Summary, 0, len(*env.Data))
	for i, raw := range *env.Data {
		field := fmt.Sprintf("data[%d]", i)
		var p patient.Summary
		if err := json.Unmarshal(raw, &p); err != nil {
			return empty, &ParseError{Field: field, Err: err}
		}
		if err := p.Validate(); err != nil {
			return empty, &ParseError{Field: field, Err: err}
		}
		items = append(items, p)
	}

	total := -1
	if env.Total != nil {
		total = *env.Total
	}
	return paging.Page[patient.Summary]{
		Items:   items,
		Total:   total,
		HasMore: *env.HasMore,
	}, nil
}
