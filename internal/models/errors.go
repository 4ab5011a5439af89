package models

import "errors"

var (
	// ErrInvalidDate indicates a date field that isn't YYYY-MM-DD
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

	// ErrDateRange indicates an end date before the start date
	ErrDateRange = errors.New("end date is before start date")
)

// ValidateDates checks the optional scheduling window.
// Empty dates are allowed; a set date must parse.
func ValidateDates(start, end string) error {
	s, okStart := ParseDate(start)
	if start != "" && !okStart {
		return ErrInvalidDate
	}
	e, okEnd := ParseDate(end)
	if end != "" && !okEnd {
		return ErrInvalidDate
	}
	if okStart && okEnd && e.Before(s) {
		return ErrDateRange
	}
	return nil
}
