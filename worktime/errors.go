/*
errors.go - Error types for the work-time engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers branch on them with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Degradation - ErrMalformedTime. Never surfaced to users: the record is
     counted as zero minutes and reported in Totals.Ignored.
  2. Not found   - a referenced id no longer exists (edit/delete race).
  3. Client      - malformed dates or periods at the request boundary.
  4. Store       - anything else; wrapped with context and propagated.

SEE ALSO:
  - accounting.go: Produces ErrMalformedTime
  - store.go: Store contracts that return the not-found errors
  - api/validate.go: Field-level validation errors at the HTTP boundary
*/
package worktime

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMalformedTime is returned when a start or end value does not parse
	// as HH:MM. Aggregations treat the record as zero minutes.
	ErrMalformedTime = errors.New("malformed time of day")

	// ErrInvalidDate is returned when a date string is not a real YYYY-MM-DD day.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrShiftNotFound is returned when updating or deleting a shift id that
	// does not exist.
	ErrShiftNotFound = errors.New("shift not found")

	// ErrVacationRangeNotFound is returned when deleting a vacation range id
	// that does not exist.
	ErrVacationRangeNotFound = errors.New("vacation range not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names the missing record.
type NotFoundError struct {
	Kind string // "shift", "vacation range"
	ID   int64
	err  error
}

func NewShiftNotFound(id int64) *NotFoundError {
	return &NotFoundError{Kind: "shift", ID: id, err: ErrShiftNotFound}
}

func NewVacationRangeNotFound(id int64) *NotFoundError {
	return &NotFoundError{Kind: "vacation range", ID: id, err: ErrVacationRangeNotFound}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return e.err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrShiftNotFound) ||
		errors.Is(err, ErrVacationRangeNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidPeriod)
}
