/*
errors.go - Centralized error types for the CRM core

PURPOSE:
  All sentinel and structured errors in one place. The calculation engine
  itself never errors on well-formed input (missing fee / missing rule are
  zero results, surfaced as warnings); errors here cover input validation
  and persistence concerns.

ERROR CATEGORIES:
  1. Date errors - malformed date strings reaching settlement scheduling
  2. Not-found errors - store lookups
  3. State errors - invalid batch transitions, duplicate IDs

USAGE:
  Callers match with errors.Is:

    if errors.Is(err, crm.ErrInvalidDate) { ... }

SEE ALSO:
  - date.go: ParseDate, which returns ok=false rather than erroring
  - api/handlers.go: Maps these to HTTP status codes
*/
package crm

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a raw date string cannot be parsed.
	// A bad settlement date is a correctness bug and must fail fast.
	ErrInvalidDate = errors.New("invalid date")

	// ErrCaseNotFound is returned when a referenced case does not exist.
	ErrCaseNotFound = errors.New("case not found")

	// ErrPartnerNotFound is returned when a referenced partner does not exist.
	ErrPartnerNotFound = errors.New("partner not found")

	// ErrBatchNotFound is returned when a referenced settlement batch does not exist.
	ErrBatchNotFound = errors.New("settlement batch not found")

	// ErrDuplicateID is returned when saving a new record under an existing ID.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrBatchNotDraft is returned when confirming or re-building a batch
	// that has already moved past draft.
	ErrBatchNotDraft = errors.New("settlement batch is not a draft")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidDateError reports the raw input that failed to parse.
type InvalidDateError struct {
	Input string
	Field string
}

func (e *InvalidDateError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid date for %s: %q", e.Field, e.Input)
	}
	return fmt.Sprintf("invalid date: %q", e.Input)
}

func (e *InvalidDateError) Unwrap() error {
	return ErrInvalidDate
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCaseNotFound) ||
		errors.Is(err, ErrPartnerNotFound) ||
		errors.Is(err, ErrBatchNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrDuplicateID) ||
		errors.Is(err, ErrBatchNotDraft)
}
