// Package apperr defines the error kinds shared across the tracker core.
// Callers classify failures with errors.Is / errors.As instead of matching
// strings.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable marks an upstream fetch that failed and may be retried
	// on the next scheduled tick. Never fatal to the process.
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrNotFound marks a missing instrument, outcome or alert id. Surfaced
	// to the caller, not retried.
	ErrNotFound = errors.New("not found")
)

// MalformedDataError marks upstream data that arrived but is missing an
// expected field. The affected item is skipped; siblings keep processing.
type MalformedDataError struct {
	Field  string
	Reason string
}

func (e *MalformedDataError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("malformed data: missing %s", e.Field)
	}
	return fmt.Sprintf("malformed data: %s: %s", e.Field, e.Reason)
}

func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
