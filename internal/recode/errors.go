package recode

import (
	"errors"
	"fmt"
)

// ErrTIPIDTooLong indicates a project identifier longer than 8 characters,
// which has no 10-character normalized form.
var ErrTIPIDTooLong = errors.New("TIPID longer than 8 characters")

// ErrTIPIDNotASCII indicates a project identifier with non-ASCII
// characters, which cannot be split into fixed-width groups.
var ErrTIPIDNotASCII = errors.New("TIPID contains non-ASCII characters")

// ErrNotNumeric indicates a numeric legacy attribute holding a value that
// does not parse as a number.
var ErrNotNumeric = errors.New("value is not numeric")

// errNoTruckRestriction is returned by FuseMode for a truck-restricted
// mode with no restriction code.
var errNoTruckRestriction = errors.New("truck-restricted mode without a truck restriction code")

// LookupError reports a side-lookup key that must exist but does not.
// Unlike replacement node-pair misses, these abort the run.
type LookupError struct {
	// Lookup names the side table that was consulted.
	Lookup string

	// Key is the missing key.
	Key string

	// Message adds detail, if any.
	Message string
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("LOOKUP_MISS: %s: key %q: %s", e.Lookup, e.Key, e.Message)
	}
	return fmt.Sprintf("LOOKUP_MISS: %s: key %q not found", e.Lookup, e.Key)
}

// IsLookupError returns true if err is or wraps a LookupError.
// Uses errors.As to handle wrapped errors.
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}
