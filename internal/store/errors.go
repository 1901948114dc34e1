package store

import "errors"

// Sentinel errors returned (wrapped) by store operations.
// Match with errors.Is.
var (
	// ErrUnknownTable indicates a table with no catalog entry.
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownField indicates a field that the table does not define.
	ErrUnknownField = errors.New("unknown field")

	// ErrUnknownDomain indicates a domain that was never created.
	ErrUnknownDomain = errors.New("unknown domain")

	// ErrDuplicate indicates a table, field, domain, code or relationship
	// that already exists.
	ErrDuplicate = errors.New("already exists")

	// ErrNotNullable indicates a null written to a non-nullable field.
	ErrNotNullable = errors.New("field is not nullable")

	// ErrDomainViolation indicates a value outside its field's domain.
	ErrDomainViolation = errors.New("value violates domain")

	// ErrValueTooLong indicates text longer than the declared field length.
	ErrValueTooLong = errors.New("value exceeds field length")
)
