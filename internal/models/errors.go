package models

import "errors"

// Error kinds shared by every layer. Wrap them with context and test with
// errors.Is.
var (
	// ErrNotFound means no row exists for the requested id.
	ErrNotFound = errors.New("not found")
	// ErrConstraint is a unique or foreign-key violation reported by the engine.
	ErrConstraint = errors.New("constraint violation")
	// ErrCorrupt means persisted state is not what the schema promises: malformed
	// JSON, an unknown discriminant or an unparsable date.
	ErrCorrupt = errors.New("corrupt data")
	// ErrValidation means caller-supplied data failed an application check.
	ErrValidation = errors.New("validation failed")
	// ErrIO wraps filesystem failures.
	ErrIO = errors.New("io failure")
	// ErrExternal wraps network, SMTP or renderer failures.
	ErrExternal = errors.New("external failure")
)
