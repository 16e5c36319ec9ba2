package isohash

import "github.com/pkg/errors"

var (
	// ErrMalformedInput is returned when the formula violates its structural invariants,
	// e.g a literal referencing variable 0 or a clause containing a variable twice.
	ErrMalformedInput = errors.New("malformed input")
	// ErrConfiguration is returned by New when the configuration is inconsistent.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrResourceExhausted is returned when the formula does not fit in the refinement arena.
	ErrResourceExhausted = errors.New("resource exhausted")
)
