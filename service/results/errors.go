package results

import "errors"

// Common, reusable result-store errors. Sentinel variables allow callers to
// detect conditions via errors.Is instead of brittle string comparisons.

var (
	// ErrNotFound is returned when no cached payload exists for a key.
	ErrNotFound = errors.New("results: not found")

	// ErrNoEntry is returned when a parcel does not match any pre-allocated
	// index entry. Entries are allocated for every expected job up front, so
	// this indicates a scheduling bug rather than bad input.
	ErrNoEntry = errors.New("results: no matching index entry")

	// ErrInvalidKey indicates an empty or otherwise unusable entry key.
	ErrInvalidKey = errors.New("results: invalid key")
)
