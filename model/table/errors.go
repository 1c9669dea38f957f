package table

import "errors"

// Sentinel errors so callers can classify configuration problems with
// errors.Is instead of string matching.

var (
	// ErrConditionNotFound indicates a condition ID referenced by the
	// measurement table is absent from the conditions table.
	ErrConditionNotFound = errors.New("table: condition not found")

	// ErrNoSimulationTime indicates a condition with no measurement rows, so
	// no stop time can be derived for it.
	ErrNoSimulationTime = errors.New("table: no simulation time defined")
)
