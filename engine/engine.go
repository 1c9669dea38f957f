// Package engine defines the narrow contract this module has with the
// external simulation engine. The engine is opaque and assumed
// single-threaded: each worker owns at most one instance at a time, built
// fresh for every job and closed afterwards so no model state leaks between
// jobs.
package engine

// Engine is one simulation-engine instance holding mutable model state.
type Engine interface {
	// StateNames lists the named states reported by Run, in column order.
	StateNames() []string

	// SetVariable overrides a named model variable or state value.
	SetVariable(name string, value float64) error

	// Run simulates from start to stop at the given reporting step and
	// returns one row per step, each row holding a value per state name.
	Run(start, stop, step float64) ([][]float64, error)

	// Close releases the instance. The instance must not be reused.
	Close() error
}

// Factory builds engine instances from previously compiled model definition
// files. One instance is constructed per job.
type Factory interface {
	New() (Engine, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func() (Engine, error)

func (f FactoryFunc) New() (Engine, error) { return f() }
