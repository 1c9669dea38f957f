// Package dryrun provides a deterministic stand-in engine. It lets a whole
// experiment be scheduled, distributed and collected without a compiled
// model: every state simply holds the value it was seeded with. Useful for
// validating condition tables and dependency chains before a long run.
package dryrun

import (
	"fmt"
	"math"

	"github.com/cellrun/cellrun/engine"
)

// Name is the registry name of this backend.
const Name = "dryrun"

func init() {
	engine.Register(Name, NewFactory("state_a", "state_b"))
}

// Engine is one dry-run instance.
type Engine struct {
	states []string
	values map[string]float64
	closed bool
}

// New creates a dry-run engine reporting the given state names.
func New(stateNames ...string) *Engine {
	values := make(map[string]float64, len(stateNames))
	for _, name := range stateNames {
		values[name] = 0
	}
	return &Engine{states: stateNames, values: values}
}

// NewFactory returns a factory producing independent instances.
func NewFactory(stateNames ...string) engine.Factory {
	return engine.FactoryFunc(func() (engine.Engine, error) {
		return New(stateNames...), nil
	})
}

// StateNames lists the reported states in column order.
func (e *Engine) StateNames() []string {
	return e.states
}

// SetVariable stores a value; unknown names are accepted so that condition
// tables carrying model parameters beyond reported states still dry-run.
func (e *Engine) SetVariable(name string, value float64) error {
	if e.closed {
		return fmt.Errorf("dryrun: engine already closed")
	}
	e.values[name] = value
	return nil
}

// Run holds every state constant from start to stop, one row per reporting
// step.
func (e *Engine) Run(start, stop, step float64) ([][]float64, error) {
	if e.closed {
		return nil, fmt.Errorf("dryrun: engine already closed")
	}
	if step <= 0 {
		return nil, fmt.Errorf("dryrun: reporting step must be > 0")
	}
	steps := int(math.Ceil((stop - start) / step))
	if steps < 1 {
		steps = 1
	}
	rows := make([][]float64, steps)
	for i := range rows {
		row := make([]float64, len(e.states))
		for c, name := range e.states {
			row[c] = e.values[name]
		}
		rows[i] = row
	}
	return rows, nil
}

// Close releases the instance.
func (e *Engine) Close() error {
	e.closed = true
	return nil
}
