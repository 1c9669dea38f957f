package table

import (
	"fmt"
)

// Condition is one named row of the conditions table: a set of variable
// overrides applied to the model before a simulation run.
type Condition struct {
	ID        string             `json:"conditionId" yaml:"conditionId"`
	Name      string             `json:"conditionName,omitempty" yaml:"conditionName,omitempty"`
	Overrides map[string]float64 `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// Conditions holds condition rows in table order.
type Conditions []*Condition

// Lookup returns the condition with the given id or ErrConditionNotFound.
func (c Conditions) Lookup(conditionID string) (*Condition, error) {
	for _, candidate := range c {
		if candidate.ID == conditionID {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrConditionNotFound, conditionID)
}

// Measurement is one row of the measurement table.
type Measurement struct {
	SimulationConditionID       string  `json:"simulationConditionId"`
	PreequilibrationConditionID string  `json:"preequilibrationConditionId,omitempty"`
	DatasetID                   string  `json:"datasetId,omitempty"`
	Time                        float64 `json:"time"`
}

// Measurements holds measurement rows in table order.
type Measurements struct {
	Rows []*Measurement

	// HasPreequilibration reports whether the source table carried a
	// preequilibrationConditionId column at all; an empty value in a present
	// column still means "no preequilibration" for that row.
	HasPreequilibration bool

	// HasDataset reports whether the source table carried a datasetId column.
	HasDataset bool
}

// DistinctConditions returns simulation condition IDs in first-seen order.
func (m *Measurements) DistinctConditions() []string {
	var ordered []string
	seen := map[string]bool{}
	for _, row := range m.Rows {
		if row.SimulationConditionID == "" || seen[row.SimulationConditionID] {
			continue
		}
		seen[row.SimulationConditionID] = true
		ordered = append(ordered, row.SimulationConditionID)
	}
	return ordered
}

// Preconditions returns distinct preequilibration condition IDs in first-seen
// order.
func (m *Measurements) Preconditions() []string {
	var ordered []string
	seen := map[string]bool{}
	for _, row := range m.Rows {
		if row.PreequilibrationConditionID == "" || seen[row.PreequilibrationConditionID] {
			continue
		}
		seen[row.PreequilibrationConditionID] = true
		ordered = append(ordered, row.PreequilibrationConditionID)
	}
	return ordered
}

// PreconditionFor returns the preequilibration condition declared by the first
// measurement row of the given condition, or "" when none is declared.
func (m *Measurements) PreconditionFor(conditionID string) string {
	for _, row := range m.Rows {
		if row.SimulationConditionID == conditionID {
			return row.PreequilibrationConditionID
		}
	}
	return ""
}

// DatasetFor returns the dataset identifier of the first measurement row of
// the given condition, or "" when the table has no datasetId column.
func (m *Measurements) DatasetFor(conditionID string) string {
	if !m.HasDataset {
		return ""
	}
	for _, row := range m.Rows {
		if row.SimulationConditionID == conditionID {
			return row.DatasetID
		}
	}
	return ""
}

// StopTime returns the maximum measurement time for the given condition. A
// condition without any measurement row has no defined simulation time and
// cannot be run.
func (m *Measurements) StopTime(conditionID string) (float64, error) {
	var stop float64
	found := false
	for _, row := range m.Rows {
		if row.SimulationConditionID != conditionID {
			continue
		}
		if !found || row.Time > stop {
			stop = row.Time
		}
		found = true
	}
	if !found {
		return 0, fmt.Errorf("%w for condition %q", ErrNoSimulationTime, conditionID)
	}
	return stop, nil
}
