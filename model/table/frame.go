package table

import "fmt"

// Frame is a typed column-named value table: the output of one simulation
// run, one row per reporting step. It replaces free-form per-column maps so
// that result entries have a stable shape.
type Frame struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// NewFrame wraps raw engine output plus a generated time column. Rows of
// values must each have len(stateNames) entries; times must have one entry
// per row.
func NewFrame(stateNames []string, values [][]float64, times []float64) (*Frame, error) {
	if len(values) != len(times) {
		return nil, fmt.Errorf("frame: %v value rows for %v time points", len(values), len(times))
	}
	columns := make([]string, 0, len(stateNames)+1)
	columns = append(columns, stateNames...)
	columns = append(columns, TimeColumn)
	rows := make([][]float64, len(values))
	for i, row := range values {
		if len(row) != len(stateNames) {
			return nil, fmt.Errorf("frame: row %v has %v values, expected %v", i, len(row), len(stateNames))
		}
		rows[i] = make([]float64, 0, len(row)+1)
		rows[i] = append(rows[i], row...)
		rows[i] = append(rows[i], times[i])
	}
	return &Frame{Columns: columns, Values: rows}, nil
}

// TimeColumn is the generated time column name.
const TimeColumn = "time"

// Rows returns the number of value rows.
func (f *Frame) Rows() int {
	return len(f.Values)
}

// Column returns the values of a named column and whether it exists.
func (f *Frame) Column(name string) ([]float64, bool) {
	for i, column := range f.Columns {
		if column != name {
			continue
		}
		out := make([]float64, len(f.Values))
		for r, row := range f.Values {
			out[r] = row[i]
		}
		return out, true
	}
	return nil, false
}

// FinalState returns the last row keyed by column name, excluding the time
// column. It is the seed state handed to a dependent condition.
func (f *Frame) FinalState() map[string]float64 {
	if len(f.Values) == 0 {
		return nil
	}
	last := f.Values[len(f.Values)-1]
	state := make(map[string]float64, len(f.Columns))
	for i, column := range f.Columns {
		if column == TimeColumn || i >= len(last) {
			continue
		}
		state[column] = last[i]
	}
	return state
}
