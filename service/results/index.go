// Package results holds the pre-allocated result index, the durable on-disk
// result cache backing it, and the final artifact writer.
package results

import (
	"fmt"

	"github.com/cellrun/cellrun/internal/idgen"
	"github.com/cellrun/cellrun/model/table"
)

// Parcel is one job's packaged output, sent from a worker back to the
// coordinator or stored directly by the coordinator itself.
type Parcel struct {
	ConditionID string       `json:"conditionId"`
	Cell        int          `json:"cell"`
	Frame       *table.Frame `json:"results"`
}

// Entry is one pre-allocated result slot. Identity fields are fixed at
// allocation; Frame is populated in place exactly once when the job
// completes. Entries are never deleted individually.
type Entry struct {
	Key         string       `json:"-"`
	ConditionID string       `json:"conditionId"`
	Cell        int          `json:"cell"`
	Frame       *table.Frame `json:"results,omitempty"`
}

// Index is the coordinator-owned result store. A slot exists for every
// expected job before any simulation runs, so the full index shape is known
// up front. Only the coordinator mutates frames; workers read identity via
// KeyOf and never write.
type Index struct {
	entries []*Entry
	byKey   map[string]*Entry
}

// NewIndex allocates one entry per condition row and cell index. The entry
// key derives from the condition's datasetId when the measurement table has
// one (suffixed with the cell index when replicates would otherwise collide)
// and a generated unique identifier otherwise.
func NewIndex(conditions table.Conditions, measurements *table.Measurements, cellCount int) *Index {
	if cellCount < 1 {
		cellCount = 1
	}
	index := &Index{byKey: make(map[string]*Entry, len(conditions)*cellCount)}
	for _, condition := range conditions {
		dataset := measurements.DatasetFor(condition.ID)
		for cell := 1; cell <= cellCount; cell++ {
			key := dataset
			if key == "" {
				key = idgen.New()
			} else if cellCount > 1 {
				key = fmt.Sprintf("%s+%d", dataset, cell)
			}
			entry := &Entry{Key: key, ConditionID: condition.ID, Cell: cell}
			index.entries = append(index.entries, entry)
			index.byKey[key] = entry
		}
	}
	return index
}

// Entries returns all entries in allocation order.
func (x *Index) Entries() []*Entry {
	return x.entries
}

// Len returns the number of allocated entries.
func (x *Index) Len() int {
	return len(x.entries)
}

// Lookup returns the entry matching a condition and cell, or nil.
func (x *Index) Lookup(conditionID string, cell int) *Entry {
	for _, entry := range x.entries {
		if entry.ConditionID == conditionID && entry.Cell == cell {
			return entry
		}
	}
	return nil
}

// KeyOf returns the pre-allocated key for a condition and cell.
func (x *Index) KeyOf(conditionID string, cell int) (string, bool) {
	entry := x.Lookup(conditionID, cell)
	if entry == nil {
		return "", false
	}
	return entry.Key, true
}

// Merge copies a parcel's value columns into the matching entry.
func (x *Index) Merge(parcel *Parcel) error {
	entry := x.Lookup(parcel.ConditionID, parcel.Cell)
	if entry == nil {
		return fmt.Errorf("%w for condition %q cell %v", ErrNoEntry, parcel.ConditionID, parcel.Cell)
	}
	entry.Frame = parcel.Frame
	return nil
}

// Complete reports whether every entry has been populated.
func (x *Index) Complete() bool {
	for _, entry := range x.entries {
		if entry.Frame == nil {
			return false
		}
	}
	return true
}
