package coordinator

import (
	"context"
	"path"
	"testing"

	"github.com/cellrun/cellrun/engine"
	"github.com/cellrun/cellrun/model/table"
	"github.com/cellrun/cellrun/service/results"
	"github.com/cellrun/cellrun/service/scheduler"
	"github.com/cellrun/cellrun/service/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stateEngine reports the current value of its two states on every row, so a
// seeded preequilibration state is visible in the output frame.
type stateEngine struct {
	states map[string]float64
}

func newStateEngine() *stateEngine {
	return &stateEngine{states: map[string]float64{"s1": 0, "s2": 0}}
}

func (e *stateEngine) StateNames() []string { return []string{"s1", "s2"} }

func (e *stateEngine) SetVariable(name string, value float64) error {
	e.states[name] = value
	return nil
}

func (e *stateEngine) Run(start, stop, step float64) ([][]float64, error) {
	rows := int((stop-start)/step) + 1
	values := make([][]float64, rows)
	for i := range values {
		values[i] = []float64{e.states["s1"], e.states["s2"]}
	}
	return values, nil
}

func (e *stateEngine) Close() error { return nil }

type runFixture struct {
	schedule *scheduler.Schedule
	index    *results.Index
	service  *Service
}

// newRunFixture builds the two-condition scenario: A seeds B, two cells,
// three workers. Condition A overrides s1, and B carries no overrides, so a
// correct run propagates A's final state into B's frames via the cache.
func newRunFixture(t *testing.T) *runFixture {
	t.Helper()
	conditions := table.Conditions{
		{ID: "A", Overrides: map[string]float64{"s1": 5}},
		{ID: "B"},
	}
	measurements := &table.Measurements{
		HasPreequilibration: true,
		HasDataset:          true,
		Rows: []*table.Measurement{
			{SimulationConditionID: "A", DatasetID: "ds_a", Time: 60},
			{SimulationConditionID: "B", DatasetID: "ds_b", PreequilibrationConditionID: "A", Time: 60},
		},
	}

	schedule := scheduler.New([]string{"A", "B"}, measurements, scheduler.Config{Workers: 3, CellCount: 2})
	index := results.NewIndex(conditions, measurements, 2)
	cache, err := results.NewCache(path.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	executor, err := worker.New(
		worker.WithEngineFactory(engine.FactoryFunc(func() (engine.Engine, error) {
			return newStateEngine(), nil
		})),
		worker.WithConditions(conditions),
		worker.WithMeasurements(measurements),
		worker.WithIndex(index),
		worker.WithCache(cache),
	)
	require.NoError(t, err)

	service, err := New(
		WithSchedule(schedule),
		WithWorker(executor),
		WithIndex(index),
	)
	require.NoError(t, err)
	return &runFixture{schedule: schedule, index: index, service: service}
}

func verifyRun(t *testing.T, f *runFixture) {
	t.Helper()
	require.True(t, f.index.Complete())
	assert.Equal(t, 4, f.index.Len())
	for cell := 1; cell <= 2; cell++ {
		for _, conditionID := range []string{"A", "B"} {
			entry := f.index.Lookup(conditionID, cell)
			require.NotNil(t, entry)
			require.NotNil(t, entry.Frame, "%s cell %d", conditionID, cell)
			column, ok := entry.Frame.Column("s1")
			require.True(t, ok)
			// A sets s1 by override; B inherits it through preequilibration.
			assert.Equal(t, 5.0, column[0], "%s cell %d", conditionID, cell)
		}
	}
}

func TestRunCompletesIndex(t *testing.T) {
	f := newRunFixture(t)
	require.NoError(t, f.service.Run(context.Background()))
	verifyRun(t, f)
}

func TestRunPoolCompletesIndex(t *testing.T) {
	f := newRunFixture(t)
	require.NoError(t, f.service.RunPool(context.Background()))
	verifyRun(t, f)
}

// A job referencing a condition absent from the conditions table fails on its
// worker and aborts the whole run.
func TestRunWorkerFailureAborts(t *testing.T) {
	conditions := table.Conditions{{ID: "A"}}
	measurements := &table.Measurements{
		Rows: []*table.Measurement{
			{SimulationConditionID: "A", Time: 60},
			{SimulationConditionID: "B", Time: 60},
		},
	}
	schedule := scheduler.New([]string{"A", "B"}, measurements, scheduler.Config{Workers: 2, CellCount: 1})
	index := results.NewIndex(table.Conditions{{ID: "A"}, {ID: "B"}}, measurements, 1)
	cache, err := results.NewCache(path.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	executor, err := worker.New(
		worker.WithEngineFactory(engine.FactoryFunc(func() (engine.Engine, error) {
			return newStateEngine(), nil
		})),
		worker.WithConditions(conditions),
		worker.WithMeasurements(measurements),
		worker.WithIndex(index),
		worker.WithCache(cache),
	)
	require.NoError(t, err)

	service, err := New(WithSchedule(schedule), WithWorker(executor), WithIndex(index))
	require.NoError(t, err)

	err = service.Run(context.Background())
	assert.ErrorIs(t, err, table.ErrConditionNotFound)
	assert.False(t, index.Complete())
}
