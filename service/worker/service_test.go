package worker

import (
	"context"
	"path"
	"testing"

	"github.com/cellrun/cellrun/engine"
	"github.com/cellrun/cellrun/model/job"
	"github.com/cellrun/cellrun/model/table"
	"github.com/cellrun/cellrun/service/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingEngine reports two constant states and records every SetVariable
// call.
type recordingEngine struct {
	variables map[string]float64
	closed    bool
}

func newRecordingEngine() *recordingEngine {
	return &recordingEngine{variables: map[string]float64{}}
}

func (e *recordingEngine) StateNames() []string { return []string{"s1", "s2"} }

func (e *recordingEngine) SetVariable(name string, value float64) error {
	e.variables[name] = value
	return nil
}

func (e *recordingEngine) Run(start, stop, step float64) ([][]float64, error) {
	rows := int((stop-start)/step) + 1
	values := make([][]float64, rows)
	for i := range values {
		values[i] = []float64{e.variables["s1"], e.variables["s2"]}
	}
	return values, nil
}

func (e *recordingEngine) Close() error {
	e.closed = true
	return nil
}

type fixture struct {
	conditions   table.Conditions
	measurements *table.Measurements
	index        *results.Index
	cache        *results.Cache
	engines      []*recordingEngine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		conditions: table.Conditions{
			{ID: "A", Overrides: map[string]float64{"k1": 2.5}},
			{ID: "B"},
		},
		measurements: &table.Measurements{
			HasPreequilibration: true,
			HasDataset:          true,
			Rows: []*table.Measurement{
				{SimulationConditionID: "A", DatasetID: "ds_a", Time: 60},
				{SimulationConditionID: "B", DatasetID: "ds_b", PreequilibrationConditionID: "A", Time: 60},
			},
		},
	}
	f.index = results.NewIndex(f.conditions, f.measurements, 1)
	cache, err := results.NewCache(path.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	f.cache = cache
	return f
}

func (f *fixture) service(t *testing.T) *Service {
	t.Helper()
	factory := engine.FactoryFunc(func() (engine.Engine, error) {
		instance := newRecordingEngine()
		f.engines = append(f.engines, instance)
		return instance, nil
	})
	service, err := New(
		WithConfig(Config{Start: 0, ReportingStep: 30}),
		WithEngineFactory(factory),
		WithConditions(f.conditions),
		WithMeasurements(f.measurements),
		WithIndex(f.index),
		WithCache(f.cache),
	)
	require.NoError(t, err)
	return service
}

func TestExecute(t *testing.T) {
	f := newFixture(t)
	service := f.service(t)

	parcel, err := service.Execute(context.Background(), job.New("A", 1))
	require.NoError(t, err)
	assert.Equal(t, "A", parcel.ConditionID)
	assert.Equal(t, 1, parcel.Cell)
	require.NotNil(t, parcel.Frame)
	assert.Equal(t, []string{"s1", "s2", table.TimeColumn}, parcel.Frame.Columns)
	assert.Equal(t, 3, parcel.Frame.Rows())

	times, ok := parcel.Frame.Column(table.TimeColumn)
	require.True(t, ok)
	assert.Equal(t, []float64{0, 30, 60}, times)

	require.Equal(t, 1, len(f.engines))
	assert.Equal(t, 2.5, f.engines[0].variables["k1"])
	assert.True(t, f.engines[0].closed)

	cached, err := f.cache.Load(context.Background(), "ds_a")
	require.NoError(t, err)
	assert.Equal(t, parcel.Frame.Values, cached.Values)
}

func TestExecuteSeedsPreequilibration(t *testing.T) {
	f := newFixture(t)
	service := f.service(t)

	frame, err := table.NewFrame([]string{"s1", "s2"}, [][]float64{{7, 9}}, []float64{60})
	require.NoError(t, err)
	require.NoError(t, f.cache.Save(context.Background(), "ds_a", frame))

	_, err = service.Execute(context.Background(), job.New("B", 1))
	require.NoError(t, err)

	require.Equal(t, 1, len(f.engines))
	assert.Equal(t, 7.0, f.engines[0].variables["s1"])
	assert.Equal(t, 9.0, f.engines[0].variables["s2"])
}

// A declared precondition whose result is not cached yet is not fatal, the
// job runs from the model's default state.
func TestExecuteMissingPreconditionResult(t *testing.T) {
	f := newFixture(t)
	service := f.service(t)

	parcel, err := service.Execute(context.Background(), job.New("B", 1))
	require.NoError(t, err)
	require.NotNil(t, parcel.Frame)

	require.Equal(t, 1, len(f.engines))
	assert.NotContains(t, f.engines[0].variables, "s1")
}

func TestExecuteUnknownCondition(t *testing.T) {
	f := newFixture(t)
	service := f.service(t)

	_, err := service.Execute(context.Background(), job.New("missing", 1))
	assert.ErrorIs(t, err, table.ErrConditionNotFound)
}

func TestExecuteNoMeasurementTime(t *testing.T) {
	f := newFixture(t)
	f.conditions = append(f.conditions, &table.Condition{ID: "C"})
	f.index = results.NewIndex(f.conditions, f.measurements, 1)
	service := f.service(t)

	_, err := service.Execute(context.Background(), job.New("C", 1))
	assert.ErrorIs(t, err, table.ErrNoSimulationTime)
}
