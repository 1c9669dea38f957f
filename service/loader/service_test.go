package loader

import (
	"context"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, location, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(location, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, path.Join(dir, "experiment.yaml"), `name: egf_response
cellCount: 2
workers: 3
conditions: conditions.tsv
measurements: measurements.tsv
models:
  - model.txt
output: out
`)
	writeFile(t, path.Join(dir, "conditions.tsv"),
		"conditionId\tconditionName\tk1\tk2\n"+
			"control\tControl\t1.5\t\n"+
			"egf\tEGF\t\t0.25\n")
	writeFile(t, path.Join(dir, "measurements.tsv"),
		"simulationConditionId\tpreequilibrationConditionId\tdatasetId\ttime\n"+
			"control\t\tds_control\t60\n"+
			"egf\tcontrol\tds_egf\t90\n")

	problem, err := New().Load(context.Background(), path.Join(dir, "experiment.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "egf_response", problem.Experiment.Name)
	assert.Equal(t, 2, problem.Experiment.CellCount)
	assert.Equal(t, 3, problem.Experiment.Workers)
	assert.True(t, strings.HasSuffix(problem.Experiment.Output, "/out"), problem.Experiment.Output)
	assert.True(t, strings.HasSuffix(problem.Experiment.Models[0], "/model.txt"), problem.Experiment.Models[0])

	require.Equal(t, 2, len(problem.Conditions))
	control, err := problem.Conditions.Lookup("control")
	require.NoError(t, err)
	assert.Equal(t, "Control", control.Name)
	assert.Equal(t, map[string]float64{"k1": 1.5}, control.Overrides)

	require.Equal(t, 2, len(problem.Measurements.Rows))
	assert.True(t, problem.Measurements.HasPreequilibration)
	assert.True(t, problem.Measurements.HasDataset)
	assert.Equal(t, "control", problem.Measurements.PreconditionFor("egf"))
	assert.Equal(t, 90.0, problem.Measurements.Rows[1].Time)
}

func TestLoadMissingTables(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, path.Join(dir, "experiment.yaml"), "name: incomplete\n")

	_, err := New().Load(context.Background(), path.Join(dir, "experiment.yaml"))
	assert.Error(t, err)
}

func TestLoadConditionsErrors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	service := New()

	noID := path.Join(dir, "no_id.tsv")
	writeFile(t, noID, "conditionName\tk1\nControl\t1.0\n")
	_, err := service.LoadConditions(ctx, noID)
	assert.ErrorContains(t, err, "conditionId")

	badValue := path.Join(dir, "bad_value.tsv")
	writeFile(t, badValue, "conditionId\tk1\ncontrol\tnot_a_number\n")
	_, err = service.LoadConditions(ctx, badValue)
	assert.ErrorContains(t, err, "k1")
}

func TestLoadMeasurementsWithoutOptionalColumns(t *testing.T) {
	dir := t.TempDir()
	location := path.Join(dir, "measurements.tsv")
	writeFile(t, location, "simulationConditionId\ttime\ncontrol\t60\n")

	measurements, err := New().LoadMeasurements(context.Background(), location)
	require.NoError(t, err)
	assert.False(t, measurements.HasPreequilibration)
	assert.False(t, measurements.HasDataset)
	require.Equal(t, 1, len(measurements.Rows))
	assert.Equal(t, "", measurements.Rows[0].PreequilibrationConditionID)
}
