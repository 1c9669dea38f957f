package dryrun

import (
	"testing"

	"github.com/cellrun/cellrun/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHoldsSeededValues(t *testing.T) {
	e := New("s1", "s2")
	require.NoError(t, e.SetVariable("s1", 4))
	require.NoError(t, e.SetVariable("unknown_parameter", 1))

	rows, err := e.Run(0, 90, 30)
	require.NoError(t, err)
	require.Equal(t, 3, len(rows))
	for _, row := range rows {
		assert.Equal(t, []float64{4, 0}, row)
	}
}

func TestRunMinimumOneRow(t *testing.T) {
	e := New("s1")
	rows, err := e.Run(0, 0, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, len(rows))

	_, err = e.Run(0, 30, 0)
	assert.Error(t, err)
}

func TestClosedEngineRejected(t *testing.T) {
	e := New("s1")
	require.NoError(t, e.Close())
	assert.Error(t, e.SetVariable("s1", 1))
	_, err := e.Run(0, 30, 30)
	assert.Error(t, err)
}

func TestRegistered(t *testing.T) {
	factory, err := engine.Lookup(Name)
	require.NoError(t, err)
	instance, err := factory.New()
	require.NoError(t, err)
	defer instance.Close()
	assert.Equal(t, []string{"state_a", "state_b"}, instance.StateNames())

	_, err = engine.Lookup("missing")
	assert.Error(t, err)
}
