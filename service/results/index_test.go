package results

import (
	"fmt"
	"testing"

	"github.com/cellrun/cellrun/internal/idgen"
	"github.com/cellrun/cellrun/model/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubIDs(t *testing.T) {
	t.Helper()
	previous := idgen.NewFunc
	counter := 0
	idgen.NewFunc = func() string {
		counter++
		return fmt.Sprintf("id-%03d", counter)
	}
	t.Cleanup(func() { idgen.NewFunc = previous })
}

func testFrame(t *testing.T) *table.Frame {
	t.Helper()
	frame, err := table.NewFrame([]string{"s1"}, [][]float64{{1}, {2}}, []float64{0, 30})
	require.NoError(t, err)
	return frame
}

func TestNewIndexKeys(t *testing.T) {
	stubIDs(t)
	conditions := table.Conditions{{ID: "A"}, {ID: "B"}}
	measurements := &table.Measurements{
		HasDataset: true,
		Rows: []*table.Measurement{
			{SimulationConditionID: "A", DatasetID: "ds_a", Time: 30},
			{SimulationConditionID: "B", Time: 30},
		},
	}

	index := NewIndex(conditions, measurements, 1)
	assert.Equal(t, 2, index.Len())

	key, ok := index.KeyOf("A", 1)
	require.True(t, ok)
	assert.Equal(t, "ds_a", key)

	key, ok = index.KeyOf("B", 1)
	require.True(t, ok)
	assert.Equal(t, "id-001", key)

	_, ok = index.KeyOf("missing", 1)
	assert.False(t, ok)
}

// With replicates a shared datasetId would collide, so the cell index is
// appended.
func TestNewIndexReplicateKeys(t *testing.T) {
	conditions := table.Conditions{{ID: "A"}}
	measurements := &table.Measurements{
		HasDataset: true,
		Rows:       []*table.Measurement{{SimulationConditionID: "A", DatasetID: "ds_a", Time: 30}},
	}

	index := NewIndex(conditions, measurements, 3)
	require.Equal(t, 3, index.Len())
	for cell := 1; cell <= 3; cell++ {
		key, ok := index.KeyOf("A", cell)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("ds_a+%d", cell), key)
	}
}

func TestMergeAndComplete(t *testing.T) {
	stubIDs(t)
	conditions := table.Conditions{{ID: "A"}, {ID: "B"}}
	measurements := &table.Measurements{
		Rows: []*table.Measurement{
			{SimulationConditionID: "A", Time: 30},
			{SimulationConditionID: "B", Time: 30},
		},
	}
	index := NewIndex(conditions, measurements, 1)
	assert.False(t, index.Complete())

	frame := testFrame(t)
	require.NoError(t, index.Merge(&Parcel{ConditionID: "A", Cell: 1, Frame: frame}))
	assert.False(t, index.Complete())
	assert.Equal(t, frame, index.Lookup("A", 1).Frame)

	err := index.Merge(&Parcel{ConditionID: "X", Cell: 1, Frame: frame})
	assert.ErrorIs(t, err, ErrNoEntry)

	require.NoError(t, index.Merge(&Parcel{ConditionID: "B", Cell: 1, Frame: frame}))
	assert.True(t, index.Complete())
}
