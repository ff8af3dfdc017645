package perftop

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineSeriesPush(t *testing.T) {
	line := LineSeries{Y: make([]float64, 3)}
	for _, v := range []float64{1, 2, 3, 4} {
		line.Push(v)
	}
	assert.Equal(t, []float64{2, 3, 4}, line.Y)
	assert.Equal(t, 4.0, line.Last())

	var empty LineSeries
	empty.Push(1)
	assert.Equal(t, 0.0, empty.Last())
}

func TestSeriesSetDefaultAxis(t *testing.T) {
	set := NewSeriesSet(nil, nil, nil)
	set.Update(map[string]float64{"node-1": 1})

	snap := set.Snapshot()
	require.Len(t, snap, 1)
	assert.Len(t, snap[0].X, DEFAULT_HISTORY)
	assert.Len(t, snap[0].Y, DEFAULT_HISTORY)
	assert.Equal(t, "0", snap[0].X[DEFAULT_HISTORY-1])
	assert.Regexp(t, `^#[0-9a-f]{6}$`, snap[0].Color)
}

func TestSeriesSetUpdate(t *testing.T) {
	set := NewSeriesSet([]string{"a", "b", "c"}, []string{"red"}, rand.New(rand.NewPCG(1, 2)))

	set.Update(map[string]float64{"node-1": 1, "node-2": 10})
	set.Update(map[string]float64{"node-1": 2})
	set.Update(map[string]float64{"node-1": 3, "node-3": 7})

	snap := set.Snapshot()
	require.Len(t, snap, 2)

	assert.Equal(t, "node-1", snap[0].Title)
	assert.Equal(t, []float64{1, 2, 3}, snap[0].Y)
	assert.Equal(t, "red", snap[0].Color)

	assert.Equal(t, "node-3", snap[1].Title)
	assert.Equal(t, []float64{0, 0, 7}, snap[1].Y)
}

func TestSeriesSetSnapshotIsCopy(t *testing.T) {
	set := NewSeriesSet([]string{"a", "b"}, nil, nil)
	set.Update(map[string]float64{"n": 1})

	snap := set.Snapshot()
	snap[0].Y[1] = 99

	assert.Equal(t, 1.0, set.Snapshot()[0].Last())
}
