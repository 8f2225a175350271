package spatial

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/windloads/segpress/internal/geometry"
	"github.com/windloads/segpress/internal/pressure"
	"gonum.org/v1/gonum/spatial/r3"
)

func scenarioField(t *testing.T) *pressure.Field {
	t.Helper()
	m, err := geometry.NewMirror(geometry.MirrorM1, geometry.Layout{
		ExoRadius:         1,
		OffAxisDistance:   10,
		RadiusOfCurvature: 1e3,
	})
	require.NoError(t, err)
	xyz := []r3.Vec{{X: 0.1}, {X: -0.1}, {Y: 0.1}, {Y: -0.1}}
	area := []r3.Vec{{Z: 0.25}, {Z: 0.25}, {Z: 0.25}, {Z: 0.25}}
	f, err := pressure.NewField(m, []float64{1, 1, 1, 1}, area, xyz)
	require.NoError(t, err)
	return f
}

func TestLocateAtPoint(t *testing.T) {
	x, err := NewIndex(scenarioField(t))
	require.NoError(t, err)
	assert.Equal(t, 4, x.Len())

	m, ok := x.LocateAtPoint(r3.Vec{X: 0.1})
	require.True(t, ok)
	assert.Equal(t, 1.0, m.Pressure)
	assert.Equal(t, 0, m.Index)
	assert.Equal(t, 0.0, m.Distance)

	_, ok = x.LocateAtPoint(r3.Vec{X: 5, Y: 5, Z: 5})
	assert.False(t, ok)

	// Close is not exact
	_, ok = x.LocateAtPoint(r3.Vec{X: 0.1 + 1e-12})
	assert.False(t, ok)
}

// grid is a mount of n³ unit spaced samples
func grid(t *testing.T, n int) *pressure.Mount {
	t.Helper()
	var p []float64
	var xyz, area []r3.Vec
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				xyz = append(xyz, r3.Vec{X: float64(i), Y: float64(j), Z: float64(k)})
				area = append(area, r3.Vec{Z: 1})
				p = append(p, float64(len(p)))
			}
		}
	}
	m, err := pressure.NewMount("grid", p, area, xyz)
	require.NoError(t, err)
	return m
}

func TestNearest(t *testing.T) {
	g := grid(t, 6)
	x, err := NewIndex(g)
	require.NoError(t, err)

	queries := []r3.Vec{{X: 2.2, Y: 3.9, Z: 0.4}, {X: -3, Y: 10, Z: 2.6}, {X: 5, Y: 5, Z: 5}}
	for _, q := range queries {
		got := x.Nearest(q)
		want, dist := bruteNearest(g, q)
		assert.Equal(t, want, got.Index, "query %v", q)
		assert.InDelta(t, dist, got.Distance, 1e-12)
		assert.Equal(t, g.Sample(want), got.Sample)
	}
}

func bruteNearest(src Source, q r3.Vec) (int, float64) {
	best, dist := -1, math.Inf(1)
	for i := 0; i < src.Len(); i++ {
		if d := r3.Norm(r3.Sub(src.Sample(i).Position, q)); d < dist {
			best, dist = i, d
		}
	}
	return best, dist
}

func TestNearestN(t *testing.T) {
	x, err := NewIndex(grid(t, 5))
	require.NoError(t, err)

	ms := x.NearestN(r3.Vec{X: 2, Y: 2, Z: 2}, 7)
	require.Len(t, ms, 7)
	assert.Equal(t, r3.Vec{X: 2, Y: 2, Z: 2}, ms[0].Position)
	for _, m := range ms[1:] {
		assert.Equal(t, 1.0, m.Distance)
	}

	assert.Len(t, x.NearestN(r3.Vec{}, 1000), 125)
	assert.Nil(t, x.NearestN(r3.Vec{}, 0))
}

func TestWithinRadius(t *testing.T) {
	x, err := NewIndex(grid(t, 5))
	require.NoError(t, err)

	ms := x.WithinRadius(r3.Vec{}, 1.5)
	// origin, three axis neighbours and three face diagonals
	require.Len(t, ms, 7)
	assert.Equal(t, 0.0, ms[0].Distance)
	for i := 1; i < len(ms); i++ {
		assert.LessOrEqual(t, ms[i-1].Distance, ms[i].Distance)
		assert.LessOrEqual(t, ms[i].Distance, 1.5)
	}

	assert.Empty(t, x.WithinRadius(r3.Vec{X: 100}, 1))
	assert.Nil(t, x.WithinRadius(r3.Vec{}, -1))
}

func TestLocateAll(t *testing.T) {
	x, err := NewIndex(scenarioField(t))
	require.NoError(t, err)

	matches, missing := x.LocateAll([]r3.Vec{{Y: -0.1}, {X: 5, Y: 5, Z: 5}, {X: -0.1}})
	require.Len(t, matches, 2)
	assert.Equal(t, 3, matches[0].Index)
	assert.Equal(t, 1, matches[1].Index)
	assert.Equal(t, []int{1}, missing)
}

type empty struct{}

func (empty) Len() int                   { return 0 }
func (empty) Sample(int) pressure.Sample { return pressure.Sample{} }

func TestNewIndexEmpty(t *testing.T) {
	_, err := NewIndex(empty{})
	var eerr *pressure.EmptySelectionError
	assert.True(t, errors.As(err, &eerr))
}
