package swarm

import (
	"math"
	"testing"

	"github.com/cwbudde/swarmfit/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wild() [][]float64 {
	inf := math.Inf(1)
	return [][]float64{
		{-100, 100, 0.5},
		{inf, -inf, math.NaN()},
		{-2, 3, 1e300},
		{0, 0, 0},
		{-2.0000001, 3.0000001, -1e-300},
	}
}

func TestBoxLimitsKeepsEveryCoordinateInside(t *testing.T) {
	lower := []float64{-2, -1, 0}
	upper := []float64{2, 3, 1}

	for _, mode := range []Enforce{Clip, Resample} {
		t.Run(string(mode), func(t *testing.T) {
			box := MustBox(lower, upper, mode).WithRand(rng.NewSeeded(1))
			pos := box.Limits(wild())
			for i := range pos {
				for j, x := range pos[i] {
					assert.GreaterOrEqual(t, x, lower[j], "pos[%d][%d]", i, j)
					assert.LessOrEqual(t, x, upper[j], "pos[%d][%d]", i, j)
				}
			}
		})
	}
}

func TestBoxClipMovesToNearestEdge(t *testing.T) {
	box := MustBox([]float64{-1, -1}, []float64{1, 1}, Clip)
	pos := box.Limits([][]float64{{-3, 0.25}, {5, math.NaN()}})
	assert.Equal(t, [][]float64{{-1, 0.25}, {1, -1}}, pos)
}

func TestBoxResampleKeepsInsideCoordinates(t *testing.T) {
	box := MustBox([]float64{-1, -1}, []float64{1, 1}, Resample).WithRand(rng.NewSeeded(3))
	pos := box.Limits([][]float64{{0.5, 9}})
	assert.Equal(t, 0.5, pos[0][0])
	assert.NotEqual(t, 9.0, pos[0][1])
}

func TestBoxResampleWithoutRand(t *testing.T) {
	box := MustBox([]float64{0}, []float64{1}, Resample)
	pos := box.Limits([][]float64{{4}})
	assert.GreaterOrEqual(t, pos[0][0], 0.0)
	assert.LessOrEqual(t, pos[0][0], 1.0)
}

func TestBoxValidator(t *testing.T) {
	box := MustBox([]float64{0, 0}, []float64{10, 10}, Clip)
	box.Validate = SnapToInt(1)

	pos := box.Limits([][]float64{{2.4, 2.6}, {3.3, 10.4}})
	assert.Equal(t, [][]float64{{2.4, 3}, {3.3, 10}}, pos)
}

func TestNewBoxErrors(t *testing.T) {
	tests := []struct {
		name         string
		lower, upper []float64
		mode         Enforce
	}{
		{"length mismatch", []float64{0}, []float64{1, 2}, Clip},
		{"empty", nil, nil, Clip},
		{"inverted", []float64{1}, []float64{0}, Clip},
		{"nan", []float64{math.NaN()}, []float64{0}, Clip},
		{"bad mode", []float64{0}, []float64{1}, "wrap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBox(tt.lower, tt.upper, tt.mode)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	b, err := NewBox([]float64{0}, []float64{1}, "")
	require.NoError(t, err)
	assert.Equal(t, Clip, b.Mode())
}

func TestUnbounded(t *testing.T) {
	pos := [][]float64{{1e9, -1e9}}
	assert.Equal(t, pos, Unbounded{}.Limits(pos))
	_, _, ok := Unbounded{}.Range()
	assert.False(t, ok)
}

func TestRandomInitializer(t *testing.T) {
	box := MustBox([]float64{-1, 10}, []float64{1, 20}, Clip)
	init := &RandomInitializer{Bounds: box, Rand: rng.NewSeeded(4)}

	pos := init.InitialSwarm(50, 2)
	require.Len(t, pos, 50)
	for _, p := range pos {
		require.Len(t, p, 2)
		assert.True(t, p[0] >= -1 && p[0] <= 1)
		assert.True(t, p[1] >= 10 && p[1] <= 20)
	}

	free := &RandomInitializer{Rand: rng.NewSeeded(4)}
	for _, p := range free.InitialSwarm(10, 3) {
		for _, x := range p {
			assert.True(t, x >= 0 && x < 1)
		}
	}
}
