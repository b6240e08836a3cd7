package swarm

import (
	"math"
	"testing"

	"github.com/cwbudde/swarmfit/internal/rng"
	"github.com/stretchr/testify/require"
)

func sphere(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return s
}

func rastrigin(x []float64) float64 {
	s := 10 * float64(len(x))
	for _, v := range x {
		s += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return s
}

// newEngine builds the named engine over [-5,5]^ndim with a seeded source.
func newEngine(t *testing.T, name string, obj Objective, npart, ndim, maxIter int, seed int64, opts ...Option) Optimizer {
	t.Helper()
	return newEngineWith(t, name, nil, obj, npart, ndim, maxIter, seed, opts...)
}

// newEngineWith is newEngine with explicit hyperparameters.
func newEngineWith(t *testing.T, name string, params map[string]any, obj Objective, npart, ndim, maxIter int, seed int64, opts ...Option) Optimizer {
	t.Helper()
	box, err := Uniform(ndim, -5, 5, Clip)
	require.NoError(t, err)

	all := append([]Option{WithBounds(box), WithRand(rng.NewSeeded(seed))}, opts...)
	o, err := New(name, obj, npart, ndim, maxIter, params, all...)
	require.NoError(t, err)
	return o
}
