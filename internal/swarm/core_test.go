package swarm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrajectoryNonIncreasing(t *testing.T) {
	for _, name := range AlgorithmNames() {
		t.Run(name, func(t *testing.T) {
			o := newEngine(t, name, ObjectiveFunc(rastrigin), 12, 3, 40, 7)
			_, _, err := o.Optimize()
			require.NoError(t, err)

			r := o.Results()
			require.NotEmpty(t, r.Best)
			assert.Equal(t, 0, r.Best[0].Iteration)
			for i := 1; i < len(r.Best); i++ {
				assert.Less(t, r.Best[i].Fitness, r.Best[i-1].Fitness, "record %d", i)
				assert.GreaterOrEqual(t, r.Best[i].Iteration, r.Best[i-1].Iteration)
			}
		})
	}
}

func TestOptimizeRunsAllIterations(t *testing.T) {
	for _, name := range AlgorithmNames() {
		t.Run(name, func(t *testing.T) {
			const npart, maxIter = 8, 25
			o := newEngine(t, name, ObjectiveFunc(sphere), npart, 2, maxIter, 3)

			best, pos, err := o.Optimize()
			require.NoError(t, err)

			r := o.Results()
			assert.Equal(t, maxIter, r.Iterations)
			assert.Equal(t, npart*(maxIter+1), r.Evaluations)
			assert.Equal(t, r.BestFitness(), best)
			assert.Equal(t, r.BestPosition(), pos)
			assert.Equal(t, name, r.Algorithm)
			assert.Len(t, r.Positions, npart)
			assert.Len(t, r.Fitness, npart)
			assert.True(t, o.Done())
		})
	}
}

func TestToleranceStopsEarly(t *testing.T) {
	for _, name := range AlgorithmNames() {
		t.Run(name, func(t *testing.T) {
			const tol = 0.5
			o := newEngine(t, name, ObjectiveFunc(sphere), 20, 2, 200, 11, WithTolerance(tol))
			_, _, err := o.Optimize()
			require.NoError(t, err)

			r := o.Results()
			require.NotNil(t, r.Tolerance)
			assert.Equal(t, tol, *r.Tolerance)
			if r.Iterations < r.MaxIter {
				assert.Less(t, r.BestFitness(), tol)
			}
		})
	}
}

func TestSeededRunsAreReproducible(t *testing.T) {
	for _, name := range AlgorithmNames() {
		t.Run(name, func(t *testing.T) {
			run := func() *Results {
				box, err := Uniform(3, -5, 5, Resample)
				require.NoError(t, err)
				o := newEngine(t, name, ObjectiveFunc(rastrigin), 10, 3, 30, 42, WithBounds(box))
				_, _, err = o.Optimize()
				require.NoError(t, err)
				return o.Results()
			}

			a, b := run(), run()
			assert.Equal(t, a.Best, b.Best)
			assert.Equal(t, a.Positions, b.Positions)
		})
	}
}

func TestSphereConverges(t *testing.T) {
	// Settings where the defaults take too small a step for this budget.
	tuned := map[string]map[string]any{
		"ga":    {"F": 0.5},
		"ro":    {"eta": 2.0},
		"micro": {"eta": 2.0, "glimpse": 0.1},
	}

	for _, name := range AlgorithmNames() {
		t.Run(name, func(t *testing.T) {
			for seed := int64(1); seed <= 3; seed++ {
				o := newEngineWith(t, name, tuned[name], ObjectiveFunc(sphere), 20, 2, 100, seed)
				best, pos, err := o.Optimize()
				require.NoError(t, err)

				r := o.Results()
				assert.Equal(t, 100, r.Iterations)
				assert.LessOrEqual(t, best, r.Best[0].Fitness)
				assert.Less(t, best, 0.01, "seed %d", seed)
				require.Len(t, pos, 2)
				assert.InDelta(t, 0, pos[0], 0.1, "seed %d", seed)
				assert.InDelta(t, 0, pos[1], 0.1, "seed %d", seed)
			}
		})
	}
}

func TestLifecycleErrors(t *testing.T) {
	for _, name := range AlgorithmNames() {
		t.Run(name, func(t *testing.T) {
			o := newEngine(t, name, ObjectiveFunc(sphere), 6, 2, 2, 1)

			assert.Nil(t, o.Results())
			assert.False(t, o.Done())
			assert.ErrorIs(t, o.Step(), ErrNotInitialized)

			require.NoError(t, o.Initialize())
			assert.ErrorIs(t, o.Initialize(), ErrAlreadyInitialized)

			require.NoError(t, o.Step())
			require.NoError(t, o.Step())
			assert.True(t, o.Done())
			assert.ErrorIs(t, o.Step(), ErrDone)
			assert.Equal(t, 2, o.Results().Iterations)

			_, _, err := o.Optimize()
			assert.ErrorIs(t, err, ErrAlreadyInitialized)
		})
	}
}

func TestDoneLatches(t *testing.T) {
	calls := 0
	stop := StopFunc(func(s Status) bool {
		calls++
		return s.Iteration == 1
	})
	o := newEngine(t, "jaya", ObjectiveFunc(sphere), 5, 2, 10, 1, WithStopping(stop))

	require.NoError(t, o.Initialize())
	require.NoError(t, o.Step())
	assert.True(t, o.Done())
	n := calls
	assert.True(t, o.Done())
	assert.Equal(t, n, calls, "criterion consulted after latching")
}

func TestObjectiveErrorLeavesStateUntouched(t *testing.T) {
	errBoom := errors.New("boom")

	for _, name := range AlgorithmNames() {
		t.Run(name, func(t *testing.T) {
			fail := false
			obj := FallibleFunc(func(x []float64) (float64, error) {
				if fail {
					return 0, errBoom
				}
				return sphere(x), nil
			})

			o := newEngine(t, name, obj, 8, 2, 10, 9)
			require.NoError(t, o.Initialize())
			require.NoError(t, o.Step())

			before := o.Results()
			fail = true
			err := o.Step()
			require.ErrorIs(t, err, errBoom)

			after := o.Results()
			after.Evaluations = before.Evaluations
			assert.Equal(t, before, after)

			// The run resumes once the objective recovers.
			fail = false
			require.NoError(t, o.Step())
			assert.Equal(t, 2, o.Results().Iterations)
		})
	}
}

func TestConstructionErrors(t *testing.T) {
	obj := ObjectiveFunc(sphere)
	box := MustBox([]float64{-1, -1, -1}, []float64{1, 1, 1}, Clip)

	tests := []struct {
		name string
		alg  string
		np   int
		opts []Option
	}{
		{"unknown algorithm", "annealing", 10, nil},
		{"bounds dimension mismatch", "pso", 10, []Option{WithBounds(box)}},
		{"de too few particles", "de", 3, nil},
		{"gwo too few particles", "gwo", 2, nil},
		{"ga top too small", "ga", 3, nil},
		{"no particles", "jaya", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.alg, obj, tt.np, 2, 10, nil, tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := New("pso", nil, 10, 2, 10, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = New("pso", obj, 10, 2, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParallelEvaluatorMatchesSerial(t *testing.T) {
	for _, name := range []string{"pso", "de", "micro"} {
		t.Run(name, func(t *testing.T) {
			serial := newEngine(t, name, ObjectiveFunc(rastrigin), 16, 4, 20, 21)
			parallel := newEngine(t, name, ObjectiveFunc(rastrigin), 16, 4, 20, 21,
				WithEvaluator(ParallelEvaluator{Workers: 4}))

			_, _, err := serial.Optimize()
			require.NoError(t, err)
			_, _, err = parallel.Optimize()
			require.NoError(t, err)

			assert.Equal(t, serial.Results().Best, parallel.Results().Best)
		})
	}
}
