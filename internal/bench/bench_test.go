package bench

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/swarmfit/internal/opt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimaValues(t *testing.T) {
	funcs := []Func{
		Sphere{3},
		Ackley{2},
		Rastrigin{4},
		Styblinski{2},
		Rosenbrock{3},
		Eggholder{},
		TwoPeaks{2},
	}
	for _, fn := range funcs {
		t.Run(fn.Name(), func(t *testing.T) {
			for _, p := range fn.Optima() {
				assert.InDelta(t, p.Value, fn.Eval(p.Position), 1e-3)
			}
		})
	}
}

func TestEvalOutsideBounds(t *testing.T) {
	assert.True(t, math.IsInf(Sphere{2}.Eval([]float64{6, 0}), 1))
	assert.True(t, math.IsInf(Eggholder{}.Eval([]float64{0, 600}), 1))
	assert.True(t, math.IsInf(Sphere{2}.Eval([]float64{0}), 1))
}

func TestTwoPeaksDeeperWell(t *testing.T) {
	fn := TwoPeaks{1}
	assert.Less(t, fn.Eval([]float64{-5}), fn.Eval([]float64{5}))
	assert.InDelta(t, -4, fn.Eval([]float64{-5}), 1e-6)
}

func TestByName(t *testing.T) {
	fn, err := ByName("Ackley", 3)
	require.NoError(t, err)
	assert.Equal(t, "Ackley_3D", fn.Name())

	_, err = ByName("eggholder", 3)
	assert.Error(t, err)
	_, err = ByName("rosenbrock", 1)
	assert.Error(t, err)
	_, err = ByName("himmelblau", 2)
	assert.Error(t, err)
	_, err = ByName("sphere", 0)
	assert.Error(t, err)

	assert.Contains(t, Names(), "twopeaks")
}

func TestCompare(t *testing.T) {
	entries := []Entry{
		{Name: "de", New: func(seed int64) opt.Optimizer { return opt.NewSwarm("de", 80, 20, seed, nil) }},
		{Name: "ro", New: func(seed int64) opt.Optimizer { return opt.NewSwarm("ro", 5, 5, seed, nil) }},
	}

	sums, err := Compare(Sphere{2}, entries, Options{Trials: 4, Seed: 1, Workers: 3})
	require.NoError(t, err)
	require.Len(t, sums, 2)

	de := sums[0]
	assert.Equal(t, "de", de.Algorithm)
	assert.Equal(t, 4, de.Trials)
	assert.Equal(t, 4, de.Successes)
	assert.LessOrEqual(t, de.Best, de.Mean)
	assert.LessOrEqual(t, de.Mean, de.Worst)
	assert.Len(t, de.BestPosition, 2)

	// Reproducible across runs and worker counts.
	again, err := Compare(Sphere{2}, entries, Options{Trials: 4, Seed: 1, Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, sums, again)
}

type failing struct{}

func (failing) Name() string { return "failing" }

func (failing) Run(func([]float64) float64, []float64, []float64, int) ([]float64, float64, error) {
	return nil, 0, errors.New("no luck")
}

func TestCompareError(t *testing.T) {
	entries := []Entry{{Name: "failing", New: func(int64) opt.Optimizer { return failing{} }}}
	_, err := Compare(Sphere{2}, entries, Options{Trials: 2})
	assert.ErrorContains(t, err, "no luck")

	_, err = Compare(Sphere{2}, entries, Options{})
	assert.Error(t, err)
}
