package swarm

import (
	"testing"

	"github.com/cwbudde/swarmfit/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func status(iter int, best float64) Status {
	return Status{Iteration: iter, MaxIter: 100, Best: []BestRecord{{Fitness: best}}}
}

func TestMaxIterOrTol(t *testing.T) {
	assert.False(t, MaxIterOrTol{}.Done(status(10, 0)))
	assert.True(t, MaxIterOrTol{}.Done(status(100, 5)))

	tol := 0.1
	c := MaxIterOrTol{Tol: &tol}
	assert.False(t, c.Done(status(3, 0.1)))
	assert.True(t, c.Done(status(3, 0.09)))
}

func TestStagnationStopsAfterPatience(t *testing.T) {
	c := NewStagnation(3, 0.01)

	assert.False(t, c.Done(status(0, 100)))
	assert.False(t, c.Done(status(1, 50)))     // significant
	assert.False(t, c.Done(status(2, 49.9)))   // stale 1
	assert.False(t, c.Done(status(2, 49.9)))   // same iteration, no update
	assert.False(t, c.Done(status(3, 49.8)))   // stale 2
	assert.Equal(t, 2, c.StaleCount())
	assert.True(t, c.Done(status(4, 49.75))) // stale 3

	c.Reset()
	assert.Equal(t, 0, c.StaleCount())
	assert.False(t, c.Done(status(0, 10)))
}

func TestStagnationRespectsMaxIter(t *testing.T) {
	c := NewStagnation(1000, 0)
	assert.True(t, c.Done(status(100, 1)))
}

func TestStagnationDrivesEngine(t *testing.T) {
	o := newEngine(t, "ro", ObjectiveFunc(sphere), 4, 2, 10000, 3,
		WithStopping(NewStagnation(5, 0.5)))
	_, _, err := o.Optimize()
	require.NoError(t, err)
	assert.Less(t, o.Results().Iterations, 10000)
}

func TestRelativeImprovement(t *testing.T) {
	assert.InDelta(t, 0.5, relativeImprovement(10, 5), 1e-12)
	assert.Equal(t, 0.0, relativeImprovement(3, 3))
	assert.Greater(t, relativeImprovement(0, -1), 1e9)
}

func TestGaussianMoments(t *testing.T) {
	g := NewGaussian(rng.NewSeeded(1))
	x := make([]float64, 20000)
	for i := range x {
		x[i] = g.Normal(3, 2)
	}
	mean, std := stat.MeanStdDev(x, nil)
	assert.InDelta(t, 3, mean, 0.05)
	assert.InDelta(t, 2, std, 0.05)
}

type countingRand struct {
	n int
	r Rand
}

func (c *countingRand) Float64() float64 {
	c.n++
	return c.r.Float64()
}

func TestGaussianBuffersPair(t *testing.T) {
	cr := &countingRand{r: rng.NewSeeded(2)}
	g := NewGaussian(cr)
	for range 10 {
		g.StdNormal()
	}
	assert.Equal(t, 10, cr.n)
}
