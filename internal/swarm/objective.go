package swarm

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Objective evaluates a position and returns its fitness. The objective
// must be framed so that lower values are better. Implementations must not
// modify x.
type Objective interface {
	Evaluate(x []float64) (float64, error)
}

// ObjectiveFunc adapts an infallible function to the Objective interface.
type ObjectiveFunc func(x []float64) float64

func (f ObjectiveFunc) Evaluate(x []float64) (float64, error) { return f(x), nil }

// FallibleFunc adapts a function that may fail to the Objective interface.
type FallibleFunc func(x []float64) (float64, error)

func (f FallibleFunc) Evaluate(x []float64) (float64, error) { return f(x) }

// counted tracks the number of objective calls.
type counted struct {
	Objective
	n atomic.Int64
}

func (c *counted) Evaluate(x []float64) (float64, error) {
	c.n.Add(1)
	return c.Objective.Evaluate(x)
}

// Evaluator applies an objective to every row of a population. The result
// at index i must be the fitness of pos[i] so evaluation order never
// matters. On error the returned fitness slice is nil.
type Evaluator interface {
	Evaluate(obj Objective, pos [][]float64) ([]float64, error)
}

// SerialEvaluator evaluates particles one after the other and stops at the
// first error.
type SerialEvaluator struct{}

func (SerialEvaluator) Evaluate(obj Objective, pos [][]float64) ([]float64, error) {
	fit := make([]float64, len(pos))
	for i, x := range pos {
		v, err := obj.Evaluate(x)
		if err != nil {
			return nil, err
		}
		fit[i] = v
	}
	return fit, nil
}

// ParallelEvaluator evaluates particles concurrently on at most Workers
// goroutines (GOMAXPROCS when zero). The first error cancels the remaining
// evaluations.
type ParallelEvaluator struct {
	Workers int
}

func (ev ParallelEvaluator) Evaluate(obj Objective, pos [][]float64) ([]float64, error) {
	workers := ev.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	fit := make([]float64, len(pos))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	for i := range pos {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := obj.Evaluate(pos[i])
			if err != nil {
				return err
			}
			fit[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fit, nil
}
