package swarm

import (
	"log/slog"
	"math"
)

// Status is the read-only view of a run handed to a StoppingCriterion.
// Slices alias optimizer state and must not be modified.
type Status struct {
	Iteration int
	MaxIter   int
	Best      []BestRecord
	Positions [][]float64
	Fitness   []float64
}

// BestFitness returns the current global best fitness.
func (s Status) BestFitness() float64 {
	return s.Best[len(s.Best)-1].Fitness
}

// StoppingCriterion decides when a run terminates. It replaces the default
// max-iteration/tolerance test entirely.
type StoppingCriterion interface {
	Done(s Status) bool
}

// StopFunc adapts a function to StoppingCriterion.
type StopFunc func(s Status) bool

func (f StopFunc) Done(s Status) bool { return f(s) }

// MaxIterOrTol is the default criterion: the iteration budget is spent, or
// the best fitness dropped below Tol when Tol is set.
type MaxIterOrTol struct {
	Tol *float64
}

func (c MaxIterOrTol) Done(s Status) bool {
	if s.Iteration >= s.MaxIter {
		return true
	}
	return c.Tol != nil && s.BestFitness() < *c.Tol
}

// Stagnation stops a run when the global best has not improved by at least
// Threshold (relative) for Patience consecutive iterations, or when the
// iteration budget is spent.
type Stagnation struct {
	// Patience is the number of iterations with no significant improvement
	// tolerated before stopping.
	Patience int
	// Threshold is the minimum relative improvement counted as progress,
	// (last - current) / |last|. Example: 0.001 = 0.1%.
	Threshold float64

	lastIter        int
	lastSignificant float64
	staleCount      int
	started         bool
}

// NewStagnation returns a Stagnation criterion.
func NewStagnation(patience int, threshold float64) *Stagnation {
	return &Stagnation{Patience: patience, Threshold: threshold}
}

func (c *Stagnation) Done(s Status) bool {
	if s.Iteration >= s.MaxIter {
		return true
	}

	cost := s.BestFitness()

	// First observation
	if !c.started {
		c.started = true
		c.lastIter = s.Iteration
		c.lastSignificant = cost
		return false
	}

	// Only one update per iteration
	if s.Iteration == c.lastIter {
		return c.staleCount >= c.Patience
	}
	c.lastIter = s.Iteration

	if relativeImprovement(c.lastSignificant, cost) >= c.Threshold {
		c.lastSignificant = cost
		c.staleCount = 0
		return false
	}

	c.staleCount++
	slog.Debug("No significant improvement",
		"iteration", s.Iteration,
		"best", cost,
		"last_significant", c.lastSignificant,
		"stale_count", c.staleCount,
		"patience", c.Patience,
	)

	if c.staleCount >= c.Patience {
		slog.Info("Stagnation detected - stopping early",
			"iteration", s.Iteration,
			"stale_count", c.staleCount,
			"best", cost,
		)
		return true
	}
	return false
}

// StaleCount returns the current number of iterations without improvement.
func (c *Stagnation) StaleCount() int {
	return c.staleCount
}

// Reset clears the tracked state so the criterion can serve a new run.
func (c *Stagnation) Reset() {
	c.started = false
	c.lastIter = 0
	c.lastSignificant = math.Inf(1)
	c.staleCount = 0
}

func relativeImprovement(last, cost float64) float64 {
	if last == cost {
		return 0
	}
	if last == 0 || math.IsInf(last, 0) {
		// No meaningful scale; any strict decrease counts.
		if cost < last {
			return math.Inf(1)
		}
		return 0
	}
	return (last - cost) / math.Abs(last)
}
