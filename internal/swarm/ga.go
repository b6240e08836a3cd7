package swarm

import (
	"cmp"
	"slices"
)

// GAParams configures the genetic algorithm.
type GAParams struct {
	CR  float64 // crossover probability
	F   float64 // mutation probability
	Top float64 // fraction of the ranked population eligible as partners
}

// DefaultGAParams returns the usual crossover-heavy, low-mutation setting.
func DefaultGAParams() GAParams {
	return GAParams{CR: 0.8, F: 0.05, Top: 0.5}
}

// GA is a generational genetic algorithm with single-cut recombination and
// single-gene mutation. The best particle of a generation is carried over
// unchanged.
type GA struct {
	core
	params GAParams
}

// NewGA returns a genetic algorithm optimizer.
func NewGA(obj Objective, npart, ndim, maxIter int, params GAParams, opts ...Option) (*GA, error) {
	if params.CR < 0 || params.CR > 1 {
		return nil, configErr("CR", "must be in [0,1], got %v", params.CR)
	}
	if params.F < 0 || params.F > 1 {
		return nil, configErr("F", "must be in [0,1], got %v", params.F)
	}
	if params.Top <= 0 || params.Top > 1 {
		return nil, configErr("top", "must be in (0,1], got %v", params.Top)
	}
	if n := int(params.Top * float64(npart)); n < 2 {
		return nil, configErr("top", "top fraction of %d particles holds %d, need at least 2", npart, n)
	}

	c, err := newCore("ga", obj, npart, ndim, maxIter, opts)
	if err != nil {
		return nil, err
	}
	return &GA{core: c, params: params}, nil
}

func (g *GA) Initialize() error {
	return g.initialize()
}

// rank returns particle indices ordered by fitness, ties by index.
func rank(fit []float64) []int {
	idx := make([]int, len(fit))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(fit[a], fit[b])
	})
	return idx
}

// Evolve returns the next generation without evaluating it. Partners are
// read from the current population, which is not modified.
func (g *GA) Evolve() [][]float64 {
	next := copyMat(g.pos)
	idx := rank(g.fit)
	top := int(g.params.Top * float64(g.npart))

	for k, i := range idx {
		if k == 0 {
			continue // leave the best one alone
		}
		if g.rand.Float64() < g.params.CR {
			g.crossover(next, i, idx, top)
		}
		if g.rand.Float64() < g.params.F {
			g.mutate(next, i)
		}
	}

	// Bound all but the carried-over best.
	best := idx[0]
	rest := make([][]float64, 0, g.npart-1)
	for i := range next {
		if i != best {
			rest = append(rest, next[i])
		}
	}
	g.bound(rest)
	return next
}

// crossover mates particle a with a partner among the top ranked.
func (g *GA) crossover(next [][]float64, a int, idx []int, top int) {
	b := idx[g.intn(top)]
	for a == b {
		b = idx[g.intn(top)]
	}

	// Random cut-off position
	d := g.intn(g.ndim)
	copy(next[a][d:], g.pos[b][d:])
}

// mutate replaces one random gene with a uniform draw within the bounds, or
// within the population's observed range when unbounded.
func (g *GA) mutate(next [][]float64, a int) {
	j := g.intn(g.ndim)

	lower, upper, ok := g.bounds.Range()
	var lo, hi float64
	if ok {
		lo, hi = lower[j], upper[j]
	} else {
		lo, hi = g.pos[0][j], g.pos[0][j]
		for i := range g.pos {
			lo = min(lo, g.pos[i][j])
			hi = max(hi, g.pos[i][j])
		}
	}
	next[a][j] = lo + g.rand.Float64()*(hi-lo)
}

func (g *GA) Step() error {
	if err := g.beginStep(); err != nil {
		return err
	}

	next := g.Evolve()
	fit, err := g.Evaluate(next)
	if err != nil {
		return err
	}

	g.pos = next
	g.fit = fit
	for i := range fit {
		g.improve(i, fit[i], next[i])
	}

	g.iterations++
	return nil
}

func (g *GA) Optimize() (float64, []float64, error) {
	return run(g, &g.core)
}

func (g *GA) Results() *Results {
	return g.results(map[string]any{
		"CR":  g.params.CR,
		"F":   g.params.F,
		"top": g.params.Top,
	})
}
