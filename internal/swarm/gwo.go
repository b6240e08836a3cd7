package swarm

import (
	"cmp"
	"slices"
)

// GWOParams configures the grey wolf optimizer.
type GWOParams struct {
	// Eta is the initial value of the decay coefficient a, which shrinks
	// linearly to zero over maxIter.
	Eta float64
}

// DefaultGWOParams starts the decay coefficient at 2.
func DefaultGWOParams() GWOParams {
	return GWOParams{Eta: 2}
}

// GWO is the grey wolf optimizer. The pack follows its three best wolves
// (alpha, beta and delta); every wolf moves to the mean of three positions
// pulled toward each leader.
//
//	Mirjalili, S., Mirjalili, S.M., Lewis, A., "Grey Wolf Optimizer,"
//	Advances in Engineering Software, 2014.
type GWO struct {
	core
	params  GWOParams
	leaders [3]BestRecord
}

// NewGWO returns a grey wolf optimizer. npart must be at least three.
func NewGWO(obj Objective, npart, ndim, maxIter int, params GWOParams, opts ...Option) (*GWO, error) {
	if npart < 3 {
		return nil, configErr("npart", "grey wolf optimizer needs at least 3 particles, got %d", npart)
	}
	if params.Eta < 0 {
		return nil, configErr("eta", "must not be negative, got %v", params.Eta)
	}
	c, err := newCore("gwo", obj, npart, ndim, maxIter, opts)
	if err != nil {
		return nil, err
	}
	return &GWO{core: c, params: params}, nil
}

func (g *GWO) Initialize() error {
	if err := g.initialize(); err != nil {
		return err
	}
	g.leaders = g.rerank(nil)
	return nil
}

// rerank picks the three best records among the previous leaders and the
// current population. Ties keep previous leaders first, then lower particle
// indices.
func (g *GWO) rerank(prev []BestRecord) [3]BestRecord {
	pool := make([]BestRecord, 0, len(prev)+g.npart)
	pool = append(pool, prev...)
	for i := range g.pos {
		pool = append(pool, BestRecord{
			Iteration: g.iterations,
			Particle:  i,
			Fitness:   g.fit[i],
			Position:  g.pos[i],
		})
	}
	slices.SortStableFunc(pool, func(a, b BestRecord) int {
		return cmp.Compare(a.Fitness, b.Fitness)
	})

	var out [3]BestRecord
	for k := range out {
		out[k] = pool[k]
		out[k].Position = copyVec(pool[k].Position)
	}
	return out
}

// pull returns leader - A*|C*leader - x| with A and C drawn per dimension.
func (g *GWO) pull(leader, x []float64, a float64) []float64 {
	A := g.uniforms(g.ndim)
	C := g.uniforms(g.ndim)
	out := make([]float64, g.ndim)
	for d := range out {
		A[d] = 2*a*A[d] - a
		C[d] = 2 * C[d]
		dist := C[d]*leader[d] - x[d]
		if dist < 0 {
			dist = -dist
		}
		out[d] = leader[d] - A[d]*dist
	}
	return out
}

func (g *GWO) Step() error {
	if err := g.beginStep(); err != nil {
		return err
	}

	a := g.params.Eta - g.params.Eta*float64(g.iterations)/float64(g.maxIter)

	pos := newMat(g.npart, g.ndim)
	for i := range pos {
		x1 := g.pull(g.leaders[0].Position, g.pos[i], a)
		x2 := g.pull(g.leaders[1].Position, g.pos[i], a)
		x3 := g.pull(g.leaders[2].Position, g.pos[i], a)
		for d := range pos[i] {
			pos[i][d] = (x1[d] + x2[d] + x3[d]) / 3
		}
	}
	pos = g.bound(pos)

	fit, err := g.Evaluate(pos)
	if err != nil {
		return err
	}

	g.pos = pos
	g.fit = fit
	g.leaders = g.rerank(g.leaders[:])
	for i := range fit {
		g.improve(i, fit[i], pos[i])
	}

	g.iterations++
	return nil
}

func (g *GWO) Optimize() (float64, []float64, error) {
	return run(g, &g.core)
}

func (g *GWO) Results() *Results {
	r := g.results(map[string]any{"eta": g.params.Eta})
	if r == nil {
		return nil
	}
	r.Leaders = make([]BestRecord, len(g.leaders))
	for k, l := range g.leaders {
		r.Leaders[k] = l
		r.Leaders[k].Position = copyVec(l.Position)
	}
	return r
}
