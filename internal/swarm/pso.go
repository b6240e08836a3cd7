package swarm

import (
	"math"
)

// Default particle swarm parameters. With c1 = c2 = 1.49 the inertia
// should satisfy w > 0.5*(c1+c2) - 1.
const (
	DefaultCognition = 1.49
	DefaultSocial    = 1.49
	DefaultInertia   = 0.729
	DefaultBareProb  = 0.5
	DefaultNeighbors = 2
)

// Inertia schedules the velocity weight over a run.
type Inertia interface {
	Weight(w0 float64, iteration, maxIter int) float64
}

// LinearInertia decays the weight linearly from Hi at the first iteration to
// Lo at maxIter. Common values are Hi = 0.9 and Lo = 0.4 - see:
//
//	Eberhart, R.C.; Yuhui Shi, "Particle swarm optimization: developments,
//	applications and resources," Evolutionary Computation, 2001.
type LinearInertia struct {
	Hi float64
	Lo float64
}

func (li LinearInertia) Weight(w0 float64, iteration, maxIter int) float64 {
	hi, lo := li.Hi, li.Lo
	if lo > hi {
		hi, lo = lo, hi
	}
	return hi - (float64(iteration)/float64(maxIter))*(hi-lo)
}

// Constriction calculates the constriction coefficient for the given c1 and
// c2 (Clerc 1999). c1+c2 should be greater than, but close to, 4.
func Constriction(c1, c2 float64) float64 {
	phi := c1 + c2
	return 2 / math.Abs(2-phi-math.Sqrt(phi*phi-4*phi))
}

// PSOParams configures the particle swarm family. Start from
// DefaultPSOParams; every field is used as given.
type PSOParams struct {
	C1 float64 // cognitive parameter
	C2 float64 // social parameter
	W  float64 // base velocity weight
	// Inertia, when set, replaces the constant W each iteration.
	Inertia Inertia
	// Bare selects the bare-bones update (Kennedy 2003).
	Bare     bool
	BareProb float64
	// Ring selects a ring neighborhood of Neighbors particles instead of the
	// fully connected swarm.
	Ring      bool
	Neighbors int
	// VelocityBounds, when set, limits velocities before each position update.
	VelocityBounds Bounds
}

// DefaultPSOParams returns the canonical, fully connected swarm settings.
func DefaultPSOParams() PSOParams {
	return PSOParams{
		C1:        DefaultCognition,
		C2:        DefaultSocial,
		W:         DefaultInertia,
		BareProb:  DefaultBareProb,
		Neighbors: DefaultNeighbors,
	}
}

// PSO is particle swarm optimization in canonical, bare-bones and
// ring-topology form.
type PSO struct {
	core
	params PSOParams

	vel     [][]float64
	bestPos [][]float64 // per particle best positions
	bestFit []float64   // and their fitness
}

// NewPSO returns a particle swarm optimizer.
func NewPSO(obj Objective, npart, ndim, maxIter int, params PSOParams, opts ...Option) (*PSO, error) {
	if params.BareProb < 0 || params.BareProb > 1 {
		return nil, configErr("bareProb", "must be in [0,1], got %v", params.BareProb)
	}
	if params.Neighbors < 0 {
		return nil, configErr("neighbors", "must not be negative, got %d", params.Neighbors)
	}
	if params.Ring && params.Neighbors > npart {
		params.Neighbors = npart
	}

	name := "pso"
	switch {
	case params.Bare:
		name = "bare"
	case params.Ring:
		name = "ring"
	}

	c, err := newCore(name, obj, npart, ndim, maxIter, opts)
	if err != nil {
		return nil, err
	}
	if vb := params.VelocityBounds; vb != nil {
		if lower, _, ok := vb.Range(); ok && len(lower) != ndim {
			return nil, configErr("velocityBounds", "have %d dimensions, optimizer has %d", len(lower), ndim)
		}
		if b, ok := vb.(randBinder); ok {
			b.bindRand(c.rand)
		}
	}
	return &PSO{core: c, params: params}, nil
}

func (p *PSO) Initialize() error {
	if err := p.initialize(); err != nil {
		return err
	}
	p.vel = newMat(p.npart, p.ndim)
	p.bestPos = copyMat(p.pos)
	p.bestFit = copyVec(p.fit)
	return nil
}

// ringNeighborhood returns the particle indices around n, wrapping at the
// ends of the population.
func (p *PSO) ringNeighborhood(n int) []int {
	half := p.params.Neighbors / 2
	idx := make([]int, 0, 2*half+1)
	for k := n - half; k <= n+half; k++ {
		idx = append(idx, ((k%p.npart)+p.npart)%p.npart)
	}
	return idx
}

// neighborhoodBest returns the best known position visible to particle n.
func (p *PSO) neighborhoodBest(n int) []float64 {
	if !p.params.Ring {
		return p.bestPosition()
	}

	lbest := math.Inf(1)
	lpos := p.bestPos[n]
	for _, i := range p.ringNeighborhood(n) {
		if p.bestFit[i] < lbest {
			lbest = p.bestFit[i]
			lpos = p.bestPos[i]
		}
	}
	return lpos
}

func (p *PSO) Step() error {
	if err := p.beginStep(); err != nil {
		return err
	}

	var pos, vel [][]float64
	if p.params.Bare {
		pos = p.bareBonesPositions()
		vel = p.vel
	} else {
		pos, vel = p.canonicalPositions()
	}
	pos = p.bound(pos)

	fit, err := p.Evaluate(pos)
	if err != nil {
		return err
	}

	p.pos = pos
	p.vel = vel
	p.fit = fit
	for i := range fit {
		if fit[i] < p.bestFit[i] {
			p.bestFit[i] = fit[i]
			p.bestPos[i] = copyVec(pos[i])
		}
		p.improve(i, fit[i], pos[i])
	}

	p.iterations++
	return nil
}

func (p *PSO) weight() float64 {
	if p.params.Inertia != nil {
		return p.params.Inertia.Weight(p.params.W, p.iterations, p.maxIter)
	}
	return p.params.W
}

func (p *PSO) canonicalPositions() (pos, vel [][]float64) {
	w := p.weight()
	vel = newMat(p.npart, p.ndim)

	for i := range vel {
		lpos := p.neighborhoodBest(i)
		// r1 and r2 are drawn uniquely for every dimension.
		r1 := p.uniforms(p.ndim)
		r2 := p.uniforms(p.ndim)
		for j := range vel[i] {
			vel[i][j] = w*p.vel[i][j] +
				p.params.C1*r1[j]*(p.bestPos[i][j]-p.pos[i][j]) +
				p.params.C2*r2[j]*(lpos[j]-p.pos[i][j])
		}
	}

	if p.params.VelocityBounds != nil {
		vel = p.params.VelocityBounds.Limits(vel)
	}

	pos = newMat(p.npart, p.ndim)
	for i := range pos {
		for j := range pos[i] {
			pos[i][j] = p.pos[i][j] + vel[i][j]
		}
	}
	return pos, vel
}

// bareBonesPositions resamples each dimension, with probability BareProb,
// from a normal centered between the particle best and the neighborhood
// best with their distance as spread.
func (p *PSO) bareBonesPositions() [][]float64 {
	pos := copyMat(p.pos)
	for i := range pos {
		lpos := p.neighborhoodBest(i)
		for j := range pos[i] {
			if p.rand.Float64() < p.params.BareProb {
				m := 0.5 * (lpos[j] + p.bestPos[i][j])
				s := math.Abs(lpos[j] - p.bestPos[i][j])
				pos[i][j] = p.gauss.Normal(m, s)
			}
		}
	}
	return pos
}

func (p *PSO) Optimize() (float64, []float64, error) {
	return run(p, &p.core)
}

func (p *PSO) Results() *Results {
	r := p.results(map[string]any{
		"c1":        p.params.C1,
		"c2":        p.params.C2,
		"w":         p.params.W,
		"bare":      p.params.Bare,
		"bareProb":  p.params.BareProb,
		"ring":      p.params.Ring,
		"neighbors": p.params.Neighbors,
	})
	if r == nil {
		return nil
	}
	r.Velocities = copyMat(p.vel)
	r.ParticleBest = copyMat(p.bestPos)
	r.ParticleBestFitness = copyVec(p.bestFit)
	return r
}
