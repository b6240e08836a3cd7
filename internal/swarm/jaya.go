package swarm

import "math"

// Jaya moves every particle toward the current best and away from the
// current worst member of the population. It has no control parameters.
//
//	Rao, R.V., "Jaya: A simple and new optimization algorithm for solving
//	constrained and unconstrained optimization problems," IJIEC, 2016.
type Jaya struct {
	core
}

// NewJaya returns a Jaya optimizer.
func NewJaya(obj Objective, npart, ndim, maxIter int, opts ...Option) (*Jaya, error) {
	c, err := newCore("jaya", obj, npart, ndim, maxIter, opts)
	if err != nil {
		return nil, err
	}
	return &Jaya{core: c}, nil
}

func (j *Jaya) Initialize() error {
	return j.initialize()
}

func (j *Jaya) candidates() [][]float64 {
	idx := rank(j.fit)
	best := j.pos[idx[0]]
	worst := j.pos[idx[len(idx)-1]]

	pos := newMat(j.npart, j.ndim)
	for i := range pos {
		r1 := j.uniforms(j.ndim)
		r2 := j.uniforms(j.ndim)
		for d := range pos[i] {
			x := j.pos[i][d]
			pos[i][d] = x + r1[d]*(best[d]-math.Abs(x)) - r2[d]*(worst[d]-math.Abs(x))
		}
	}
	return j.bound(pos)
}

func (j *Jaya) Step() error {
	if err := j.beginStep(); err != nil {
		return err
	}

	cand := j.candidates()
	fit, err := j.Evaluate(cand)
	if err != nil {
		return err
	}

	for i := range fit {
		if fit[i] <= j.fit[i] {
			j.fit[i] = fit[i]
			j.pos[i] = cand[i]
		}
		j.improve(i, fit[i], cand[i])
	}

	j.iterations++
	return nil
}

func (j *Jaya) Optimize() (float64, []float64, error) {
	return run(j, &j.core)
}

func (j *Jaya) Results() *Results {
	return j.results(map[string]any{})
}
