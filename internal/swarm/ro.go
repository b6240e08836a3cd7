package swarm

// DefaultEta is the relative step size of random optimization.
const DefaultEta = 0.1

// ROParams configures parallel random optimization.
type ROParams struct {
	Eta float64
}

func DefaultROParams() ROParams {
	return ROParams{Eta: DefaultEta}
}

// RO runs one random optimization walk per particle. Each step perturbs a
// position by a Gaussian step proportional to the position itself and keeps
// the move when it is no worse.
type RO struct {
	core
	params ROParams
}

// NewRO returns a parallel random optimization engine.
func NewRO(obj Objective, npart, ndim, maxIter int, params ROParams, opts ...Option) (*RO, error) {
	if params.Eta < 0 {
		return nil, configErr("eta", "must not be negative, got %v", params.Eta)
	}
	c, err := newCore("ro", obj, npart, ndim, maxIter, opts)
	if err != nil {
		return nil, err
	}
	return &RO{core: c, params: params}, nil
}

func (r *RO) Initialize() error {
	return r.initialize()
}

// perturb returns x + scale*x*N/5 with N standard normal per dimension.
func (c *core) perturb(x []float64, scale float64) []float64 {
	out := make([]float64, len(x))
	for d := range x {
		out[d] = x[d] + scale*x[d]*c.gauss.StdNormal()/5
	}
	return out
}

func (r *RO) Step() error {
	if err := r.beginStep(); err != nil {
		return err
	}

	cand := make([][]float64, r.npart)
	for i := range cand {
		cand[i] = r.perturb(r.pos[i], r.params.Eta)
	}
	cand = r.bound(cand)

	fit, err := r.Evaluate(cand)
	if err != nil {
		return err
	}

	for i := range fit {
		if fit[i] <= r.fit[i] {
			r.fit[i] = fit[i]
			r.pos[i] = cand[i]
		}
		r.improve(i, fit[i], cand[i])
	}

	r.iterations++
	return nil
}

func (r *RO) Optimize() (float64, []float64, error) {
	return run(r, &r.core)
}

func (r *RO) Results() *Results {
	return r.results(map[string]any{"eta": r.params.Eta})
}
