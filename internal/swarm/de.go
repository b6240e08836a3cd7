package swarm

import (
	"gonum.org/v1/gonum/floats"
)

// Donor selection styles for differential evolution.
const (
	DonorRand   = "rand"   // three random particles
	DonorBest   = "best"   // global best replaces the first donor
	DonorToggle = "toggle" // alternate between best and rand call to call
)

// Crossover styles for differential evolution.
const (
	CrossoverBinomial = "bin" // per-dimension Bernoulli with one forced index
	CrossoverGA       = "ga"  // single cut, donor tail
)

// DEParams configures differential evolution. An empty Mode or Crossover
// selects DonorRand and CrossoverBinomial.
type DEParams struct {
	CR        float64 // crossover probability
	F         float64 // mutation factor, [0,2]
	Mode      string  // DonorRand, DonorBest or DonorToggle
	Crossover string  // CrossoverBinomial or CrossoverGA
}

// DefaultDEParams follows Tvrdik (2007), "Differential Evolution with
// Competitive Setting of Control Parameters".
func DefaultDEParams() DEParams {
	return DEParams{CR: 0.5, F: 0.8, Mode: DonorRand, Crossover: CrossoverBinomial}
}

// DE is differential evolution with greedy selection.
type DE struct {
	core
	params DEParams
	toggle bool
}

// NewDE returns a differential evolution optimizer. npart must be at least
// four so three donors distinct from the target exist.
func NewDE(obj Objective, npart, ndim, maxIter int, params DEParams, opts ...Option) (*DE, error) {
	if params.Mode == "" {
		params.Mode = DonorRand
	}
	if params.Crossover == "" {
		params.Crossover = CrossoverBinomial
	}
	if npart < 4 {
		return nil, configErr("npart", "differential evolution needs at least 4 particles, got %d", npart)
	}
	if params.CR < 0 || params.CR > 1 {
		return nil, configErr("CR", "must be in [0,1], got %v", params.CR)
	}
	if params.F < 0 || params.F > 2 {
		return nil, configErr("F", "must be in [0,2], got %v", params.F)
	}
	switch params.Mode {
	case DonorRand, DonorBest, DonorToggle:
	default:
		return nil, configErr("mode", "unknown donor mode %q", params.Mode)
	}
	switch params.Crossover {
	case CrossoverBinomial, CrossoverGA:
	default:
		return nil, configErr("crossover", "unknown crossover %q", params.Crossover)
	}

	c, err := newCore("de", obj, npart, ndim, maxIter, opts)
	if err != nil {
		return nil, err
	}
	return &DE{core: c, params: params}, nil
}

func (d *DE) Initialize() error {
	d.toggle = false
	return d.initialize()
}

// donors returns three distinct particle indices, none equal to target.
// The population is shuffled by sorting random keys until the target is not
// among the first three.
func (d *DE) donors(target int) [3]int {
	for {
		keys := d.uniforms(d.npart)
		idx := make([]int, d.npart)
		for i := range idx {
			idx[i] = i
		}
		floats.Argsort(keys, idx)

		k := [3]int{idx[0], idx[1], idx[2]}
		if k[0] != target && k[1] != target && k[2] != target {
			return k
		}
	}
}

// candidate builds the trial vector for particle idx.
func (d *DE) candidate(idx int) []float64 {
	k := d.donors(idx)
	v1 := d.pos[k[0]]
	v2 := d.pos[k[1]]
	v3 := d.pos[k[2]]

	switch d.params.Mode {
	case DonorBest:
		v1 = d.bestPosition()
	case DonorToggle:
		if d.toggle {
			v1 = d.bestPosition()
		}
		d.toggle = !d.toggle
	}

	// Donor vector v = v1 + F*(v2 - v3)
	diff := make([]float64, d.ndim)
	floats.SubTo(diff, v2, v3)
	donor := make([]float64, d.ndim)
	floats.AddScaledTo(donor, v1, d.params.F, diff)

	cut := d.intn(d.ndim)
	u := copyVec(d.pos[idx])

	if d.params.Crossover == CrossoverGA {
		copy(u[cut:], donor[cut:])
		return u
	}

	for j := range u {
		if d.rand.Float64() <= d.params.CR || j == cut {
			u[j] = donor[j]
		}
	}
	return u
}

func (d *DE) Step() error {
	if err := d.beginStep(); err != nil {
		return err
	}

	toggle := d.toggle
	cand := make([][]float64, d.npart)
	for i := range cand {
		cand[i] = d.candidate(i)
	}
	cand = d.bound(cand)

	fit, err := d.Evaluate(cand)
	if err != nil {
		d.toggle = toggle
		return err
	}

	for i := range fit {
		if fit[i] <= d.fit[i] {
			d.fit[i] = fit[i]
			d.pos[i] = cand[i]
		}
		d.improve(i, fit[i], cand[i])
	}

	d.iterations++
	return nil
}

func (d *DE) Optimize() (float64, []float64, error) {
	return run(d, &d.core)
}

func (d *DE) Results() *Results {
	return d.results(map[string]any{
		"CR":        d.params.CR,
		"F":         d.params.F,
		"mode":      d.params.Mode,
		"crossover": d.params.Crossover,
	})
}
