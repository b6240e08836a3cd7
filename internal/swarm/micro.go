package swarm

// DefaultGlimpse is the per-step probability that a MiCRO particle looks up.
const DefaultGlimpse = 0.01

// MiCROParams configures the grazing optimizer.
type MiCROParams struct {
	Eta     float64
	Glimpse float64
}

func DefaultMiCROParams() MiCROParams {
	return MiCROParams{Eta: DefaultEta, Glimpse: DefaultGlimpse}
}

// MiCRO is random optimization where each particle grazes on its own and
// occasionally looks up to jump next to a better-placed neighbor.
type MiCRO struct {
	core
	params MiCROParams
}

// NewMiCRO returns a grazing optimizer.
func NewMiCRO(obj Objective, npart, ndim, maxIter int, params MiCROParams, opts ...Option) (*MiCRO, error) {
	if params.Eta < 0 {
		return nil, configErr("eta", "must not be negative, got %v", params.Eta)
	}
	if params.Glimpse < 0 || params.Glimpse > 1 {
		return nil, configErr("glimpse", "must be in [0,1], got %v", params.Glimpse)
	}
	c, err := newCore("micro", obj, npart, ndim, maxIter, opts)
	if err != nil {
		return nil, err
	}
	return &MiCRO{core: c, params: params}, nil
}

func (m *MiCRO) Initialize() error {
	return m.initialize()
}

// betterThan returns the particles whose fitness is strictly below f.
func (m *MiCRO) betterThan(f float64) []int {
	var idx []int
	for i, v := range m.fit {
		if v < f {
			idx = append(idx, i)
		}
	}
	return idx
}

func (m *MiCRO) Step() error {
	if err := m.beginStep(); err != nil {
		return err
	}

	cand := make([][]float64, m.npart)
	moved := make([]bool, m.npart)
	for i := range cand {
		if m.rand.Float64() < m.params.Glimpse {
			if idx := m.betterThan(m.fit[i]); len(idx) > 0 {
				y := m.pos[idx[m.intn(len(idx))]]
				cand[i] = m.perturb(y, 2*m.params.Eta)
				moved[i] = true
				continue
			}
		}
		cand[i] = m.perturb(m.pos[i], m.params.Eta)
	}
	cand = m.bound(cand)

	fit, err := m.Evaluate(cand)
	if err != nil {
		return err
	}

	for i := range fit {
		// A jump is taken regardless of fitness; grazing only on improvement.
		if moved[i] || fit[i] < m.fit[i] {
			m.fit[i] = fit[i]
			m.pos[i] = cand[i]
		}
		m.improve(i, fit[i], cand[i])
	}

	m.iterations++
	return nil
}

func (m *MiCRO) Optimize() (float64, []float64, error) {
	return run(m, &m.core)
}

func (m *MiCRO) Results() *Results {
	return m.results(map[string]any{
		"eta":     m.params.Eta,
		"glimpse": m.params.Glimpse,
	})
}
