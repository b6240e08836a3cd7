package swarm

// BestRecord is one entry of the global-best trajectory.
type BestRecord struct {
	Iteration int       `json:"iteration" yaml:"iteration"`
	Particle  int       `json:"particle" yaml:"particle"`
	Fitness   float64   `json:"fitness" yaml:"fitness"`
	Position  []float64 `json:"position" yaml:"position"`
}

// Results is a deep-copied snapshot of an optimizer run.
type Results struct {
	Algorithm   string         `json:"algorithm" yaml:"algorithm"`
	NPart       int            `json:"npart" yaml:"npart"`
	NDim        int            `json:"ndim" yaml:"ndim"`
	MaxIter     int            `json:"maxIter" yaml:"max_iter"`
	Iterations  int            `json:"iterations" yaml:"iterations"`
	Tolerance   *float64       `json:"tolerance,omitempty" yaml:"tolerance,omitempty"`
	Params      map[string]any `json:"params" yaml:"params"`
	Best        []BestRecord   `json:"best" yaml:"best"`
	Positions   [][]float64    `json:"positions" yaml:"positions"`
	Fitness     []float64      `json:"fitness" yaml:"fitness"`
	Evaluations int            `json:"evaluations" yaml:"evaluations"`

	// Particle swarm only.
	Velocities          [][]float64 `json:"velocities,omitempty" yaml:"velocities,omitempty"`
	ParticleBest        [][]float64 `json:"particleBest,omitempty" yaml:"particle_best,omitempty"`
	ParticleBestFitness []float64   `json:"particleBestFitness,omitempty" yaml:"particle_best_fitness,omitempty"`

	// Grey wolf only: alpha, beta and delta.
	Leaders []BestRecord `json:"leaders,omitempty" yaml:"leaders,omitempty"`
}

// BestFitness returns the last trajectory fitness.
func (r *Results) BestFitness() float64 {
	return r.Best[len(r.Best)-1].Fitness
}

// BestPosition returns the last trajectory position.
func (r *Results) BestPosition() []float64 {
	return r.Best[len(r.Best)-1].Position
}

func copyVec(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func copyMat(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	out := make([][]float64, len(m))
	for i := range m {
		out[i] = copyVec(m[i])
	}
	return out
}

func newMat(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}
