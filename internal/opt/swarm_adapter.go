package opt

import (
	"fmt"

	"github.com/cwbudde/swarmfit/internal/rng"
	"github.com/cwbudde/swarmfit/internal/swarm"
)

// SwarmAdapter runs one of the swarm engines, selected by name, as a
// one-shot Optimizer.
type SwarmAdapter struct {
	alg      string
	maxIters int
	popSize  int
	seed     int64
	params   map[string]any
	opts     []swarm.Option
}

// NewSwarm creates an adapter for the named engine. Extra options are
// passed to the engine after the bounds and seeded source.
func NewSwarm(alg string, maxIters, popSize int, seed int64, params map[string]any, opts ...swarm.Option) Optimizer {
	return &SwarmAdapter{
		alg:      alg,
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
		params:   params,
		opts:     opts,
	}
}

func (s *SwarmAdapter) Name() string { return s.alg }

// Run builds a fresh engine over [lower, upper] and optimizes eval.
func (s *SwarmAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64, error) {
	if err := checkBounds(lower, upper, dim); err != nil {
		return nil, 0, err
	}

	box, err := swarm.NewBox(lower, upper, swarm.Clip)
	if err != nil {
		return nil, 0, err
	}

	opts := append([]swarm.Option{
		swarm.WithBounds(box),
		swarm.WithRand(rng.NewSeeded(s.seed)),
	}, s.opts...)

	o, err := swarm.New(s.alg, swarm.ObjectiveFunc(eval), s.popSize, dim, s.maxIters, s.params, opts...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create %s optimizer: %w", s.alg, err)
	}

	cost, best, err := o.Optimize()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to run %s: %w", s.alg, err)
	}
	return best, cost, nil
}
