// Package engine builds a configured optimizer over a benchmark function and
// drives it step by step on behalf of the CLI and the job server.
package engine

import (
	"context"
	"fmt"

	"github.com/cwbudde/swarmfit/internal/bench"
	"github.com/cwbudde/swarmfit/internal/config"
	"github.com/cwbudde/swarmfit/internal/rng"
	"github.com/cwbudde/swarmfit/internal/swarm"
)

// Run is an optimizer bound to its objective and randomness source.
type Run struct {
	Optimizer swarm.Optimizer
	Func      bench.Func
	Source    *rng.Source
}

// New validates cfg and builds the optimizer it describes. Extra options are
// applied after the ones derived from cfg, so they take precedence.
func New(cfg config.Run, opts ...swarm.Option) (*Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fn, err := bench.ByName(cfg.Function, cfg.NDim)
	if err != nil {
		return nil, err
	}
	low, up := fn.Bounds()
	box, err := swarm.NewBox(low, up, swarm.Enforce(cfg.BoundsMode))
	if err != nil {
		return nil, err
	}

	src, err := rng.New(rng.Config{Kind: rng.Kind(cfg.Rand), Seed: rng.Seed(cfg.Seed)})
	if err != nil {
		return nil, fmt.Errorf("failed to create randomness source: %w", err)
	}

	all := []swarm.Option{swarm.WithBounds(box), swarm.WithRand(src)}
	if cfg.Tol != nil {
		all = append(all, swarm.WithTolerance(*cfg.Tol))
	}
	if cfg.Parallel > 0 {
		all = append(all, swarm.WithEvaluator(swarm.ParallelEvaluator{Workers: cfg.Parallel}))
	}
	all = append(all, opts...)

	opt, err := swarm.New(cfg.Algorithm, swarm.ObjectiveFunc(fn.Eval), cfg.NPart, cfg.NDim, cfg.Iters, cfg.Params, all...)
	if err != nil {
		src.Close()
		return nil, err
	}

	return &Run{Optimizer: opt, Func: fn, Source: src}, nil
}

// Drive initializes the optimizer and steps it until it is done or ctx is
// cancelled. onStep, if not nil, receives a snapshot after Initialize and
// after every Step; an error from it aborts the run. On cancellation the
// snapshot so far is returned together with ctx.Err().
func (r *Run) Drive(ctx context.Context, onStep func(*swarm.Results) error) (*swarm.Results, error) {
	if err := r.Optimizer.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	if err := notify(r.Optimizer, onStep); err != nil {
		return nil, err
	}

	for !r.Optimizer.Done() {
		if err := ctx.Err(); err != nil {
			return r.Optimizer.Results(), err
		}
		if err := r.Optimizer.Step(); err != nil {
			return nil, fmt.Errorf("failed to step: %w", err)
		}
		if err := notify(r.Optimizer, onStep); err != nil {
			return nil, err
		}
	}
	return r.Optimizer.Results(), nil
}

func notify(opt swarm.Optimizer, onStep func(*swarm.Results) error) error {
	if onStep == nil {
		return nil
	}
	return onStep(opt.Results())
}

// Close releases the randomness source.
func (r *Run) Close() error {
	return r.Source.Close()
}
