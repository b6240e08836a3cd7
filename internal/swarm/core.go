// Package swarm implements population-based stochastic optimizers that
// minimize a black-box objective over a bounded real search space.
//
// Every engine follows the same lifecycle: Initialize builds and evaluates
// the initial population, Step applies one population update, Done reports
// whether the stopping criterion has fired, and Results returns a snapshot
// including the append-only global-best trajectory.
package swarm

import (
	"log/slog"
	"math"

	"github.com/cwbudde/swarmfit/internal/rng"
	"gonum.org/v1/gonum/floats"
)

// Optimizer is implemented by every engine.
type Optimizer interface {
	// Initialize builds the initial population, evaluates it and seeds the
	// global-best trajectory. It must be called exactly once.
	Initialize() error
	// Step performs one full population update. If the objective fails the
	// error is returned and the population is left as it was.
	Step() error
	// Done reports whether the stopping criterion has fired. Once true it
	// stays true.
	Done() bool
	// Optimize runs Initialize and then Step until Done, returning the best
	// fitness and position found.
	Optimize() (float64, []float64, error)
	// Results returns a snapshot of the run, or nil before Initialize.
	Results() *Results
}

type settings struct {
	bounds Bounds
	init   Initializer
	stop   StoppingCriterion
	tol    *float64
	rand   Rand
	eval   Evaluator
}

// Option configures the strategies shared by every engine.
type Option func(*settings)

// WithBounds sets the feasible region. The default is Unbounded.
func WithBounds(b Bounds) Option {
	return func(s *settings) { s.bounds = b }
}

// WithInitializer sets the initial population strategy. The default is a
// RandomInitializer over the configured bounds.
func WithInitializer(i Initializer) Option {
	return func(s *settings) { s.init = i }
}

// WithStopping replaces the default max-iteration/tolerance criterion.
func WithStopping(c StoppingCriterion) Option {
	return func(s *settings) { s.stop = c }
}

// WithTolerance stops a run early once the best fitness drops below tol.
// It has no effect together with WithStopping.
func WithTolerance(tol float64) Option {
	return func(s *settings) { s.tol = &tol }
}

// WithRand sets the randomness source. The default is an unseeded pcg64
// rng.Source.
func WithRand(r Rand) Option {
	return func(s *settings) { s.rand = r }
}

// WithEvaluator sets the population evaluation strategy. The default is
// SerialEvaluator.
func WithEvaluator(e Evaluator) Option {
	return func(s *settings) { s.eval = e }
}

// core holds the state and lifecycle shared by all engines.
type core struct {
	name    string
	obj     *counted
	npart   int
	ndim    int
	maxIter int

	bounds Bounds
	init   Initializer
	stop   StoppingCriterion
	tol    *float64
	rand   Rand
	eval   Evaluator
	gauss  *Gaussian

	initialized bool
	done        bool
	iterations  int
	pos         [][]float64
	fit         []float64
	best        []BestRecord
}

func newCore(name string, obj Objective, npart, ndim, maxIter int, opts []Option) (core, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	switch {
	case obj == nil:
		return core{}, configErr("objective", "must not be nil")
	case npart < 1:
		return core{}, configErr("npart", "must be positive, got %d", npart)
	case ndim < 1:
		return core{}, configErr("ndim", "must be positive, got %d", ndim)
	case maxIter < 1:
		return core{}, configErr("maxIter", "must be positive, got %d", maxIter)
	}

	if s.rand == nil {
		s.rand = rng.MustNew(rng.Config{})
	}
	if s.bounds == nil {
		s.bounds = Unbounded{}
	}
	if lower, _, ok := s.bounds.Range(); ok && len(lower) != ndim {
		return core{}, configErr("bounds", "have %d dimensions, optimizer has %d", len(lower), ndim)
	}
	if s.init == nil {
		s.init = &RandomInitializer{Bounds: s.bounds}
	}
	if s.eval == nil {
		s.eval = SerialEvaluator{}
	}
	for _, strategy := range []any{s.bounds, s.init} {
		if b, ok := strategy.(randBinder); ok {
			b.bindRand(s.rand)
		}
	}

	return core{
		name:    name,
		obj:     &counted{Objective: obj},
		npart:   npart,
		ndim:    ndim,
		maxIter: maxIter,
		bounds:  s.bounds,
		init:    s.init,
		stop:    s.stop,
		tol:     s.tol,
		rand:    s.rand,
		eval:    s.eval,
		gauss:   NewGaussian(s.rand),
	}, nil
}

// Evaluate applies the objective to every row of pos. It is the only place
// the evaluation count grows.
func (c *core) Evaluate(pos [][]float64) ([]float64, error) {
	return c.eval.Evaluate(c.obj, pos)
}

// Evaluations returns the number of objective calls so far.
func (c *core) Evaluations() int {
	return int(c.obj.n.Load())
}

// Iterations returns the number of completed steps.
func (c *core) Iterations() int {
	return c.iterations
}

func (c *core) initialize() error {
	if c.initialized {
		return ErrAlreadyInitialized
	}

	pos := c.init.InitialSwarm(c.npart, c.ndim)
	if len(pos) != c.npart {
		return configErr("initializer", "returned %d particles, want %d", len(pos), c.npart)
	}
	for i := range pos {
		if len(pos[i]) != c.ndim {
			return configErr("initializer", "particle %d has %d dimensions, want %d", i, len(pos[i]), c.ndim)
		}
	}

	fit, err := c.Evaluate(pos)
	if err != nil {
		return err
	}

	c.pos = pos
	c.fit = fit
	c.iterations = 0
	c.done = false
	c.best = nil

	i := floats.MinIdx(fit)
	c.record(0, i, fit[i], pos[i])
	c.initialized = true

	slog.Debug("Swarm initialized",
		"algorithm", c.name,
		"npart", c.npart,
		"ndim", c.ndim,
		"best", fit[i],
	)
	return nil
}

// beginStep guards the state machine before a Step.
func (c *core) beginStep() error {
	if !c.initialized {
		return ErrNotInitialized
	}
	if c.Done() {
		return ErrDone
	}
	return nil
}

// Done latches once the stopping criterion fires.
func (c *core) Done() bool {
	if c.done {
		return true
	}
	if !c.initialized {
		return false
	}

	status := c.status()
	if c.stop != nil {
		c.done = c.stop.Done(status)
	} else {
		c.done = MaxIterOrTol{Tol: c.tol}.Done(status)
	}
	return c.done
}

func (c *core) status() Status {
	return Status{
		Iteration: c.iterations,
		MaxIter:   c.maxIter,
		Best:      c.best,
		Positions: c.pos,
		Fitness:   c.fit,
	}
}

func (c *core) bestFitness() float64 {
	if len(c.best) == 0 {
		return math.Inf(1)
	}
	return c.best[len(c.best)-1].Fitness
}

func (c *core) bestPosition() []float64 {
	return c.best[len(c.best)-1].Position
}

// record appends a trajectory entry.
func (c *core) record(iter, particle int, fitness float64, pos []float64) {
	c.best = append(c.best, BestRecord{
		Iteration: iter,
		Particle:  particle,
		Fitness:   fitness,
		Position:  copyVec(pos),
	})
	if len(c.best) > 1 {
		slog.Debug("New global best",
			"algorithm", c.name,
			"iteration", iter,
			"particle", particle,
			"fitness", fitness,
		)
	}
}

// improve appends to the trajectory when fitness strictly beats the
// current global best.
func (c *core) improve(particle int, fitness float64, pos []float64) bool {
	if fitness < c.bestFitness() {
		c.record(c.iterations, particle, fitness, pos)
		return true
	}
	return false
}

// bound applies the position bounds to a candidate population.
func (c *core) bound(pos [][]float64) [][]float64 {
	return c.bounds.Limits(pos)
}

func (c *core) results(params map[string]any) *Results {
	if !c.initialized {
		return nil
	}

	best := make([]BestRecord, len(c.best))
	for i, b := range c.best {
		best[i] = b
		best[i].Position = copyVec(b.Position)
	}

	var tol *float64
	if c.tol != nil {
		t := *c.tol
		tol = &t
	}

	return &Results{
		Algorithm:   c.name,
		NPart:       c.npart,
		NDim:        c.ndim,
		MaxIter:     c.maxIter,
		Iterations:  c.iterations,
		Tolerance:   tol,
		Params:      params,
		Best:        best,
		Positions:   copyMat(c.pos),
		Fitness:     copyVec(c.fit),
		Evaluations: c.Evaluations(),
	}
}

// run drives an engine from Initialize to Done.
func run(o Optimizer, c *core) (float64, []float64, error) {
	if err := o.Initialize(); err != nil {
		return math.Inf(1), nil, err
	}
	for !o.Done() {
		if err := o.Step(); err != nil {
			return c.bestFitness(), copyVec(c.bestPosition()), err
		}
	}

	slog.Info("Optimization complete",
		"algorithm", c.name,
		"iterations", c.iterations,
		"evaluations", c.Evaluations(),
		"best", c.bestFitness(),
		"improvements", len(c.best)-1,
	)
	return c.bestFitness(), copyVec(c.bestPosition()), nil
}

// uniforms returns n unit uniforms.
func (c *core) uniforms(n int) []float64 {
	u := make([]float64, n)
	for i := range u {
		u[i] = c.rand.Float64()
	}
	return u
}

// intn returns an integer in [0,n) from a single uniform draw.
func (c *core) intn(n int) int {
	k := int(float64(n) * c.rand.Float64())
	if k >= n {
		k = n - 1
	}
	return k
}
