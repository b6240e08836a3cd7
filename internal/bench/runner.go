package bench

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"github.com/cwbudde/swarmfit/internal/opt"
	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Entry is one contender in a comparison. New returns a fresh optimizer
// seeded for a single trial.
type Entry struct {
	Name string
	New  func(seed int64) opt.Optimizer
}

// Summary aggregates the trials of one entry.
type Summary struct {
	Algorithm    string    `json:"algorithm" yaml:"algorithm"`
	Trials       int       `json:"trials" yaml:"trials"`
	Mean         float64   `json:"mean" yaml:"mean"`
	StdDev       float64   `json:"stddev" yaml:"stddev"`
	Best         float64   `json:"best" yaml:"best"`
	Worst        float64   `json:"worst" yaml:"worst"`
	BestPosition []float64 `json:"bestPosition" yaml:"best_position"`
	// Successes counts trials within Tol of the known optimum.
	Successes int `json:"successes" yaml:"successes"`
}

// Options controls Compare.
type Options struct {
	Trials int
	// Seed of the first trial; trial k uses Seed+k for every entry.
	Seed int64
	// Tol is the relative success threshold, floored at 0.001 absolute.
	Tol float64
	// Workers bounds the number of concurrent trials (GOMAXPROCS when zero).
	Workers int
}

type trial struct {
	cost float64
	best []float64
}

// Compare runs every entry Trials times on fn concurrently and summarizes
// the final costs per entry, in entry order.
func Compare(fn Func, entries []Entry, o Options) ([]Summary, error) {
	if o.Trials < 1 {
		return nil, fmt.Errorf("trials must be positive, got %d", o.Trials)
	}
	workers := o.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	low, up := fn.Bounds()
	dim := len(low)

	results := make([][]trial, len(entries))
	for i := range results {
		results[i] = make([]trial, o.Trials)
	}

	p := pool.New().WithErrors().WithMaxGoroutines(workers)
	for i, e := range entries {
		for k := 0; k < o.Trials; k++ {
			p.Go(func() error {
				best, cost, err := e.New(o.Seed+int64(k)).Run(fn.Eval, low, up, dim)
				if err != nil {
					return fmt.Errorf("%s trial %d: %w", e.Name, k, err)
				}
				results[i][k] = trial{cost: cost, best: best}
				return nil
			})
		}
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	optimum := fn.Optima()[0].Value
	thresh := math.Max(o.Tol*abs(optimum), 0.001)

	out := make([]Summary, len(entries))
	for i, e := range entries {
		costs := make([]float64, o.Trials)
		s := Summary{Algorithm: e.Name, Trials: o.Trials}
		for k, t := range results[i] {
			costs[k] = t.cost
			if abs(t.cost-optimum) < thresh {
				s.Successes++
			}
		}
		s.Mean, s.StdDev = stat.MeanStdDev(costs, nil)
		if o.Trials == 1 {
			s.StdDev = 0
		}
		bi := floats.MinIdx(costs)
		s.Best = costs[bi]
		s.BestPosition = results[i][bi].best
		s.Worst = floats.Max(costs)
		out[i] = s

		slog.Debug("Benchmark summary",
			"function", fn.Name(),
			"algorithm", e.Name,
			"mean", s.Mean,
			"best", s.Best,
			"successes", s.Successes,
		)
	}
	return out, nil
}
