package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/cwbudde/swarmfit/internal/bench"
	"github.com/cwbudde/swarmfit/internal/opt"
	"github.com/cwbudde/swarmfit/internal/swarm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	benchAlgs    []string
	benchFunc    string
	benchNDim    int
	benchTrials  int
	benchNPart   int
	benchIters   int
	benchSeed    int64
	benchTol     float64
	benchWorkers int
	benchMayfly  bool
	benchOutput  string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Compare algorithms over repeated seeded trials",
	Long: `Runs every selected algorithm --trials times on one benchmark function,
concurrently, and prints the mean, spread and best cost per algorithm. Trial
k uses seed --seed+k for every algorithm.`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().StringSliceVar(&benchAlgs, "algs", []string{"pso", "de", "ga", "jaya", "gwo"}, "Algorithms to compare")
	benchCmd.Flags().StringVar(&benchFunc, "func", "ackley", "Benchmark function")
	benchCmd.Flags().IntVar(&benchNDim, "ndim", 2, "Number of dimensions")
	benchCmd.Flags().IntVar(&benchTrials, "trials", 10, "Trials per algorithm")
	benchCmd.Flags().IntVar(&benchNPart, "npart", 20, "Population size")
	benchCmd.Flags().IntVar(&benchIters, "iters", 100, "Max iterations")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 1, "Seed of the first trial")
	benchCmd.Flags().Float64Var(&benchTol, "tol", 0.01, "Relative distance to the optimum counted as a success")
	benchCmd.Flags().IntVar(&benchWorkers, "workers", 0, "Concurrent trials (0 = GOMAXPROCS)")
	benchCmd.Flags().BoolVar(&benchMayfly, "mayfly", false, "Add the mayfly optimizer as a baseline")
	benchCmd.Flags().StringVar(&benchOutput, "output", "table", "Output format: table, json, yaml")

	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	fn, err := bench.ByName(benchFunc, benchNDim)
	if err != nil {
		return err
	}

	entries, err := benchEntries(benchAlgs, benchMayfly, benchIters, benchNPart)
	if err != nil {
		return err
	}

	slog.Info("Starting benchmark", "function", fn.Name(), "entries", len(entries), "trials", benchTrials)

	sums, err := bench.Compare(fn, entries, bench.Options{
		Trials:  benchTrials,
		Seed:    benchSeed,
		Tol:     benchTol,
		Workers: benchWorkers,
	})
	if err != nil {
		return fmt.Errorf("failed to run benchmark: %w", err)
	}

	return writeSummaries(cmd.OutOrStdout(), fn, sums, benchOutput)
}

func benchEntries(algs []string, mayfly bool, iters, npart int) ([]bench.Entry, error) {
	var entries []bench.Entry
	for _, alg := range algs {
		if !swarm.Known(alg) {
			return nil, fmt.Errorf("unknown algorithm %q, want one of %v", alg, swarm.AlgorithmNames())
		}
		entries = append(entries, bench.Entry{
			Name: alg,
			New: func(seed int64) opt.Optimizer {
				return opt.NewSwarm(alg, iters, npart, seed, nil)
			},
		})
	}
	if mayfly {
		entries = append(entries, bench.Entry{
			Name: "mayfly",
			New: func(seed int64) opt.Optimizer {
				return opt.NewMayfly(iters, npart, seed)
			},
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no algorithms selected")
	}
	return entries, nil
}

func writeSummaries(w io.Writer, fn bench.Func, sums []bench.Summary, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(sums, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize summaries: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(sums)
		if err != nil {
			return fmt.Errorf("failed to serialize summaries: %w", err)
		}
		fmt.Fprint(w, string(data))
		return nil
	case "table":
	default:
		return fmt.Errorf("unknown output format %q, want table, json or yaml", format)
	}

	fmt.Fprintf(w, "%s, optimum %.6g\n\n", fn.Name(), fn.Optima()[0].Value)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ALGORITHM\tMEAN\tSTDDEV\tBEST\tWORST\tSUCCESS")
	fmt.Fprintln(tw, "---------\t----\t------\t----\t-----\t-------")
	for _, s := range sums {
		fmt.Fprintf(tw, "%s\t%.6g\t%.3g\t%.6g\t%.6g\t%d/%d\n",
			s.Algorithm, s.Mean, s.StdDev, s.Best, s.Worst, s.Successes, s.Trials)
	}
	return tw.Flush()
}
