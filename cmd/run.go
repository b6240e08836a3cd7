package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/cwbudde/swarmfit/internal/bench"
	"github.com/cwbudde/swarmfit/internal/config"
	"github.com/cwbudde/swarmfit/internal/engine"
	"github.com/cwbudde/swarmfit/internal/store"
	"github.com/cwbudde/swarmfit/internal/swarm"
	"github.com/spf13/cobra"
)

var (
	runConfigPath string
	runOutDir     string
	runFormat     string
	runParams     map[string]string
	runPatience   int
	runThreshold  float64
	runPositions  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Minimize a benchmark function with one engine",
	Long: `Runs a single optimization and prints the best fitness and position.
Settings come from --config, SWARMFIT_* environment variables and flags, in
increasing precedence. With --out the trajectory is streamed to
<out>/runs/<id>/trace.jsonl and a report is written next to it.`,
	RunE: runOptimization,
}

func init() {
	def := config.Default()
	f := runCmd.Flags()
	f.String("alg", def.Algorithm, fmt.Sprintf("Algorithm: %s", strings.Join(swarm.AlgorithmNames(), ", ")))
	f.String("func", def.Function, fmt.Sprintf("Benchmark function: %s", strings.Join(bench.Names(), ", ")))
	f.Int("ndim", def.NDim, "Number of dimensions")
	f.Int("npart", def.NPart, "Population size")
	f.Int("iters", def.Iters, "Max iterations")
	f.Int64("seed", def.Seed, "Random seed")
	f.Float64("tol", 0, "Stop once the best fitness drops below this value")
	f.String("bounds-mode", def.BoundsMode, "Out-of-bounds handling: clip, resample")
	f.String("rand", def.Rand, "Randomness source: pcg64, mt19937, minstd, chacha8, quasi, urandom, rdrand")
	f.Int("parallel", 0, "Evaluate particles on N goroutines (0 = serial)")

	f.StringVar(&runConfigPath, "config", "", "YAML run configuration")
	f.StringVar(&runOutDir, "out", "", "Data directory for the report and trace (nothing is written when empty)")
	f.StringVar(&runFormat, "format", "json", "Report format: json, yaml")
	f.StringToStringVar(&runParams, "param", nil, "Algorithm parameter, e.g. --param F=0.5 (repeatable)")
	f.IntVar(&runPatience, "patience", 0, "Stop after N iterations without significant improvement (0 = off)")
	f.Float64Var(&runThreshold, "threshold", 1e-6, "Relative improvement counted as significant by --patience")
	f.BoolVar(&runPositions, "trace-positions", false, "Include positions in the trace")

	rootCmd.AddCommand(runCmd)
}

func runOptimization(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runConfigPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if len(runParams) > 0 && cfg.Params == nil {
		cfg.Params = map[string]any{}
	}
	for k, v := range runParams {
		cfg.Params[strings.ToLower(k)] = v
	}

	var opts []swarm.Option
	if runPatience > 0 {
		if cfg.Tol != nil {
			slog.Warn("Tolerance is ignored when --patience is set")
		}
		opts = append(opts, swarm.WithStopping(swarm.NewStagnation(runPatience, runThreshold)))
	}

	r, err := engine.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	var (
		reports store.Store
		trace   *store.TraceWriter
		runID   string
	)
	if runOutDir != "" {
		format, err := store.ParseFormat(runFormat)
		if err != nil {
			return err
		}
		fs, err := store.NewFSStore(runOutDir, format)
		if err != nil {
			return fmt.Errorf("failed to create report store: %w", err)
		}
		reports = fs

		runID = store.NewRunID()
		trace, err = store.NewTraceWriter(runOutDir, runID, false)
		if err != nil {
			return err
		}
		defer trace.Close()
	}

	slog.Info("Starting optimization",
		"algorithm", cfg.Algorithm,
		"function", r.Func.Name(),
		"npart", cfg.NPart,
		"iters", cfg.Iters,
		"rand", r.Source.Kind(),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	written := 0
	start := time.Now()
	res, err := r.Drive(ctx, func(res *swarm.Results) error {
		if trace == nil {
			return nil
		}
		if err := trace.WriteRecords(res.Best[written:], runPositions); err != nil {
			return err
		}
		written = len(res.Best)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		slog.Warn("Interrupted, keeping the results so far")
	} else if err != nil {
		return fmt.Errorf("%s failed: %w", cfg.Algorithm, err)
	}
	elapsed := time.Since(start)

	slog.Info("Optimization complete",
		"elapsed", elapsed,
		"iterations", res.Iterations,
		"evaluations", res.Evaluations,
		"best", res.BestFitness(),
	)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s on %s: best %.6g at %v (%d iterations, %d evaluations, %s)\n",
		cfg.Algorithm, r.Func.Name(), res.BestFitness(), res.BestPosition(),
		res.Iterations, res.Evaluations, elapsed.Round(time.Millisecond))

	if reports != nil {
		if err := reports.SaveReport(store.NewReport(runID, cfg, res, elapsed)); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		fmt.Fprintf(out, "Wrote run %s to %s\n", runID, runOutDir)
	}
	return nil
}
