package main

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/swarmfit/internal/rng"
	"github.com/spf13/cobra"
)

var (
	randKind  string
	randMode  string
	randLow   float64
	randHigh  float64
	randSeed  int64
	randCount int
	randBase  int
	randPath  string
)

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Print values from a randomness source",
	Long: `Draws --count values from the selected source and prints one per line. Without
--seed, seedable sources are seeded from the operating system.`,
	RunE: runRandom,
}

func init() {
	randomCmd.Flags().StringVar(&randKind, "kind", string(rng.KindPCG64), "Source: pcg64, mt19937, minstd, chacha8, quasi, urandom, rdrand, file")
	randomCmd.Flags().StringVar(&randMode, "mode", string(rng.ModeFloat), "Output mode: float, int, byte, bit")
	randomCmd.Flags().Float64Var(&randLow, "low", 0, "Lower limit for float and int modes")
	randomCmd.Flags().Float64Var(&randHigh, "high", 1, "Upper limit for float and int modes")
	randomCmd.Flags().Int64Var(&randSeed, "seed", 0, "Seed (quasi: start index, negative for a random start)")
	randomCmd.Flags().IntVarP(&randCount, "count", "n", 10, "Number of values")
	randomCmd.Flags().IntVar(&randBase, "base", 2, "Prime base for the quasi source")
	randomCmd.Flags().StringVar(&randPath, "path", "", "Byte file replayed by the file source")

	rootCmd.AddCommand(randomCmd)
}

func runRandom(cmd *cobra.Command, args []string) error {
	if randCount < 0 {
		return fmt.Errorf("count must not be negative, got %d", randCount)
	}

	cfg := rng.Config{
		Kind: rng.Kind(randKind),
		Mode: rng.Mode(randMode),
		Low:  randLow,
		High: randHigh,
		Base: randBase,
		Path: randPath,
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = rng.Seed(randSeed)
	}

	src, err := rng.New(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	out := cmd.OutOrStdout()
	for _, v := range src.Random(randCount) {
		fmt.Fprintln(out, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return nil
}
