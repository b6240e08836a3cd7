package main

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/swarmfit/internal/swarm"
	"github.com/spf13/cobra"
)

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List the available algorithms and their default parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDESCRIPTION\tDEFAULTS")
		for _, a := range swarm.Algorithms {
			fmt.Fprintf(w, "%s\t%s\t%s\n", a.Name, a.Description, formatDefaults(a.Defaults))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(algorithmsCmd)
}

func formatDefaults(m map[string]any) string {
	if len(m) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, m[k])
	}
	return strings.Join(parts, " ")
}
