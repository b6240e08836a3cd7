package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/swarmfit/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	runsDataDir   string
	runsFormat    string
	keepLast      int
	olderThanDays int
	forceClean    bool
	traceOnly     bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage saved run reports",
	Long: `Manage the reports and traces written by "swarmfit run --out".
Reports record the configuration and final results of a run; they cannot be
resumed.`,
}

var listRunsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved runs",
	Long:  `Display all runs with metadata including run ID, timestamp, algorithm, function, best fitness, and size on disk.`,
	RunE:  runListRuns,
}

var showRunCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the report of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

var deleteRunCmd = &cobra.Command{
	Use:   "delete <run-id>...",
	Short: "Delete runs with their traces",
	Long: `Delete runs with their traces. With --trace-only the report is kept and
only the best-fitness trace is removed.`,
	Args: cobra.MinimumNArgs(1),
	RunE:  runDeleteRuns,
}

var cleanRunsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old runs",
	Long: `Delete old runs based on retention policy.
You can specify how many runs to keep or delete runs older than N days.`,
	RunE: runCleanRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.AddCommand(listRunsCmd)
	runsCmd.AddCommand(showRunCmd)
	runsCmd.AddCommand(deleteRunCmd)
	runsCmd.AddCommand(cleanRunsCmd)

	runsCmd.PersistentFlags().StringVar(&runsDataDir, "data-dir", "./data", "Base directory of saved runs")

	showRunCmd.Flags().StringVar(&runsFormat, "format", "yaml", "Output format: json, yaml")

	deleteRunCmd.Flags().BoolVar(&traceOnly, "trace-only", false, "Remove only the trace and keep the report")

	cleanRunsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the last N runs (0 = keep all)")
	cleanRunsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete runs older than N days (0 = no age limit)")
	cleanRunsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func openRunStore() (*store.FSStore, error) {
	s, err := store.NewFSStore(runsDataDir, store.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to create report store: %w", err)
	}
	return s, nil
}

func runListRuns(cmd *cobra.Command, args []string) error {
	reports, err := openRunStore()
	if err != nil {
		return err
	}

	infos, err := reports.ListReports()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No runs found.")
		return nil
	}

	slices.SortFunc(infos, func(a, b store.ReportInfo) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tTIMESTAMP\tALGORITHM\tFUNCTION\tITERATIONS\tBEST\tSIZE")
	fmt.Fprintln(w, "------\t---------\t---------\t--------\t----------\t----\t----")

	for _, info := range infos {
		runDir := filepath.Join(runsDataDir, "runs", info.RunID)
		size, err := getDirSize(runDir)
		sizeStr := "unknown"
		if err == nil {
			sizeStr = formatBytes(size)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.6g\t%s\n",
			info.RunID,
			info.Timestamp.Format("2006-01-02 15:04:05"),
			info.Algorithm,
			info.Function,
			info.Iterations,
			info.BestFitness,
			sizeStr,
		)
	}

	w.Flush()

	fmt.Fprintf(out, "\nTotal runs: %d\n", len(infos))
	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	reports, err := openRunStore()
	if err != nil {
		return err
	}

	report, err := reports.LoadReport(args[0])
	if err != nil {
		return err
	}

	var data []byte
	switch runsFormat {
	case "json":
		data, err = json.MarshalIndent(report, "", "  ")
		data = append(data, '\n')
	case "yaml", "yml":
		data, err = yaml.Marshal(report)
	default:
		return fmt.Errorf("unknown output format %q, want json or yaml", runsFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runDeleteRuns(cmd *cobra.Command, args []string) error {
	reports, err := openRunStore()
	if err != nil {
		return err
	}

	for _, runID := range args {
		if traceOnly {
			if _, err := reports.LoadReport(runID); err != nil {
				return fmt.Errorf("failed to delete trace of %s: %w", runID, err)
			}
			if err := store.DeleteTrace(runsDataDir, runID); err != nil {
				return err
			}
			slog.Info("Deleted trace", "run_id", runID)
			continue
		}
		if err := reports.DeleteRun(runID); err != nil {
			return fmt.Errorf("failed to delete run %s: %w", runID, err)
		}
		slog.Info("Deleted run", "run_id", runID)
	}
	return nil
}

func runCleanRuns(cmd *cobra.Command, args []string) error {
	// Validate flags
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	reports, err := openRunStore()
	if err != nil {
		return err
	}

	infos, err := reports.ListReports()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No runs to clean.")
		return nil
	}

	toDelete := selectRunsForDeletion(infos, keepLast, olderThanDays, time.Now())

	if len(toDelete) == 0 {
		fmt.Fprintln(out, "No runs match deletion criteria.")
		return nil
	}

	// Show what will be deleted
	fmt.Fprintf(out, "Found %d run(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Fprintf(out, "  - %s (%s on %s, %s)\n",
			info.RunID,
			info.Algorithm,
			info.Function,
			info.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	// Ask for confirmation unless --force is set
	if !forceClean {
		fmt.Fprint(out, "\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Fscanln(cmd.InOrStdin(), &response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, info := range toDelete {
		if err := reports.DeleteRun(info.RunID); err != nil {
			slog.Error("Failed to delete run", "run_id", info.RunID, "error", err)
			failed++
		} else {
			slog.Info("Deleted run", "run_id", info.RunID)
			deleted++
		}
	}

	fmt.Fprintf(out, "\nDeleted %d run(s), %d failed.\n", deleted, failed)
	return nil
}

// selectRunsForDeletion returns the runs older than olderThanDays together
// with the oldest runs beyond the newest keepLast, each at most once.
func selectRunsForDeletion(infos []store.ReportInfo, keepLast int, olderThanDays int, now time.Time) []store.ReportInfo {
	var toDelete []store.ReportInfo
	selected := make(map[string]bool)

	if olderThanDays > 0 {
		cutoff := now.AddDate(0, 0, -olderThanDays)
		for _, info := range infos {
			if info.Timestamp.Before(cutoff) {
				toDelete = append(toDelete, info)
				selected[info.RunID] = true
			}
		}
	}

	if keepLast > 0 && len(infos) > keepLast {
		sorted := slices.Clone(infos)
		slices.SortStableFunc(sorted, func(a, b store.ReportInfo) int {
			return a.Timestamp.Compare(b.Timestamp)
		})

		for _, info := range sorted[:len(sorted)-keepLast] {
			if !selected[info.RunID] {
				toDelete = append(toDelete, info)
				selected[info.RunID] = true
			}
		}
	}

	return toDelete
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
