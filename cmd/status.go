package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/swarmfit/internal/config"
	"github.com/spf13/cobra"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server status or specific job",
	Long: `Queries the server for job status information.
If no job-id is provided, lists all jobs.
If job-id is provided, shows detailed status for that job.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

// jobStatus mirrors the job status document served by the job server.
type jobStatus struct {
	ID             string     `json:"id"`
	State          string     `json:"state"`
	Config         config.Run `json:"config"`
	BestFitness    float64    `json:"bestFitness"`
	BestPosition   []float64  `json:"bestPosition"`
	InitialFitness float64    `json:"initialFitness"`
	Iterations     int        `json:"iterations"`
	Evaluations    int        `json:"evaluations"`
	Elapsed        float64    `json:"elapsed"`
	EPS            float64    `json:"eps"`
	Error          string     `json:"error"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		// List all jobs
		return listJobs(out, fmt.Sprintf("%s/api/v1/jobs", serverURL))
	}

	// Get specific job status
	jobID := args[0]
	return getJobStatus(out, fmt.Sprintf("%s/api/v1/jobs/%s/status", serverURL, jobID), jobID)
}

// getJSON fetches url and decodes the response into v.
func getJSON(url string, v any) (int, error) {
	resp, err := http.Get(url)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("server returned error: %s", string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func listJobs(out io.Writer, url string) error {
	var jobs []jobStatus
	if _, err := getJSON(url, &jobs); err != nil {
		return err
	}

	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOB ID\tSTATE\tALGORITHM\tFUNCTION\tITERATIONS\tBEST")
	for _, job := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%.6g\n",
			job.ID, job.State, job.Config.Algorithm, job.Config.Function,
			job.Iterations, job.Config.Iters, job.BestFitness)
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d job(s)\n", len(jobs))
	return nil
}

func getJobStatus(out io.Writer, url, jobID string) error {
	var status jobStatus
	code, err := getJSON(url, &status)
	if code == http.StatusNotFound {
		return fmt.Errorf("job not found: %s", jobID)
	}
	if err != nil {
		return err
	}

	// Display status
	fmt.Fprintf(out, "Job: %s\n", status.ID)
	fmt.Fprintf(out, "State: %s\n", status.State)
	fmt.Fprintln(out)

	cfg := status.Config
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "  Algorithm: %s\n", cfg.Algorithm)
	fmt.Fprintf(out, "  Function: %s (%d dimensions)\n", cfg.Function, cfg.NDim)
	fmt.Fprintf(out, "  Iterations: %d\n", cfg.Iters)
	fmt.Fprintf(out, "  Population: %d\n", cfg.NPart)
	fmt.Fprintf(out, "  Seed: %d\n", cfg.Seed)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Progress:")
	fmt.Fprintf(out, "  Iterations: %d\n", status.Iterations)
	fmt.Fprintf(out, "  Evaluations: %d\n", status.Evaluations)
	if status.Iterations > 0 || status.State == "completed" {
		fmt.Fprintf(out, "  Initial Fitness: %.6g\n", status.InitialFitness)
		fmt.Fprintf(out, "  Best Fitness: %.6g\n", status.BestFitness)
		fmt.Fprintf(out, "  Best Position: %v\n", status.BestPosition)
	}

	elapsed := time.Duration(status.Elapsed * float64(time.Second))
	fmt.Fprintf(out, "  Elapsed: %s\n", elapsed.Round(time.Millisecond))

	if status.EPS > 0 {
		fmt.Fprintf(out, "  Throughput: %.0f evaluations/sec\n", status.EPS)
	}

	if status.Error != "" {
		fmt.Fprintf(out, "\nError: %s\n", status.Error)
	}

	return nil
}
