package store

import (
	"fmt"
	"time"

	"github.com/cwbudde/swarmfit/internal/config"
	"github.com/cwbudde/swarmfit/internal/swarm"
	"github.com/google/uuid"
)

// Report is the persisted outcome of one optimization run. It records the
// configuration and final results snapshot, not resumable optimizer state.
type Report struct {
	// RunID is the unique identifier for this run
	RunID string `json:"runId" yaml:"run_id"`

	// Timestamp records when the run finished
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Elapsed is the wall-clock duration of the run
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`

	// Config is the configuration the run was started with
	Config config.Run `json:"config" yaml:"config"`

	// Results is the final snapshot of the optimizer
	Results *swarm.Results `json:"results" yaml:"results"`
}

// ReportInfo contains metadata about a run without the population data.
type ReportInfo struct {
	RunID       string    `json:"runId" yaml:"run_id"`
	Algorithm   string    `json:"algorithm" yaml:"algorithm"`
	Function    string    `json:"function" yaml:"function"`
	BestFitness float64   `json:"bestFitness" yaml:"best_fitness"`
	Iterations  int       `json:"iterations" yaml:"iterations"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// NewReport creates a report for a finished run.
func NewReport(runID string, cfg config.Run, results *swarm.Results, elapsed time.Duration) *Report {
	return &Report{
		RunID:     runID,
		Timestamp: time.Now(),
		Elapsed:   elapsed,
		Config:    cfg,
		Results:   results,
	}
}

// ToInfo converts a full Report to ReportInfo (metadata only).
func (r *Report) ToInfo() ReportInfo {
	info := ReportInfo{
		RunID:     r.RunID,
		Algorithm: r.Config.Algorithm,
		Function:  r.Config.Function,
		Timestamp: r.Timestamp,
	}
	if r.Results != nil && len(r.Results.Best) > 0 {
		info.BestFitness = r.Results.BestFitness()
		info.Iterations = r.Results.Iterations
	}
	return info
}

// Validate checks if the report has valid data.
func (r *Report) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if _, err := uuid.Parse(r.RunID); err != nil {
		return &ValidationError{Field: "RunID", Reason: "must be a UUID"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Results == nil {
		return &ValidationError{Field: "Results", Reason: "cannot be nil"}
	}
	if len(r.Results.Best) == 0 {
		return &ValidationError{Field: "Results.Best", Reason: "cannot be empty"}
	}
	for i := 1; i < len(r.Results.Best); i++ {
		if r.Results.Best[i].Fitness > r.Results.Best[i-1].Fitness {
			return &ValidationError{
				Field:  "Results.Best",
				Reason: fmt.Sprintf("fitness increases at record %d", i),
			}
		}
	}
	if r.Results.Iterations < 0 {
		return &ValidationError{Field: "Results.Iterations", Reason: "cannot be negative"}
	}
	return nil
}

// ValidationError represents a report validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
