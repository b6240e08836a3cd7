package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/swarmfit/internal/engine"
	"github.com/cwbudde/swarmfit/internal/store"
	"github.com/cwbudde/swarmfit/internal/swarm"
)

// progressInterval throttles progress events to two per second.
const progressInterval = 500 * time.Millisecond

// runJob executes an optimization job in the background.
// If reports is not nil the final report is saved under the job ID.
func runJob(ctx context.Context, jm *JobManager, reports store.Store, jobID string) error {
	defer jm.clearCancel(jobID)

	// Get the job
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	// Check for cancellation before starting
	if err := ctx.Err(); err != nil {
		markJobCancelled(jm, jobID)
		return err
	}

	r, err := engine.New(job.Config)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}
	defer r.Close()

	// Update state to running
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
		j.StartTime = time.Now()
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job",
		"job_id", jobID,
		"algorithm", job.Config.Algorithm,
		"function", r.Func.Name(),
	)

	// Start progress monitoring goroutine
	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, progressDone)

	start := time.Now()
	res, err := r.Drive(ctx, func(res *swarm.Results) error {
		return jm.UpdateJob(jobID, func(j *Job) {
			if res.Iterations == 0 {
				j.InitialFitness = res.BestFitness()
			}
			j.BestFitness = res.BestFitness()
			j.BestPosition = res.BestPosition()
			j.Iterations = res.Iterations
			j.Evaluations = res.Evaluations
		})
	})
	close(progressDone)
	elapsed := time.Since(start)

	if errors.Is(err, context.Canceled) {
		markJobCancelled(jm, jobID)
		return err
	}
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	if reports != nil {
		report := store.NewReport(jobID, job.Config, res, elapsed)
		if err := reports.SaveReport(report); err != nil {
			err = fmt.Errorf("failed to save report: %w", err)
			markJobFailed(jm, jobID, err)
			return err
		}
	}

	// Update job with results
	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"iterations", res.Iterations,
		"evaluations", res.Evaluations,
		"best", res.BestFitness(),
	)

	broadcastState(jm, jobID)
	return nil
}

// monitorProgress periodically broadcasts progress events during optimization
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, done chan struct{}) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			broadcastState(jm, jobID)
		}
	}
}

// broadcastState sends the current state of a job to its subscribers.
func broadcastState(jm *JobManager, jobID string) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}
	jm.broadcaster.Broadcast(progressEvent(job))
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
	broadcastState(jm, jobID)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
	broadcastState(jm, jobID)
}
