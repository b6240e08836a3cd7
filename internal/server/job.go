package server

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cwbudde/swarmfit/internal/config"
	"github.com/google/uuid"
)

// JobState represents the current state of a job
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// Finished reports whether the state is terminal.
func (s JobState) Finished() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Job represents an optimization job
type Job struct {
	ID             string     `json:"id"`
	State          JobState   `json:"state"`
	Config         config.Run `json:"config"`
	BestPosition   []float64  `json:"bestPosition,omitempty"`
	BestFitness    float64    `json:"bestFitness"`
	InitialFitness float64    `json:"initialFitness"`
	Iterations     int        `json:"iterations"`
	Evaluations    int        `json:"evaluations"`
	StartTime      time.Time  `json:"startTime"`
	EndTime        *time.Time `json:"endTime,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// Elapsed returns the run time so far, or the total once the job ended.
func (j *Job) Elapsed() time.Duration {
	if j.EndTime != nil {
		return j.EndTime.Sub(j.StartTime)
	}
	return time.Since(j.StartTime)
}

func (j *Job) clone() *Job {
	c := *j
	c.BestPosition = slices.Clone(j.BestPosition)
	if j.EndTime != nil {
		end := *j.EndTime
		c.EndTime = &end
	}
	return &c
}

// JobManager manages the lifecycle of jobs
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	cancels     map[string]context.CancelFunc
	broadcaster *EventBroadcaster
}

// NewJobManager creates a new JobManager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:        make(map[string]*Job),
		cancels:     make(map[string]context.CancelFunc),
		broadcaster: NewEventBroadcaster(),
	}
}

// CreateJob creates a new job with the given configuration
func (jm *JobManager) CreateJob(cfg config.Run) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    cfg,
		StartTime: time.Now(),
	}

	jm.jobs[job.ID] = job
	return job.clone()
}

// GetJob returns a copy of the job with the given ID
func (jm *JobManager) GetJob(id string) (*Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	if !exists {
		return nil, false
	}
	return job.clone(), true
}

// ListJobs returns copies of all jobs, oldest first
func (jm *JobManager) ListJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]*Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, job.clone())
	}
	slices.SortFunc(jobs, func(a, b *Job) int {
		return a.StartTime.Compare(b.StartTime)
	})
	return jobs
}

// UpdateJob atomically updates a job using the provided function
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}

	updateFn(job)
	return nil
}

// GetRunningJobs returns all jobs currently in the running state
func (jm *JobManager) GetRunningJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	runningJobs := make([]*Job, 0)
	for _, job := range jm.jobs {
		if job.State == StateRunning {
			runningJobs = append(runningJobs, job.clone())
		}
	}
	return runningJobs
}

// setCancel registers the function that stops a started job.
func (jm *JobManager) setCancel(id string, cancel context.CancelFunc) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	jm.cancels[id] = cancel
}

// clearCancel forgets the cancel function of a finished job.
func (jm *JobManager) clearCancel(id string) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	delete(jm.cancels, id)
}

// CancelJob asks a pending or running job to stop. It returns false when the
// job does not exist or has already finished.
func (jm *JobManager) CancelJob(id string) bool {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists || job.State.Finished() {
		return false
	}
	if cancel, ok := jm.cancels[id]; ok {
		cancel()
	}
	return true
}

// CancelAll stops every job that is still active.
func (jm *JobManager) CancelAll() {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	for _, cancel := range jm.cancels {
		cancel()
	}
}
