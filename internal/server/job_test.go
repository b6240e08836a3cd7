package server

import (
	"context"
	"testing"
	"time"

	"github.com/cwbudde/swarmfit/internal/config"
)

func testConfig(alg string) config.Run {
	cfg := config.Default()
	cfg.Algorithm = alg
	cfg.Iters = 20
	cfg.NPart = 10
	return cfg
}

func TestJobManager_CreateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testConfig("de"))

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}

	if job.State != StatePending {
		t.Errorf("Initial state should be pending, got %s", job.State)
	}

	if job.Config.Algorithm != "de" {
		t.Errorf("Config not set correctly")
	}
}

func TestJobManager_GetJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testConfig("pso"))

	retrieved, exists := jm.GetJob(job.ID)
	if !exists {
		t.Error("Job should exist")
	}

	if retrieved.ID != job.ID {
		t.Error("Retrieved wrong job")
	}

	_, exists = jm.GetJob("nonexistent")
	if exists {
		t.Error("Should not find nonexistent job")
	}
}

func TestJobManager_GetJobReturnsCopy(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testConfig("pso"))
	jm.UpdateJob(job.ID, func(j *Job) { j.BestPosition = []float64{1, 2} })

	copy1, _ := jm.GetJob(job.ID)
	copy1.BestPosition[0] = 99
	copy1.State = StateFailed

	copy2, _ := jm.GetJob(job.ID)
	if copy2.BestPosition[0] != 1 || copy2.State != StatePending {
		t.Errorf("Stored job was modified through a copy: %+v", copy2)
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	jm := NewJobManager()

	if len(jm.ListJobs()) != 0 {
		t.Error("Should start with no jobs")
	}

	first := jm.CreateJob(testConfig("pso"))
	time.Sleep(time.Millisecond)
	jm.CreateJob(testConfig("de"))

	jobs := jm.ListJobs()
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != first.ID {
		t.Error("Jobs should be listed oldest first")
	}
}

func TestJobManager_UpdateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testConfig("pso"))

	err := jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.Iterations = 10
		j.BestFitness = 123.45
	})

	if err != nil {
		t.Errorf("Update should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateRunning {
		t.Error("State should be updated")
	}
	if updated.Iterations != 10 {
		t.Error("Iterations should be updated")
	}
	if updated.BestFitness != 123.45 {
		t.Error("BestFitness should be updated")
	}

	if running := jm.GetRunningJobs(); len(running) != 1 || running[0].ID != job.ID {
		t.Errorf("Expected one running job, got %d", len(running))
	}

	err = jm.UpdateJob("nonexistent", func(j *Job) {})
	if err == nil {
		t.Error("Update of nonexistent job should fail")
	}
}

func TestJobManager_CancelJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testConfig("pso"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	jm.setCancel(job.ID, cancel)

	if !jm.CancelJob(job.ID) {
		t.Fatal("Pending job should be cancellable")
	}
	if ctx.Err() == nil {
		t.Error("Cancel function was not called")
	}

	jm.UpdateJob(job.ID, func(j *Job) { j.State = StateCompleted })
	if jm.CancelJob(job.ID) {
		t.Error("Finished job should not be cancellable")
	}
	if jm.CancelJob("nonexistent") {
		t.Error("Nonexistent job should not be cancellable")
	}
}

func TestJobState_Finished(t *testing.T) {
	for _, s := range []JobState{StateCompleted, StateFailed, StateCancelled} {
		if !s.Finished() {
			t.Errorf("%s should be finished", s)
		}
	}
	for _, s := range []JobState{StatePending, StateRunning} {
		if s.Finished() {
			t.Errorf("%s should not be finished", s)
		}
	}
}

func TestJobManager_ThreadSafety(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testConfig("pso"))

	// Simulate concurrent updates
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(iteration int) {
			jm.UpdateJob(job.ID, func(j *Job) {
				j.Iterations = iteration
				time.Sleep(1 * time.Millisecond)
			})
			jm.GetJob(job.ID)
			done <- true
		}(i)
	}

	// Wait for all updates
	for i := 0; i < 10; i++ {
		<-done
	}

	// Should not crash - actual value depends on race
	_, exists := jm.GetJob(job.ID)
	if !exists {
		t.Error("Job should still exist after concurrent updates")
	}
}
