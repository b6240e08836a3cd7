package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/swarmfit/internal/server"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := server.NewServer("", nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown(context.Background())
	})
	return ts
}

func TestStatusListJobs_Empty(t *testing.T) {
	ts := startTestServer(t)

	var out bytes.Buffer
	if err := listJobs(&out, ts.URL+"/api/v1/jobs"); err != nil {
		t.Fatalf("listJobs failed: %v", err)
	}
	if !strings.Contains(out.String(), "No jobs found") {
		t.Errorf("Unexpected output: %q", out.String())
	}
}

func TestStatusJobLifecycle(t *testing.T) {
	ts := startTestServer(t)

	resp, err := http.Post(ts.URL+"/api/v1/jobs", "application/json",
		strings.NewReader(`{"algorithm": "micro", "iters": 25, "npart": 8}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}
	var job struct{ ID string }
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		t.Fatalf("Failed to decode job: %v", err)
	}

	statusURL := ts.URL + "/api/v1/jobs/" + job.ID + "/status"
	var out bytes.Buffer
	deadline := time.Now().Add(5 * time.Second)
	for {
		out.Reset()
		if err := getJobStatus(&out, statusURL, job.ID); err != nil {
			t.Fatalf("getJobStatus failed: %v", err)
		}
		if strings.Contains(out.String(), "State: completed") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Job did not complete:\n%s", out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}

	for _, want := range []string{"Algorithm: micro", "Iterations: 25", "Best Fitness:"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in status:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := listJobs(&out, ts.URL+"/api/v1/jobs"); err != nil {
		t.Fatalf("listJobs failed: %v", err)
	}
	if !strings.Contains(out.String(), job.ID) || !strings.Contains(out.String(), "25/25") {
		t.Errorf("Unexpected job list:\n%s", out.String())
	}
}

func TestStatusJobNotFound(t *testing.T) {
	ts := startTestServer(t)

	var out bytes.Buffer
	err := getJobStatus(&out, ts.URL+"/api/v1/jobs/missing/status", "missing")
	if err == nil || !strings.Contains(err.Error(), "job not found") {
		t.Errorf("Expected job not found error, got %v", err)
	}
}
