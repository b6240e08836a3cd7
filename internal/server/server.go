package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cwbudde/swarmfit/internal/store"
	"github.com/cwbudde/swarmfit/internal/swarm"
)

// Server represents the HTTP server
type Server struct {
	jobManager *JobManager
	reports    store.Store
	addr       string
	server     *http.Server

	// jobs run under ctx so Shutdown can stop them
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new HTTP server. Reports of completed jobs are saved to
// reports when it is not nil.
func NewServer(addr string, reports store.Store) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		jobManager: NewJobManager(),
		reports:    reports,
		addr:       addr,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Handler returns the routes of the server wrapped in its middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Register API routes
	mux.HandleFunc("/api/v1/algorithms", s.handleAlgorithms)
	mux.HandleFunc("/api/v1/jobs", s.handleJobs)
	mux.HandleFunc("/api/v1/jobs/", s.handleJobsWithID)

	// Wrap with middleware
	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown cancels running jobs and gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	if running := s.jobManager.GetRunningJobs(); len(running) > 0 {
		slog.Info("Cancelling running jobs", "count", len(running))
	}
	s.jobManager.CancelAll()
	s.cancel()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleAlgorithms handles GET /api/v1/algorithms
func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, swarm.Algorithms)
}

// handleJobs handles /api/v1/jobs
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateJob(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJobsWithID handles /api/v1/jobs/:id/*
func (s *Server) handleJobsWithID(w http.ResponseWriter, r *http.Request) {
	// Parse job ID from path
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	// Route based on subpath
	switch {
	case len(parts) == 1 || parts[1] == "status":
		s.handleGetJobStatus(w, r, jobID)
	case parts[1] == "stream":
		s.handleJobStream(w, r, jobID)
	case parts[1] == "cancel" && r.Method == http.MethodPost:
		s.handleCancelJob(w, r, jobID)
	case parts[1] == "report":
		s.handleGetReport(w, r, jobID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateJob handles POST /api/v1/jobs
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	cfg, err := decodeRunConfig(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Create job
	job := s.jobManager.CreateJob(cfg)

	// Start worker in background
	ctx, cancel := context.WithCancel(s.ctx)
	s.jobManager.setCancel(job.ID, cancel)
	go func() {
		defer cancel()
		runJob(ctx, s.jobManager, s.reports, job.ID)
	}()

	writeJSON(w, http.StatusCreated, job)
}

// handleListJobs handles GET /api/v1/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.jobManager.ListJobs())
}

// handleGetJobStatus handles GET /api/v1/jobs/:id/status
func (s *Server) handleGetJobStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	event := progressEvent(job)
	response := map[string]interface{}{
		"id":             job.ID,
		"state":          job.State,
		"config":         job.Config,
		"bestFitness":    job.BestFitness,
		"bestPosition":   job.BestPosition,
		"initialFitness": job.InitialFitness,
		"iterations":     job.Iterations,
		"evaluations":    job.Evaluations,
		"elapsed":        job.Elapsed().Seconds(),
		"eps":            event.EPS,
		"startTime":      job.StartTime,
		"endTime":        job.EndTime,
		"error":          job.Error,
	}

	writeJSON(w, http.StatusOK, response)
}

// handleCancelJob handles POST /api/v1/jobs/:id/cancel
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if _, exists := s.jobManager.GetJob(jobID); !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	if !s.jobManager.CancelJob(jobID) {
		http.Error(w, "Job already finished", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleGetReport handles GET /api/v1/jobs/:id/report
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request, jobID string) {
	if s.reports == nil {
		http.Error(w, "Reports are not stored", http.StatusNotFound)
		return
	}

	report, err := s.reports.LoadReport(jobID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
