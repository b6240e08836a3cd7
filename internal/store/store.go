package store

// Store defines the interface for run report persistence.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if the run doesn't exist (for Load/Delete)
//   - Return descriptive errors for I/O, serialization, or validation failures
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveReport atomically saves the report of a finished run.
	// An existing report for the same run is overwritten.
	SaveReport(report *Report) error

	// LoadReport retrieves the report for the given run.
	// Returns ErrNotFound if no report exists for this runID.
	LoadReport(runID string) (*Report, error)

	// ListReports returns metadata for all stored runs.
	// The returned slice may be empty if no runs exist.
	ListReports() ([]ReportInfo, error)

	// DeleteRun removes the report and the trace of the given run.
	// Returns ErrNotFound if the run doesn't exist.
	DeleteRun(runID string) error
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run error.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run not found: " + e.RunID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
