package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Format selects the report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatYAML:
		return Format(s), nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown report format %q, want json or yaml", s)
}

// FSStore implements the Store interface using filesystem-based persistence.
// Runs are stored in a directory structure: <baseDir>/runs/<runID>/
//
// Thread-safety: This implementation uses atomic file operations (rename)
// and does not require locks. Multiple goroutines can safely call methods
// concurrently.
type FSStore struct {
	baseDir string // Root directory for all run data (e.g., "./data")
	format  Format // Encoding of newly saved reports
}

// NewFSStore creates a new filesystem-based store writing reports in the
// given format. The baseDir will be created if it doesn't exist.
func NewFSStore(baseDir string, format Format) (*FSStore, error) {
	if format == "" {
		format = FormatJSON
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}

	// Ensure base directory exists
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FSStore{
		baseDir: baseDir,
		format:  format,
	}, nil
}

// runDir returns the directory path for a given run ID.
func (fs *FSStore) runDir(runID string) string {
	return runDir(fs.baseDir, runID)
}

func runDir(baseDir, runID string) string {
	return filepath.Join(baseDir, "runs", runID)
}

// reportPath returns the path to the report file of a run in format f.
func (fs *FSStore) reportPath(runID string, f Format) string {
	return filepath.Join(fs.runDir(runID), "report."+string(f))
}

// SaveReport atomically saves a report.
// Uses temp file + rename pattern to ensure atomicity.
func (fs *FSStore) SaveReport(report *Report) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if err := report.Validate(); err != nil {
		return err
	}

	// Ensure run directory exists
	runDir := fs.runDir(report.RunID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	var data []byte
	var err error
	switch fs.format {
	case FormatYAML:
		data, err = yaml.Marshal(report)
	default:
		data, err = json.MarshalIndent(report, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	// Write to temporary file first (atomic pattern)
	finalPath := fs.reportPath(report.RunID, fs.format)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp report file: %w", err)
	}

	// Atomic rename to final location
	if err := os.Rename(tempPath, finalPath); err != nil {
		// Clean up temp file on failure
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename report file: %w", err)
	}

	slog.Debug("Report saved", "runID", report.RunID, "path", finalPath)
	return nil
}

// LoadReport retrieves the report for the given run, in whichever format it
// was saved.
func (fs *FSStore) LoadReport(runID string) (*Report, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}

	for _, f := range []Format{FormatJSON, FormatYAML} {
		path := fs.reportPath(runID, f)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read report file: %w", err)
		}

		var report Report
		if f == FormatYAML {
			err = yaml.Unmarshal(data, &report)
		} else {
			err = json.Unmarshal(data, &report)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize report: %w", err)
		}

		slog.Debug("Report loaded", "runID", runID, "path", path)
		return &report, nil
	}
	return nil, &NotFoundError{RunID: runID}
}

// ListReports returns metadata for all stored runs.
func (fs *FSStore) ListReports() ([]ReportInfo, error) {
	runsDir := filepath.Join(fs.baseDir, "runs")

	// Check if runs directory exists
	if _, err := os.Stat(runsDir); os.IsNotExist(err) {
		// No runs exist yet, return empty slice
		return []ReportInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat runs directory: %w", err)
	}

	entries, err := os.ReadDir(runsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	infos := []ReportInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue // Skip non-directory entries
		}

		report, err := fs.LoadReport(entry.Name())
		if errors.Is(err, ErrNotFound) {
			continue // Trace without a report, e.g. an interrupted run
		}
		if err != nil {
			slog.Warn("Failed to load report for listing", "runID", entry.Name(), "error", err)
			continue // Skip corrupted reports
		}

		infos = append(infos, report.ToInfo())
	}

	slog.Debug("Listed reports", "count", len(infos))
	return infos, nil
}

// DeleteRun removes the run directory with its report and trace.
func (fs *FSStore) DeleteRun(runID string) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}

	runDir := fs.runDir(runID)

	// Check if run directory exists
	if _, err := os.Stat(runDir); os.IsNotExist(err) {
		return &NotFoundError{RunID: runID}
	} else if err != nil {
		return fmt.Errorf("failed to stat run directory: %w", err)
	}

	if err := os.RemoveAll(runDir); err != nil {
		return fmt.Errorf("failed to remove run directory: %w", err)
	}

	slog.Debug("Run deleted", "runID", runID, "path", runDir)
	return nil
}
