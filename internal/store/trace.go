package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cwbudde/swarmfit/internal/swarm"
)

const traceFile = "trace.jsonl"

// TraceEntry is one improvement of the global best, stored as a JSON line.
type TraceEntry struct {
	Iteration int       `json:"iteration"`
	Particle  int       `json:"particle"`
	Fitness   float64   `json:"fitness"`
	Timestamp time.Time `json:"timestamp"`
	// Position is omitted unless the writer was asked to keep positions.
	Position []float64 `json:"position,omitempty"`
}

// EntryFromRecord converts a trajectory record to a trace entry.
func EntryFromRecord(r swarm.BestRecord, withPosition bool) TraceEntry {
	e := TraceEntry{
		Iteration: r.Iteration,
		Particle:  r.Particle,
		Fitness:   r.Fitness,
		Timestamp: time.Now(),
	}
	if withPosition {
		e.Position = r.Position
	}
	return e
}

func tracePath(baseDir, runID string) string {
	return filepath.Join(runDir(baseDir, runID), traceFile)
}

// TraceWriter appends trace entries to <baseDir>/runs/<runID>/trace.jsonl.
// Writes are buffered until Flush or Close. It is safe for concurrent use.
type TraceWriter struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewTraceWriter opens the trace of a run, truncating it unless keep is set.
func NewTraceWriter(baseDir, runID string, keep bool) (*TraceWriter, error) {
	if err := os.MkdirAll(runDir(baseDir, runID), 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if keep {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	file, err := os.OpenFile(tracePath(baseDir, runID), flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	buf := bufio.NewWriterSize(file, 64*1024)
	return &TraceWriter{file: file, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// Write buffers one entry.
func (tw *TraceWriter) Write(entry TraceEntry) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if err := tw.enc.Encode(entry); err != nil {
		return fmt.Errorf("failed to write trace entry: %w", err)
	}
	return nil
}

// WriteRecords buffers one entry per trajectory record.
func (tw *TraceWriter) WriteRecords(records []swarm.BestRecord, withPosition bool) error {
	for _, r := range records {
		if err := tw.Write(EntryFromRecord(r, withPosition)); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes buffered entries and syncs the file.
func (tw *TraceWriter) Flush() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if err := tw.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush trace writer: %w", err)
	}
	if err := tw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync trace file: %w", err)
	}
	return nil
}

// Close flushes buffered entries and closes the file.
func (tw *TraceWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	flushErr := tw.buf.Flush()
	closeErr := tw.file.Close()
	if flushErr != nil {
		return fmt.Errorf("failed to flush on close: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close trace file: %w", closeErr)
	}
	return nil
}

// Path returns the trace file location.
func (tw *TraceWriter) Path() string {
	return tw.file.Name()
}

// TraceReader reads trace entries back in the order they were written.
type TraceReader struct {
	file *os.File
	dec  *json.Decoder
}

// NewTraceReader opens the trace of a run. A missing trace is a NotFoundError.
func NewTraceReader(baseDir, runID string) (*TraceReader, error) {
	file, err := os.Open(tracePath(baseDir, runID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{RunID: runID}
		}
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	return &TraceReader{file: file, dec: json.NewDecoder(bufio.NewReader(file))}, nil
}

// Read returns the next entry, or io.EOF after the last one.
func (tr *TraceReader) Read() (*TraceEntry, error) {
	var entry TraceEntry
	if err := tr.dec.Decode(&entry); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to decode trace entry: %w", err)
	}
	return &entry, nil
}

// ReadAll returns the remaining entries.
func (tr *TraceReader) ReadAll() ([]TraceEntry, error) {
	var entries []TraceEntry
	for {
		entry, err := tr.Read()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
}

// Close closes the trace file.
func (tr *TraceReader) Close() error {
	if err := tr.file.Close(); err != nil {
		return fmt.Errorf("failed to close trace file: %w", err)
	}
	return nil
}

// DeleteTrace removes the trace of a run and keeps its report. A missing
// trace is not an error.
func DeleteTrace(baseDir, runID string) error {
	if err := os.Remove(tracePath(baseDir, runID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete trace file: %w", err)
	}
	return nil
}
