package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwbudde/swarmfit/internal/server"
	"github.com/cwbudde/swarmfit/internal/store"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveDataDir string
	serveFormat  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP job server",
	Long: `Serves a JSON API that runs optimization jobs in the background:

  POST /api/v1/jobs              start a job from a run configuration
  GET  /api/v1/jobs              list jobs
  GET  /api/v1/jobs/:id/status   job progress
  GET  /api/v1/jobs/:id/stream   progress as server-sent events
  POST /api/v1/jobs/:id/cancel   stop a job
  GET  /api/v1/jobs/:id/report   report of a completed job
  GET  /api/v1/algorithms        available algorithms`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "./data", "Directory for reports of completed jobs (empty = keep none)")
	serveCmd.Flags().StringVar(&serveFormat, "format", "json", "Report format: json, yaml")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	var reports store.Store
	if serveDataDir != "" {
		format, err := store.ParseFormat(serveFormat)
		if err != nil {
			return err
		}
		fs, err := store.NewFSStore(serveDataDir, format)
		if err != nil {
			return fmt.Errorf("failed to create report store: %w", err)
		}
		reports = fs
	}

	srv := server.NewServer(serveAddr, reports)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}
