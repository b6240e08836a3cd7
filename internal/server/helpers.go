package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/cwbudde/swarmfit/internal/config"
	"github.com/cwbudde/swarmfit/internal/engine"
)

// maxConfigBytes limits the size of a job request body.
const maxConfigBytes = 1 << 20

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// decodeRunConfig reads a run configuration from body. Missing fields take
// the defaults of config.Default, and the result is checked by building the
// engine it describes.
func decodeRunConfig(body io.Reader) (config.Run, error) {
	cfg := config.Default()
	dec := json.NewDecoder(io.LimitReader(body, maxConfigBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return config.Run{}, fmt.Errorf("invalid JSON: %w", err)
	}

	r, err := engine.New(cfg)
	if err != nil {
		return config.Run{}, err
	}
	r.Close()
	return cfg, nil
}
