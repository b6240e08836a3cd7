package opt

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/swarmfit/internal/swarm"
)

func TestSwarmAdapterOnSphere(t *testing.T) {
	for _, alg := range []string{"pso", "de", "gwo"} {
		t.Run(alg, func(t *testing.T) {
			optimizer := NewSwarm(alg, 100, 20, 42, nil)
			if optimizer.Name() != alg {
				t.Errorf("Name() = %q, want %q", optimizer.Name(), alg)
			}

			lower := []float64{-10, -10, -10}
			upper := []float64{10, 10, 10}
			best, cost, err := optimizer.Run(sphere, lower, upper, 3)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if len(best) != 3 {
				t.Fatalf("Expected 3 parameters, got %d", len(best))
			}
			if cost > 0.1 {
				t.Errorf("Expected cost near 0, got %f", cost)
			}
			for i, v := range best {
				if math.Abs(v) > 1.0 {
					t.Errorf("Parameter %d = %f, expected near 0", i, v)
				}
			}
		})
	}
}

func TestSwarmAdapterDeterministic(t *testing.T) {
	lower := []float64{-5, -5}
	upper := []float64{5, 5}

	_, cost1, err := NewSwarm("micro", 30, 10, 7, nil).Run(sphere, lower, upper, 2)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	_, cost2, err := NewSwarm("micro", 30, 10, 7, nil).Run(sphere, lower, upper, 2)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if cost1 != cost2 {
		t.Errorf("Non-deterministic: cost1=%f, cost2=%f", cost1, cost2)
	}
}

func TestSwarmAdapterErrors(t *testing.T) {
	_, _, err := NewSwarm("annealing", 10, 10, 1, nil).Run(sphere, []float64{0}, []float64{1}, 1)
	if !errors.Is(err, swarm.ErrInvalidConfig) {
		t.Errorf("Expected configuration error, got %v", err)
	}

	_, _, err = NewSwarm("pso", 10, 10, 1, nil).Run(sphere, []float64{0}, []float64{1}, 2)
	if err == nil {
		t.Error("Expected error for bounds/dimension mismatch")
	}
}
