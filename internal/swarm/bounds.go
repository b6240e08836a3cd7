package swarm

import (
	"math"

	"github.com/cwbudde/swarmfit/internal/rng"
)

// Bounds maps candidate positions back into the feasible region.
type Bounds interface {
	// Limits enforces the bounds on every row of pos, in place, and
	// returns pos.
	Limits(pos [][]float64) [][]float64
	// Range returns the per-dimension limits. ok is false when the search
	// space is unbounded.
	Range() (lower, upper []float64, ok bool)
}

// Enforce selects how Box treats coordinates outside the limits.
type Enforce string

const (
	// Clip moves an out-of-range coordinate to the nearest edge.
	Clip Enforce = "clip"
	// Resample redraws an out-of-range coordinate uniformly within the limits.
	Resample Enforce = "resample"
)

// Validator post-processes a bounded position, e.g. to snap a dimension to
// a discrete grid. The result is clipped to the box again afterwards.
type Validator func(pos []float64) []float64

// SnapToInt rounds the listed dimensions (all when none are listed) to the
// nearest integer.
func SnapToInt(dims ...int) Validator {
	return func(pos []float64) []float64 {
		if len(dims) == 0 {
			for j := range pos {
				pos[j] = math.Round(pos[j])
			}
			return pos
		}
		for _, j := range dims {
			pos[j] = math.Round(pos[j])
		}
		return pos
	}
}

// Box is an axis-aligned feasible region.
type Box struct {
	lower, upper []float64
	mode         Enforce
	rand         Rand
	// Validate, when set, runs on every row after enforcement.
	Validate Validator
}

// NewBox returns a Box with the given per-dimension limits. A resampling
// Box draws from the Rand bound with WithRand, or from the optimizer's
// source when it is handed to an engine without one.
func NewBox(lower, upper []float64, mode Enforce) (*Box, error) {
	if len(lower) != len(upper) {
		return nil, configErr("bounds", "lower has %d dimensions, upper has %d", len(lower), len(upper))
	}
	if len(lower) == 0 {
		return nil, configErr("bounds", "no dimensions")
	}
	for j := range lower {
		if math.IsNaN(lower[j]) || math.IsNaN(upper[j]) || lower[j] > upper[j] {
			return nil, configErr("bounds", "dimension %d has invalid limits [%v, %v]", j, lower[j], upper[j])
		}
	}
	switch mode {
	case "":
		mode = Clip
	case Clip, Resample:
	default:
		return nil, configErr("bounds", "unknown enforcement mode %q", mode)
	}
	return &Box{lower: copyVec(lower), upper: copyVec(upper), mode: mode}, nil
}

// MustBox is like NewBox but panics on error.
func MustBox(lower, upper []float64, mode Enforce) *Box {
	b, err := NewBox(lower, upper, mode)
	if err != nil {
		panic(err)
	}
	return b
}

// Uniform returns a Box with the same limits in every one of ndim dimensions.
func Uniform(ndim int, lo, hi float64, mode Enforce) (*Box, error) {
	lower := make([]float64, ndim)
	upper := make([]float64, ndim)
	for j := range lower {
		lower[j] = lo
		upper[j] = hi
	}
	return NewBox(lower, upper, mode)
}

// WithRand sets the source used by Resample.
func (b *Box) WithRand(r Rand) *Box {
	b.rand = r
	return b
}

func (b *Box) bindRand(r Rand) {
	if b.rand == nil {
		b.rand = r
	}
}

// Mode returns the enforcement mode.
func (b *Box) Mode() Enforce { return b.mode }

// Dim returns the number of dimensions.
func (b *Box) Dim() int { return len(b.lower) }

func (b *Box) Range() (lower, upper []float64, ok bool) {
	return copyVec(b.lower), copyVec(b.upper), true
}

// Lower returns a copy of the lower limits.
func (b *Box) Lower() []float64 { return copyVec(b.lower) }

// Upper returns a copy of the upper limits.
func (b *Box) Upper() []float64 { return copyVec(b.upper) }

func (b *Box) Limits(pos [][]float64) [][]float64 {
	if b.mode == Resample && b.rand == nil {
		b.rand = rng.MustNew(rng.Config{})
	}

	for i := range pos {
		row := pos[i]
		for j := range row {
			if b.inside(row[j], j) {
				continue
			}
			if b.mode == Resample {
				row[j] = b.lower[j] + (b.upper[j]-b.lower[j])*b.rand.Float64()
			} else {
				row[j] = b.clip(row[j], j)
			}
		}

		if b.Validate != nil {
			row = b.Validate(row)
			for j := range row {
				row[j] = b.clip(row[j], j)
			}
			pos[i] = row
		}
	}
	return pos
}

func (b *Box) inside(x float64, j int) bool {
	return x >= b.lower[j] && x <= b.upper[j]
}

func (b *Box) clip(x float64, j int) float64 {
	switch {
	case math.IsNaN(x), x < b.lower[j]:
		return b.lower[j]
	case x > b.upper[j]:
		return b.upper[j]
	}
	return x
}

// Unbounded leaves positions untouched.
type Unbounded struct{}

func (Unbounded) Limits(pos [][]float64) [][]float64 { return pos }

func (Unbounded) Range() (lower, upper []float64, ok bool) { return nil, nil, false }

// randBinder is implemented by strategies that can share the optimizer's
// randomness source when none was configured.
type randBinder interface {
	bindRand(r Rand)
}
