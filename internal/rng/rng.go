// Package rng provides reproducible streams of uniform random values drawn
// from a selectable backend: deterministic generators (pcg64, mt19937,
// minstd, chacha8), a Halton quasirandom sequence, operating system or
// hardware entropy, or replay of a recorded byte stream.
package rng

import (
	"errors"
	"fmt"
	"math"
	"os"
)

// Kind selects the generator behind a Source.
type Kind string

const (
	KindPCG64   Kind = "pcg64"
	KindMT19937 Kind = "mt19937"
	KindMINSTD  Kind = "minstd"
	KindChaCha8 Kind = "chacha8"
	KindQuasi   Kind = "quasi"
	KindURandom Kind = "urandom"
	KindRDRAND  Kind = "rdrand"
	KindFile    Kind = "file"
)

// Kinds lists every backend accepted by New.
var Kinds = []Kind{KindPCG64, KindMT19937, KindMINSTD, KindChaCha8, KindQuasi, KindURandom, KindRDRAND, KindFile}

// Mode controls how Random post-processes the unit uniforms.
type Mode string

const (
	ModeFloat Mode = "float" // (high-low)*u + low
	ModeInt   Mode = "int"   // int((high-low)*u) + low
	ModeByte  Mode = "byte"  // floor(256*u + 0.5), saturated at 255
	ModeBit   Mode = "bit"   // floor(u + 0.5)
)

// ErrUnknownKind is returned by New for an unrecognized backend kind.
var ErrUnknownKind = errors.New("unknown randomness kind")

// Config describes a Source. The zero value is an unseeded pcg64 source in
// float mode over [0,1).
type Config struct {
	Mode Mode
	Kind Kind
	// Seed makes deterministic kinds reproducible. Nil seeds from OS entropy.
	Seed *int64
	Low  float64
	High float64
	// Base is the prime base of the quasirandom sequence (default 2).
	Base int
	// Path is the byte stream replayed by KindFile.
	Path string
}

// Seed is a helper for filling Config.Seed.
func Seed(s int64) *int64 { return &s }

// generator produces unit uniforms in [0,1).
type generator interface {
	Float64() float64
}

// Source is a RandomnessSource. It is not safe for concurrent use.
type Source struct {
	cfg    Config
	gen    generator
	replay *replay
}

// New builds a Source from cfg. Entropy-backed kinds are not reproducible;
// KindRDRAND falls back to pcg64 with a warning when no hardware source exists.
func New(cfg Config) (*Source, error) {
	cfg = withDefaults(cfg)

	s := &Source{cfg: cfg}
	switch cfg.Kind {
	case KindPCG64:
		s.gen = newPCG(cfg.Seed)
	case KindMT19937:
		s.gen = newMT19937(cfg.Seed)
	case KindMINSTD:
		s.gen = newMINSTD(cfg.Seed)
	case KindChaCha8:
		s.gen = newChaCha8(cfg.Seed)
	case KindQuasi:
		q, err := newHalton(cfg.Base, cfg.Seed)
		if err != nil {
			return nil, err
		}
		s.gen = q
	case KindURandom:
		s.gen = osEntropy{}
	case KindRDRAND:
		s.gen = newHardware(cfg.Seed)
	case KindFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file randomness requires a path")
		}
		f, err := os.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open randomness file: %w", err)
		}
		r, err := newReplay(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		s.replay = r
		s.gen = r
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
	return s, nil
}

// MustNew is like New but panics on error.
func MustNew(cfg Config) *Source {
	s, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

// NewSeeded returns a deterministic pcg64 Source with the given seed.
func NewSeeded(seed int64) *Source {
	return MustNew(Config{Kind: KindPCG64, Seed: Seed(seed)})
}

func withDefaults(cfg Config) Config {
	if cfg.Mode == "" {
		cfg.Mode = ModeFloat
	}
	if cfg.Kind == "" {
		cfg.Kind = KindPCG64
	}
	if cfg.Low == 0 && cfg.High == 0 {
		cfg.High = 1
	}
	if cfg.Base == 0 {
		cfg.Base = 2
	}
	return cfg
}

// Config returns the configuration the Source was built with.
func (s *Source) Config() Config { return s.cfg }

// Kind reports the active backend. It differs from the configured kind only
// after a hardware fallback.
func (s *Source) Kind() Kind {
	if h, ok := s.gen.(*hardware); ok && h.fallback != nil {
		return KindPCG64
	}
	return s.cfg.Kind
}

// Float64 returns a raw unit uniform in [0,1) regardless of Mode. Engines
// draw through this method.
func (s *Source) Float64() float64 {
	return s.gen.Float64()
}

// Random returns n values post-processed according to the Source mode.
func (s *Source) Random(n int) []float64 {
	out := make([]float64, n)
	if s.replay != nil && s.cfg.Mode == ModeByte {
		for i, b := range s.replay.bytes(n) {
			out[i] = float64(b)
		}
		return out
	}
	for i := range out {
		out[i] = s.shape(s.gen.Float64())
	}
	return out
}

// Ints returns n values in [Low, High) as integers. The mode is ignored.
func (s *Source) Ints(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		u := s.gen.Float64()
		out[i] = int64((s.cfg.High-s.cfg.Low)*u) + int64(s.cfg.Low)
	}
	return out
}

// Bytes returns n bytes. Replay sources return the recorded bytes verbatim.
func (s *Source) Bytes(n int) []byte {
	if s.replay != nil {
		return s.replay.bytes(n)
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = toByte(s.gen.Float64())
	}
	return out
}

// Intn returns an integer in [0,n).
func (s *Source) Intn(n int) int {
	if n <= 0 {
		panic("rng: invalid argument to Intn")
	}
	k := int(float64(n) * s.gen.Float64())
	if k >= n {
		k = n - 1
	}
	return k
}

// Close releases the replay file, if any.
func (s *Source) Close() error {
	if s.replay != nil {
		return s.replay.close()
	}
	return nil
}

func (s *Source) shape(u float64) float64 {
	switch s.cfg.Mode {
	case ModeInt:
		return float64(int64((s.cfg.High-s.cfg.Low)*u) + int64(s.cfg.Low))
	case ModeByte:
		return float64(toByte(u))
	case ModeBit:
		return math.Floor(u + 0.5)
	default:
		return (s.cfg.High-s.cfg.Low)*u + s.cfg.Low
	}
}

func toByte(u float64) byte {
	v := math.Floor(256*u + 0.5)
	if v > 255 {
		v = 255
	}
	return byte(v)
}
