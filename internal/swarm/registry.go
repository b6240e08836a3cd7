package swarm

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Algorithm describes an engine available through New.
type Algorithm struct {
	Name        string
	Description string
	Defaults    map[string]any
}

// Algorithms lists every engine New can build.
var Algorithms = []Algorithm{
	{"pso", "canonical particle swarm, fully connected", map[string]any{"c1": DefaultCognition, "c2": DefaultSocial, "w": DefaultInertia}},
	{"bare", "bare-bones particle swarm", map[string]any{"bareProb": DefaultBareProb, "ring": false}},
	{"ring", "particle swarm with ring topology", map[string]any{"c1": DefaultCognition, "c2": DefaultSocial, "w": DefaultInertia, "neighbors": DefaultNeighbors}},
	{"de", "differential evolution", map[string]any{"CR": 0.5, "F": 0.8, "mode": DonorRand, "crossover": CrossoverBinomial}},
	{"ga", "genetic algorithm", map[string]any{"CR": 0.8, "F": 0.05, "top": 0.5}},
	{"jaya", "Jaya", map[string]any{}},
	{"gwo", "grey wolf optimizer", map[string]any{"eta": 2.0}},
	{"ro", "parallel random optimization", map[string]any{"eta": DefaultEta}},
	{"micro", "MiCRO grazing optimizer", map[string]any{"eta": DefaultEta, "glimpse": DefaultGlimpse}},
}

// AlgorithmNames returns the names accepted by New.
func AlgorithmNames() []string {
	names := make([]string, len(Algorithms))
	for i, a := range Algorithms {
		names[i] = a.Name
	}
	return names
}

// New builds an engine by algorithm name. params holds the algorithm
// specific hyperparameters by the keys listed in Algorithms; missing keys
// take their defaults and an explicit zero is kept. Numbers may be given as
// float64, int or string. The bare-bones swarm also accepts ring=true to use
// a ring neighborhood.
func New(name string, obj Objective, npart, ndim, maxIter int, params map[string]any, opts ...Option) (Optimizer, error) {
	p := paramReader{m: params}

	var (
		o   Optimizer
		err error
	)
	switch name {
	case "pso", "bare", "ring":
		def := DefaultPSOParams()
		pp := PSOParams{
			C1:        p.num("c1", def.C1),
			C2:        p.num("c2", def.C2),
			W:         p.num("w", def.W),
			Bare:      name == "bare",
			BareProb:  p.num("bareProb", def.BareProb),
			Ring:      name == "ring" || (name == "bare" && p.flag("ring", false)),
			Neighbors: p.count("neighbors", def.Neighbors),
		}
		if p.has("wHi") || p.has("wLo") {
			pp.Inertia = LinearInertia{Hi: p.num("wHi", 0), Lo: p.num("wLo", 0)}
		}
		o, err = NewPSO(obj, npart, ndim, maxIter, pp, opts...)
	case "de":
		def := DefaultDEParams()
		o, err = NewDE(obj, npart, ndim, maxIter, DEParams{
			CR:        p.num("CR", def.CR),
			F:         p.num("F", def.F),
			Mode:      p.text("mode", def.Mode),
			Crossover: p.text("crossover", def.Crossover),
		}, opts...)
	case "ga":
		def := DefaultGAParams()
		o, err = NewGA(obj, npart, ndim, maxIter, GAParams{
			CR:  p.num("CR", def.CR),
			F:   p.num("F", def.F),
			Top: p.num("top", def.Top),
		}, opts...)
	case "jaya":
		o, err = NewJaya(obj, npart, ndim, maxIter, opts...)
	case "gwo":
		o, err = NewGWO(obj, npart, ndim, maxIter, GWOParams{Eta: p.num("eta", DefaultGWOParams().Eta)}, opts...)
	case "ro":
		o, err = NewRO(obj, npart, ndim, maxIter, ROParams{Eta: p.num("eta", DefaultROParams().Eta)}, opts...)
	case "micro":
		def := DefaultMiCROParams()
		o, err = NewMiCRO(obj, npart, ndim, maxIter, MiCROParams{
			Eta:     p.num("eta", def.Eta),
			Glimpse: p.num("glimpse", def.Glimpse),
		}, opts...)
	default:
		return nil, configErr("algorithm", "unknown algorithm %q, want one of %v", name, AlgorithmNames())
	}
	if p.err != nil {
		return nil, p.err
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// paramReader reads loosely typed hyperparameters, keeping the first
// conversion error. Keys match case-insensitively since config loaders fold
// them to lower case.
type paramReader struct {
	m   map[string]any
	err error
}

func (p *paramReader) fail(key string, v any, want string) {
	if p.err == nil {
		p.err = configErr(key, "cannot use %v (%T) as a %s", v, v, want)
	}
}

func (p *paramReader) get(key string) (any, bool) {
	if v, ok := p.m[key]; ok {
		return v, true
	}
	for k, v := range p.m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func (p *paramReader) has(key string) bool {
	_, ok := p.get(key)
	return ok
}

// num returns the value of key, or def when key is absent.
func (p *paramReader) num(key string, def float64) float64 {
	v, ok := p.get(key)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			p.fail(key, v, "number")
		}
		return f
	default:
		p.fail(key, v, "number")
		return def
	}
}

func (p *paramReader) count(key string, def int) int {
	f := p.num(key, float64(def))
	if f != float64(int(f)) {
		v, _ := p.get(key)
		p.fail(key, v, "whole number")
	}
	return int(f)
}

func (p *paramReader) text(key, def string) string {
	v, ok := p.get(key)
	if !ok {
		return def
	}
	return fmt.Sprint(v)
}

func (p *paramReader) flag(key string, def bool) bool {
	v, ok := p.get(key)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			p.fail(key, v, "boolean")
		}
		return b
	default:
		p.fail(key, v, "boolean")
		return def
	}
}

// Known reports whether name is a registered algorithm.
func Known(name string) bool {
	return slices.Contains(AlgorithmNames(), name)
}
