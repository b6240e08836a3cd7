// Package bench provides benchmark objective functions with known optima,
// from http://en.wikipedia.org/wiki/Test_functions_for_optimization, and a
// runner that compares optimizers over repeated seeded trials.
package bench

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	sin  = math.Sin
	cos  = math.Cos
	abs  = math.Abs
	exp  = math.Exp
	sqrt = math.Sqrt
)

// Point is a known optimum.
type Point struct {
	Position []float64
	Value    float64
}

// Func is a benchmark objective. Eval returns +Inf outside the bounds.
type Func interface {
	Eval(v []float64) float64
	Bounds() (low, up []float64)
	Optima() []Point
	Name() string
}

type Sphere struct {
	NDim int
}

func (fn Sphere) Name() string { return fmt.Sprintf("Sphere_%vD", fn.NDim) }

func (fn Sphere) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	tot := 0.0
	for _, v := range x {
		tot += v * v
	}
	return tot
}

func (fn Sphere) Bounds() (low, up []float64) { return box(fn.NDim, -5, 5) }

func (fn Sphere) Optima() []Point {
	return []Point{{Position: make([]float64, fn.NDim), Value: 0}}
}

type Ackley struct {
	NDim int
}

func (fn Ackley) Name() string { return fmt.Sprintf("Ackley_%vD", fn.NDim) }

func (fn Ackley) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	n := float64(len(x))
	var sq, cs float64
	for _, v := range x {
		sq += v * v
		cs += cos(2 * math.Pi * v)
	}
	return -20*exp(-0.2*sqrt(sq/n)) - exp(cs/n) + 20 + math.E
}

func (fn Ackley) Bounds() (low, up []float64) { return box(fn.NDim, -5, 5) }

func (fn Ackley) Optima() []Point {
	return []Point{{Position: make([]float64, fn.NDim), Value: 0}}
}

type Rastrigin struct {
	NDim int
}

func (fn Rastrigin) Name() string { return fmt.Sprintf("Rastrigin_%vD", fn.NDim) }

func (fn Rastrigin) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	tot := 10 * float64(len(x))
	for _, v := range x {
		tot += v*v - 10*cos(2*math.Pi*v)
	}
	return tot
}

func (fn Rastrigin) Bounds() (low, up []float64) { return box(fn.NDim, -5.12, 5.12) }

func (fn Rastrigin) Optima() []Point {
	return []Point{{Position: make([]float64, fn.NDim), Value: 0}}
}

type Eggholder struct{}

func (fn Eggholder) Name() string { return "Eggholder" }

func (fn Eggholder) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -(y+47)*sin(sqrt(abs(y+x/2+47))) - x*sin(sqrt(abs(x-(y+47))))
}

func (fn Eggholder) Bounds() (low, up []float64) {
	return []float64{-512, -512}, []float64{512, 512}
}

func (fn Eggholder) Optima() []Point {
	return []Point{{Position: []float64{512, 404.2319}, Value: -959.6407}}
}

type Styblinski struct {
	NDim int
}

func (fn Styblinski) Name() string { return fmt.Sprintf("Styblinski_%vD", fn.NDim) }

func (fn Styblinski) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	tot := 0.0
	for _, v := range x {
		tot += math.Pow(v, 4) - 16*math.Pow(v, 2) + 5*v
	}
	return tot / 2
}

func (fn Styblinski) Bounds() (low, up []float64) { return box(fn.NDim, -5, 5) }

func (fn Styblinski) Optima() []Point {
	pos := make([]float64, fn.NDim)
	for i := range pos {
		pos[i] = -2.903534
	}
	return []Point{{Position: pos, Value: -39.16599 * float64(fn.NDim)}}
}

type Rosenbrock struct {
	NDim int
}

func (fn Rosenbrock) Name() string { return fmt.Sprintf("Rosenbrock_%vD", fn.NDim) }

func (fn Rosenbrock) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	tot := 0.0
	for i := 0; i < len(x)-1; i++ {
		tot += 100*math.Pow(x[i+1]-x[i]*x[i], 2) + math.Pow(x[i]-1, 2)
	}
	return tot
}

func (fn Rosenbrock) Bounds() (low, up []float64) { return box(fn.NDim, -5, 10) }

func (fn Rosenbrock) Optima() []Point {
	pos := make([]float64, fn.NDim)
	for i := range pos {
		pos[i] = 1
	}
	return []Point{{Position: pos, Value: 0}}
}

// TwoPeaks is a pair of inverted Gaussian wells, a shallow one at +5 and a
// four times deeper one at -5, that traps greedy searches started on the
// wrong side.
type TwoPeaks struct {
	NDim int
}

func (fn TwoPeaks) Name() string { return fmt.Sprintf("TwoPeaks_%vD", fn.NDim) }

func (fn TwoPeaks) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	var a, b float64
	for _, v := range x {
		a += (v - 5) * (v - 5)
		b += (v + 5) * (v + 5)
	}
	return -(exp(-a/4) + 4*exp(-b/4))
}

func (fn TwoPeaks) Bounds() (low, up []float64) { return box(fn.NDim, -18, 18) }

func (fn TwoPeaks) Optima() []Point {
	pos := make([]float64, fn.NDim)
	for i := range pos {
		pos[i] = -5
	}
	return []Point{{Position: pos, Value: fn.Eval(pos)}}
}

// constructors maps lower-case names to functions of a given dimension.
var constructors = map[string]func(ndim int) (Func, error){
	"sphere":     func(n int) (Func, error) { return Sphere{n}, nil },
	"ackley":     func(n int) (Func, error) { return Ackley{n}, nil },
	"rastrigin":  func(n int) (Func, error) { return Rastrigin{n}, nil },
	"styblinski": func(n int) (Func, error) { return Styblinski{n}, nil },
	"twopeaks":   func(n int) (Func, error) { return TwoPeaks{n}, nil },
	"rosenbrock": func(n int) (Func, error) {
		if n < 2 {
			return nil, fmt.Errorf("rosenbrock needs at least 2 dimensions, got %d", n)
		}
		return Rosenbrock{n}, nil
	},
	"eggholder": func(n int) (Func, error) {
		if n != 2 {
			return nil, fmt.Errorf("eggholder is defined in 2 dimensions, got %d", n)
		}
		return Eggholder{}, nil
	},
}

// Names returns the names accepted by ByName, sorted.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByName returns the named benchmark function in ndim dimensions.
func ByName(name string, ndim int) (Func, error) {
	if ndim < 1 {
		return nil, fmt.Errorf("dimension must be positive, got %d", ndim)
	}
	ctor, ok := constructors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown benchmark function %q, want one of %v", name, Names())
	}
	return ctor(ndim)
}

func InsideBounds(p []float64, fn Func) bool {
	low, up := fn.Bounds()
	if len(p) != len(low) {
		return false
	}
	for i := range p {
		if p[i] < low[i] || p[i] > up[i] {
			return false
		}
	}
	return true
}

func box(ndim int, lo, hi float64) (low, up []float64) {
	low = make([]float64, ndim)
	up = make([]float64, ndim)
	for i := range low {
		low[i] = lo
		up[i] = hi
	}
	return low, up
}
