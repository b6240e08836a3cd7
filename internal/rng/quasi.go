package rng

import "fmt"

// halton yields successive elements of the Halton sequence for one base.
type halton struct {
	base  int
	index int64
}

// newHalton starts at index 0 without a seed, at a random index in
// [0,10000) for a negative seed, and at the seed itself otherwise.
func newHalton(base int, seed *int64) (*halton, error) {
	if !isPrime(base) {
		return nil, fmt.Errorf("quasirandom base must be prime, got %d", base)
	}
	h := &halton{base: base}
	switch {
	case seed == nil:
	case *seed < 0:
		h.index = int64(entropySeed() % 10000)
	default:
		h.index = *seed
	}
	return h, nil
}

func (h *halton) Float64() float64 {
	v := haltonAt(h.index, h.base)
	h.index++
	return v
}

// haltonAt returns the i-th Halton number in base b.
func haltonAt(i int64, b int) float64 {
	f := 1.0
	r := 0.0
	base := int64(b)
	for i > 0 {
		f /= float64(b)
		r += f * float64(i%base)
		i /= base
	}
	return r
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}
