package swarm

import "math"

// Rand is the randomness capability engines draw from: unit uniforms in
// [0,1). *rng.Source satisfies it.
type Rand interface {
	Float64() float64
}

// Gaussian draws normal samples with the Box-Muller transform. Each
// transform yields a pair; the second value is buffered for the next call.
type Gaussian struct {
	rand   Rand
	z2     float64
	cached bool
}

// NewGaussian returns a sampler drawing uniforms from r.
func NewGaussian(r Rand) *Gaussian {
	return &Gaussian{rand: r}
}

// Normal returns a sample from N(mu, sigma).
func (g *Gaussian) Normal(mu, sigma float64) float64 {
	if g.cached {
		g.cached = false
		return sigma*g.z2 + mu
	}

	// 1-u keeps the logarithm finite.
	u1 := 1 - g.rand.Float64()
	u2 := g.rand.Float64()
	m := math.Sqrt(-2 * math.Log(u1))
	z1 := m * math.Cos(2*math.Pi*u2)
	g.z2 = m * math.Sin(2*math.Pi*u2)
	g.cached = true
	return sigma*z1 + mu
}

// StdNormal returns a sample from N(0, 1).
func (g *Gaussian) StdNormal() float64 {
	return g.Normal(0, 1)
}
