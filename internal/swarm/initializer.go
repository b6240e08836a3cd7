package swarm

// Initializer produces the initial population.
type Initializer interface {
	InitialSwarm(npart, ndim int) [][]float64
}

// RandomInitializer distributes particles uniformly within Bounds, or in
// [0,1) per dimension when Bounds is nil or unbounded.
type RandomInitializer struct {
	Bounds Bounds
	Rand   Rand
}

func (ri *RandomInitializer) bindRand(r Rand) {
	if ri.Rand == nil {
		ri.Rand = r
	}
}

func (ri *RandomInitializer) InitialSwarm(npart, ndim int) [][]float64 {
	pos := newMat(npart, ndim)

	var lower, upper []float64
	bounded := false
	if ri.Bounds != nil {
		lower, upper, bounded = ri.Bounds.Range()
	}

	for i := range pos {
		for j := range pos[i] {
			u := ri.Rand.Float64()
			if bounded {
				pos[i][j] = lower[j] + (upper[j]-lower[j])*u
			} else {
				pos[i][j] = u
			}
		}
	}

	if bounded {
		pos = ri.Bounds.Limits(pos)
	}
	return pos
}
