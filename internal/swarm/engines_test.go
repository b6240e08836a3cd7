package swarm

import (
	"math"
	"testing"

	"github.com/cwbudde/swarmfit/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDEDonorsExcludeTarget(t *testing.T) {
	for _, npart := range []int{4, 5, 9} {
		d, err := NewDE(ObjectiveFunc(sphere), npart, 2, 10, DefaultDEParams(), WithRand(rng.NewSeeded(int64(npart))))
		require.NoError(t, err)
		require.NoError(t, d.Initialize())

		for trial := 0; trial < 200; trial++ {
			target := trial % npart
			k := d.donors(target)
			assert.NotContains(t, k[:], target)
			assert.NotEqual(t, k[0], k[1])
			assert.NotEqual(t, k[0], k[2])
			assert.NotEqual(t, k[1], k[2])
		}
	}
}

func TestDEModes(t *testing.T) {
	for _, mode := range []string{DonorRand, DonorBest, DonorToggle} {
		for _, cross := range []string{CrossoverBinomial, CrossoverGA} {
			t.Run(mode+"/"+cross, func(t *testing.T) {
				box := MustBox([]float64{-5, -5}, []float64{5, 5}, Clip)
				params := DefaultDEParams()
				params.Mode, params.Crossover = mode, cross
				d, err := NewDE(ObjectiveFunc(sphere), 10, 2, 60, params,
					WithBounds(box), WithRand(rng.NewSeeded(8)))
				require.NoError(t, err)

				best, _, err := d.Optimize()
				require.NoError(t, err)
				assert.Less(t, best, d.Results().Best[0].Fitness)
			})
		}
	}
}

func TestDEToggleAlternates(t *testing.T) {
	d, err := NewDE(ObjectiveFunc(sphere), 6, 2, 10, DEParams{CR: 0.5, F: 0.8, Mode: DonorToggle}, WithRand(rng.NewSeeded(2)))
	require.NoError(t, err)
	require.NoError(t, d.Initialize())

	assert.False(t, d.toggle)
	d.candidate(0)
	assert.True(t, d.toggle)
	d.candidate(1)
	assert.False(t, d.toggle)
}

func TestDERejectsBadParams(t *testing.T) {
	obj := ObjectiveFunc(sphere)
	_, err := NewDE(obj, 10, 2, 10, DEParams{CR: 1.5})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewDE(obj, 10, 2, 10, DEParams{Mode: "worst"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewDE(obj, 10, 2, 10, DEParams{Crossover: "exp"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewDE(obj, 10, 2, 10, DEParams{F: 2.5})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewDE(obj, 10, 2, 10, DEParams{F: -0.1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewDE(obj, 10, 2, 10, DEParams{F: 2})
	assert.NoError(t, err)
}

func TestZeroParamsAreKept(t *testing.T) {
	obj := ObjectiveFunc(sphere)

	d, err := NewDE(obj, 10, 2, 10, DEParams{CR: 0, F: 0.8})
	require.NoError(t, err)
	assert.Equal(t, 0.0, d.params.CR)

	g, err := NewGA(obj, 10, 2, 10, GAParams{CR: 0.8, F: 0, Top: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 0.0, g.params.F)

	m, err := NewMiCRO(obj, 10, 2, 10, MiCROParams{Eta: 0.1, Glimpse: 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.params.Glimpse)

	pp := DefaultPSOParams()
	pp.W = 0
	p, err := NewPSO(obj, 10, 2, 10, pp)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.params.W)
}

func TestGAWithoutMutationOnlyRecombines(t *testing.T) {
	g, err := NewGA(ObjectiveFunc(sphere), 8, 2, 10, GAParams{CR: 1, F: 0, Top: 0.5},
		WithBounds(MustBox([]float64{-5, -5}, []float64{5, 5}, Clip)),
		WithRand(rng.NewSeeded(21)))
	require.NoError(t, err)
	require.NoError(t, g.Initialize())

	// Every gene of a child comes from the same dimension of some parent.
	for range 20 {
		for _, child := range g.Evolve() {
			for j, x := range child {
				found := false
				for _, parent := range g.pos {
					if parent[j] == x {
						found = true
						break
					}
				}
				assert.True(t, found, "gene %v in dimension %d was mutated", x, j)
			}
		}
	}
}

func TestMiCROWithoutGlimpseOnlyGrazes(t *testing.T) {
	m, err := NewMiCRO(ObjectiveFunc(sphere), 8, 2, 20, MiCROParams{Eta: 0.1, Glimpse: 0},
		WithRand(rng.NewSeeded(22)))
	require.NoError(t, err)
	require.NoError(t, m.Initialize())

	// Pure grazing accepts strict improvements only.
	prev := copyVec(m.fit)
	for !m.Done() {
		require.NoError(t, m.Step())
		for i := range m.fit {
			assert.LessOrEqual(t, m.fit[i], prev[i])
		}
		prev = copyVec(m.fit)
	}
}

func TestGAEvolveLeavesBestUntouched(t *testing.T) {
	g, err := NewGA(ObjectiveFunc(sphere), 10, 3, 10, GAParams{CR: 1, F: 1, Top: 0.5},
		WithBounds(MustBox([]float64{-5, -5, -5}, []float64{5, 5, 5}, Clip)),
		WithRand(rng.NewSeeded(12)))
	require.NoError(t, err)
	require.NoError(t, g.Initialize())

	// Make particle 6 strictly best.
	g.pos[6] = []float64{0.01, -0.01, 0.02}
	g.fit[6] = sphere(g.pos[6])
	parents := copyMat(g.pos)

	for range 50 {
		next := g.Evolve()
		assert.Equal(t, parents[6], next[6])
		assert.Equal(t, parents, g.pos, "parents modified")
	}
}

func TestGAMutationUnboundedStaysInObservedRange(t *testing.T) {
	g, err := NewGA(ObjectiveFunc(sphere), 6, 2, 10, GAParams{CR: 1e-9, F: 1, Top: 0.5}, WithRand(rng.NewSeeded(5)))
	require.NoError(t, err)
	require.NoError(t, g.Initialize())

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range g.pos {
		lo = min(lo, p[0], p[1])
		hi = max(hi, p[0], p[1])
	}
	for _, p := range g.Evolve() {
		for _, x := range p {
			assert.True(t, x >= lo && x <= hi, "%v outside [%v,%v]", x, lo, hi)
		}
	}
}

func TestRankIsStable(t *testing.T) {
	assert.Equal(t, []int{1, 3, 0, 2}, rank([]float64{2, 1, 3, 1}))
}

func TestPSORingNeighborhood(t *testing.T) {
	params := DefaultPSOParams()
	params.Ring = true
	p, err := NewPSO(ObjectiveFunc(sphere), 5, 2, 10, params)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 0, 1}, p.ringNeighborhood(0))
	assert.Equal(t, []int{3, 4, 0}, p.ringNeighborhood(4))

	params.Neighbors = 10
	wide, err := NewPSO(ObjectiveFunc(sphere), 3, 2, 10, params)
	require.NoError(t, err)
	assert.Equal(t, 3, wide.params.Neighbors)
}

func TestPSOVelocityBounds(t *testing.T) {
	vb := MustBox([]float64{-0.1, -0.1}, []float64{0.1, 0.1}, Clip)
	params := DefaultPSOParams()
	params.VelocityBounds = vb
	p, err := NewPSO(ObjectiveFunc(sphere), 10, 2, 20, params,
		WithBounds(MustBox([]float64{-5, -5}, []float64{5, 5}, Clip)),
		WithRand(rng.NewSeeded(6)))
	require.NoError(t, err)
	_, _, err = p.Optimize()
	require.NoError(t, err)

	for _, v := range p.Results().Velocities {
		for _, x := range v {
			assert.LessOrEqual(t, math.Abs(x), 0.1)
		}
	}
}

func TestPSOParticleBestNeverWorsens(t *testing.T) {
	params := DefaultPSOParams()
	params.Inertia = LinearInertia{Hi: 0.9, Lo: 0.4}
	p, err := NewPSO(ObjectiveFunc(rastrigin), 10, 2, 30, params,
		WithBounds(MustBox([]float64{-5, -5}, []float64{5, 5}, Clip)),
		WithRand(rng.NewSeeded(10)))
	require.NoError(t, err)
	require.NoError(t, p.Initialize())

	prev := p.Results().ParticleBestFitness
	for !p.Done() {
		require.NoError(t, p.Step())
		cur := p.Results().ParticleBestFitness
		for i := range cur {
			assert.LessOrEqual(t, cur[i], prev[i])
		}
		prev = cur
	}
}

func TestLinearInertia(t *testing.T) {
	li := LinearInertia{Hi: 0.9, Lo: 0.4}
	assert.InDelta(t, 0.9, li.Weight(0, 0, 100), 1e-12)
	assert.InDelta(t, 0.65, li.Weight(0, 50, 100), 1e-12)
	assert.InDelta(t, 0.4, li.Weight(0, 100, 100), 1e-12)
	assert.InDelta(t, 0.65, LinearInertia{Hi: 0.4, Lo: 0.9}.Weight(0, 50, 100), 1e-12)
}

func TestConstriction(t *testing.T) {
	assert.InDelta(t, 0.7298, Constriction(2.05, 2.05), 1e-4)
}

func TestGWOLeadersAreBestSeen(t *testing.T) {
	g, err := NewGWO(ObjectiveFunc(rastrigin), 8, 2, 15, DefaultGWOParams(),
		WithBounds(MustBox([]float64{-5, -5}, []float64{5, 5}, Clip)),
		WithRand(rng.NewSeeded(13)))
	require.NoError(t, err)
	require.NoError(t, g.Initialize())

	for !g.Done() {
		require.NoError(t, g.Step())
		r := g.Results()
		require.Len(t, r.Leaders, 3)
		assert.LessOrEqual(t, r.Leaders[0].Fitness, r.Leaders[1].Fitness)
		assert.LessOrEqual(t, r.Leaders[1].Fitness, r.Leaders[2].Fitness)
		assert.Equal(t, r.BestFitness(), r.Leaders[0].Fitness)
		for _, f := range r.Fitness {
			assert.GreaterOrEqual(t, f, r.Leaders[0].Fitness)
		}
	}
}

func TestMiCROLookUpJumps(t *testing.T) {
	m, err := NewMiCRO(ObjectiveFunc(sphere), 6, 2, 5, MiCROParams{Eta: DefaultEta, Glimpse: 1}, WithRand(rng.NewSeeded(14)))
	require.NoError(t, err)
	require.NoError(t, m.Initialize())

	worst := rank(m.fit)[5]
	old := copyVec(m.pos[worst])
	require.NoError(t, m.Step())
	// With glimpse 1 every particle but the best jumps next to a better one
	// whatever the outcome, so the previous worst always moved.
	assert.NotEqual(t, old, m.pos[worst])
	assert.Empty(t, m.betterThan(math.Inf(-1)))
}

func TestROAcceptsOnlyNoWorse(t *testing.T) {
	r, err := NewRO(ObjectiveFunc(rastrigin), 10, 3, 20, ROParams{Eta: 0.5}, WithRand(rng.NewSeeded(15)))
	require.NoError(t, err)
	require.NoError(t, r.Initialize())

	prev := copyVec(r.fit)
	for !r.Done() {
		require.NoError(t, r.Step())
		for i := range r.fit {
			assert.LessOrEqual(t, r.fit[i], prev[i])
		}
		prev = copyVec(r.fit)
	}
}

func TestJayaAcceptsOnlyNoWorse(t *testing.T) {
	j, err := NewJaya(ObjectiveFunc(rastrigin), 10, 3, 20, WithRand(rng.NewSeeded(16)))
	require.NoError(t, err)
	require.NoError(t, j.Initialize())

	prev := copyVec(j.fit)
	for !j.Done() {
		require.NoError(t, j.Step())
		for i := range j.fit {
			assert.LessOrEqual(t, j.fit[i], prev[i])
		}
		prev = copyVec(j.fit)
	}
}
