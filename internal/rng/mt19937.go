package rng

const (
	mtN       = 624
	mtM       = 397
	mtMatrixA = 0x9908b0df
	mtUpper   = 0x80000000
	mtLower   = 0x7fffffff
)

// mt19937 is the 32-bit Mersenne Twister.
type mt19937 struct {
	mt  [mtN]uint32
	mti int
}

func newMT19937(seed *int64) *mt19937 {
	g := &mt19937{}
	g.seed(uint32(seedOrEntropy(seed)))
	return g
}

func (g *mt19937) seed(s uint32) {
	g.mt[0] = s
	for i := 1; i < mtN; i++ {
		g.mt[i] = 1812433253*(g.mt[i-1]^(g.mt[i-1]>>30)) + uint32(i)
	}
	g.mti = mtN
}

func (g *mt19937) Uint32() uint32 {
	mag01 := [2]uint32{0, mtMatrixA}

	if g.mti >= mtN {
		var y uint32
		kk := 0
		for ; kk < mtN-mtM; kk++ {
			y = (g.mt[kk] & mtUpper) | (g.mt[kk+1] & mtLower)
			g.mt[kk] = g.mt[kk+mtM] ^ (y >> 1) ^ mag01[y&1]
		}
		for ; kk < mtN-1; kk++ {
			y = (g.mt[kk] & mtUpper) | (g.mt[kk+1] & mtLower)
			g.mt[kk] = g.mt[kk+(mtM-mtN)] ^ (y >> 1) ^ mag01[y&1]
		}
		y = (g.mt[mtN-1] & mtUpper) | (g.mt[0] & mtLower)
		g.mt[mtN-1] = g.mt[mtM-1] ^ (y >> 1) ^ mag01[y&1]
		g.mti = 0
	}

	y := g.mt[g.mti]
	g.mti++

	// Tempering
	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}

// Float64 combines two draws into a 53-bit uniform in [0,1).
func (g *mt19937) Float64() float64 {
	a := g.Uint32() >> 5
	b := g.Uint32() >> 6
	return (float64(a)*67108864.0 + float64(b)) * (1.0 / 9007199254740992.0)
}
