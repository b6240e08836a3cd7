package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	randv2 "math/rand/v2"

	xrand "golang.org/x/exp/rand"
)

// entropySeed draws a 64-bit seed from the operating system.
func entropySeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("rng: failed to read OS entropy: " + err.Error())
	}
	return binary.LittleEndian.Uint64(b[:])
}

func seedOrEntropy(seed *int64) uint64 {
	if seed == nil {
		return entropySeed()
	}
	return uint64(*seed)
}

// newPCG wraps the PCG source of golang.org/x/exp/rand.
func newPCG(seed *int64) generator {
	src := &xrand.PCGSource{}
	src.Seed(seedOrEntropy(seed))
	return xrand.New(src)
}

func newChaCha8(seed *int64) generator {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seedOrEntropy(seed))
	return randv2.New(randv2.NewChaCha8(key))
}

// minstd is the Park and Miller minimal standard generator.
type minstd struct {
	state int64
}

const (
	minstdA = 48271
	minstdM = 2147483647
)

func newMINSTD(seed *int64) *minstd {
	var s int64
	if seed == nil {
		s = 1 + int64(entropySeed()%93123543)
	} else {
		s = *seed % minstdM
		if s < 0 {
			s += minstdM
		}
	}
	if s == 0 {
		s = 1
	}
	return &minstd{state: s}
}

func (g *minstd) Float64() float64 {
	g.state = (minstdA * g.state) % minstdM
	return float64(g.state) * 4.656612875245797e-10
}
