package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sys/cpu"
)

// hwrngPath is the kernel interface to the hardware random number generator.
var hwrngPath = "/dev/hwrng"

// osEntropy reads 32-bit words from the operating system entropy pool.
type osEntropy struct{}

func (osEntropy) Float64() float64 {
	var b [4]byte
	if _, err := io.ReadFull(crand.Reader, b[:]); err != nil {
		panic("rng: failed to read OS entropy: " + err.Error())
	}
	return float64(binary.LittleEndian.Uint32(b[:])) / (1 << 32)
}

// hasRDRAND reports whether the CPU offers RDRAND, which the kernel mixes
// into the OS entropy pool.
var hasRDRAND = cpu.X86.HasRDRAND

// hardware reads from the hardware generator device. Without the device it
// reads the OS entropy pool when the CPU has RDRAND, and otherwise switches
// to a pcg64 fallback. A device that stops delivering bytes also falls back.
type hardware struct {
	dev      io.ReadCloser
	pool     bool
	fallback generator
	seed     *int64
}

func newHardware(seed *int64) *hardware {
	h := &hardware{seed: seed}
	f, err := os.Open(hwrngPath)
	switch {
	case err == nil:
		h.dev = f
	case hasRDRAND:
		slog.Debug("Hardware device unavailable, reading the RDRAND-fed entropy pool",
			"device", hwrngPath,
			"error", err,
		)
		h.pool = true
	default:
		h.fall("hardware entropy unavailable", err)
	}
	return h
}

func (h *hardware) fall(msg string, err error) {
	slog.Warn(msg+", falling back to pcg64",
		"device", hwrngPath,
		"cpu_rdrand", hasRDRAND,
		"error", err,
	)
	if h.dev != nil {
		h.dev.Close()
		h.dev = nil
	}
	h.fallback = newPCG(h.seed)
}

func (h *hardware) Float64() float64 {
	if h.fallback != nil {
		return h.fallback.Float64()
	}
	if h.pool {
		return osEntropy{}.Float64()
	}
	var b [4]byte
	if _, err := io.ReadFull(h.dev, b[:]); err != nil {
		h.fall("hardware entropy read failed", err)
		return h.fallback.Float64()
	}
	return float64(binary.LittleEndian.Uint32(b[:])) / (1 << 32)
}
