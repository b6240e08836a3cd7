package rng

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// replay serves bytes from a recorded stream. Reaching the end of the stream
// rewinds it to the start and counts a wrap.
type replay struct {
	r     io.ReadSeeker
	size  int64
	wraps int
}

// NewReplay builds a KindFile Source reading from r. Mode, Low and High from
// cfg are honored; Kind and Path are ignored.
func NewReplay(r io.ReadSeeker, cfg Config) (*Source, error) {
	rp, err := newReplay(r)
	if err != nil {
		return nil, err
	}
	cfg.Kind = KindFile
	return &Source{cfg: withDefaults(cfg), gen: rp, replay: rp}, nil
}

func newReplay(r io.ReadSeeker) (*replay, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to size randomness stream: %w", err)
	}
	if size == 0 {
		return nil, errors.New("randomness stream is empty")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind randomness stream: %w", err)
	}
	return &replay{r: r, size: size}, nil
}

func (rp *replay) bytes(n int) []byte {
	out := make([]byte, n)
	filled := 0
	for filled < n {
		k, err := rp.r.Read(out[filled:])
		filled += k
		if filled == n {
			break
		}
		if err == io.EOF || k == 0 {
			rp.rewind()
			continue
		}
		if err != nil {
			panic("rng: failed to read randomness stream: " + err.Error())
		}
	}
	return out
}

func (rp *replay) rewind() {
	if _, err := rp.r.Seek(0, io.SeekStart); err != nil {
		panic("rng: failed to rewind randomness stream: " + err.Error())
	}
	rp.wraps++
}

// Float64 converts the next four bytes, little endian, to [0,1).
func (rp *replay) Float64() float64 {
	return float64(binary.LittleEndian.Uint32(rp.bytes(4))) / (1 << 32)
}

func (rp *replay) close() error {
	if c, ok := rp.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Wraps reports how many times a replay Source rewound its stream. It is
// zero for every other kind.
func (s *Source) Wraps() int {
	if s.replay == nil {
		return 0
	}
	return s.replay.wraps
}
