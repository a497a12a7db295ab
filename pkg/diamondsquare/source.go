package diamondsquare

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
)

// ErrSourceExhausted is returned by a SequenceSource with no values left.
var ErrSourceExhausted = errors.New("random source exhausted")

// Source supplies uniformly distributed values in [-1, 1].
type Source interface {
	Uniform() (float64, error)
}

// RandSource draws from a seeded math/rand generator.
type RandSource struct {
	rng *rand.Rand
}

// NewRandSource creates a deterministic source for the given seed.
func NewRandSource(seed int64) *RandSource {
	return &RandSource{rng: rand.New(rand.NewSource(seed))}
}

// Uniform never fails.
func (s *RandSource) Uniform() (float64, error) {
	return s.rng.Float64()*2 - 1, nil
}

// ReaderSource turns a byte stream (e.g. crypto/rand.Reader) into uniform values.
// Each draw consumes 8 bytes.
type ReaderSource struct {
	r   io.Reader
	buf [8]byte
}

// NewReaderSource wraps r.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r}
}

// Uniform returns the read error unchanged (wrapped) when the reader fails.
func (s *ReaderSource) Uniform() (float64, error) {
	if _, err := io.ReadFull(s.r, s.buf[:]); err != nil {
		return 0, fmt.Errorf("read random bytes: %w", err)
	}
	// 53 bits fill a float64 mantissa exactly.
	v := binary.BigEndian.Uint64(s.buf[:]) >> 11
	return float64(v)/float64(1<<53)*2 - 1, nil
}

// SequenceSource replays a fixed list of values.
type SequenceSource struct {
	values []float64
	pos    int
}

// NewSequenceSource returns a source yielding values in order.
func NewSequenceSource(values ...float64) *SequenceSource {
	return &SequenceSource{values: values}
}

func (s *SequenceSource) Uniform() (float64, error) {
	if s.pos >= len(s.values) {
		return 0, ErrSourceExhausted
	}
	v := s.values[s.pos]
	s.pos++
	if v < -1 || v > 1 || math.IsNaN(v) {
		return 0, fmt.Errorf("sequence value %d = %v outside [-1, 1]", s.pos-1, v)
	}
	return v, nil
}

// Consumed reports how many values have been drawn.
func (s *SequenceSource) Consumed() int {
	return s.pos
}
