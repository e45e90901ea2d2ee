// Package qrng provides quantum random number generation and the
// statistical machinery for judging the quality of a measured source:
// Shannon entropy, a randomness screening suite, and a process-wide
// performance tracker.
package qrng

import (
	"errors"
	"fmt"

	"github.com/quantum-shield/qrng/qrng/bitseq"
	"github.com/quantum-shield/qrng/qrng/sampler"
)

// A Generator produces random bits by repeatedly measuring a
// two-outcome quantum source. Every successful generation is recorded
// into the tracker the Generator was constructed with.
type Generator struct {
	sampler sampler.Sampler
	tracker *PerformanceTracker
}

// NewGenerator returns a Generator drawing from s. The tracker may be
// nil, in which case generations are not recorded.
func NewGenerator(s sampler.Sampler, t *PerformanceTracker) (*Generator, error) {
	if s == nil {
		return nil, errors.New("must provide a Sampler")
	}
	return &Generator{sampler: s, tracker: t}, nil
}

// Source reports the identity of the backing measurement source.
func (g *Generator) Source() string {
	return g.sampler.Source()
}

// Sample runs shots independent trials of the reference superposition
// circuit and returns aggregate outcome counts.
func (g *Generator) Sample(shots int) (sampler.Counts, error) {
	if shots <= 0 {
		return nil, fmt.Errorf("sample: %w: shots must be positive, got %d", ErrInvalidInput, shots)
	}
	counts, err := g.sampler.Sample(shots)
	if err != nil {
		return nil, fmt.Errorf("sampling %d shots: %w", shots, err)
	}
	return counts, nil
}

// GenerateBits measures the source n times and returns the outcomes as
// a string of '0's and '1's of length exactly n.
func (g *Generator) GenerateBits(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("generate_bits: %w: bit count must be positive, got %d", ErrInvalidInput, n)
	}
	var b bitseq.Bits
	for i := 0; i < n; i++ {
		bit, err := g.sampler.Bit()
		if err != nil {
			return "", fmt.Errorf("measuring bit %d of %d: %w", i, n, err)
		}
		b.AppendBit(bit == sampler.One)
	}
	if g.tracker != nil {
		ones := b.CountOnes()
		e, err := Entropy(sampler.Counts{
			sampler.Zero: n - ones,
			sampler.One:  ones,
		})
		if err != nil {
			return "", err
		}
		if err := g.tracker.Record(n, e); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
