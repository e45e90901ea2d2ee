package qrng

import (
	"fmt"
	"math"

	"github.com/quantum-shield/qrng/qrng/sampler"
)

// Entropy computes the Shannon entropy, in bits, of a two-outcome count
// distribution. A deterministic source scores 0, a perfectly balanced
// one scores exactly 1. The convention 0*log2(0) == 0 applies.
func Entropy(counts sampler.Counts) (float64, error) {
	var total int
	for label, c := range counts {
		if c < 0 {
			return 0, fmt.Errorf("entropy: %w: negative count %d for outcome %q", ErrInvalidInput, c, label)
		}
		total += c
	}
	if total == 0 {
		return 0, fmt.Errorf("entropy: %w: no outcomes recorded", ErrInvalidInput)
	}
	var e float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		e -= p * math.Log2(p)
	}
	return e, nil
}
