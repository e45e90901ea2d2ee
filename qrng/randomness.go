package qrng

import (
	"fmt"
	"math"

	"github.com/quantum-shield/qrng/qrng/bitseq"
)

// Screening thresholds for defense-grade randomness. This suite is a
// heuristic screen, not a cryptographic certification; the bounds are
// deliberately loose enough to tolerate sampling noise on moderate
// sequence lengths.
const (
	// MinFrequency and MaxFrequency bound the acceptable proportion of
	// ones around the ideal 0.5.
	MinFrequency = 0.4
	MaxFrequency = 0.6

	// RunLengthSlack is added to log2(n) to bound the longest
	// acceptable run: runs much longer than log2(n) indicate a stuck or
	// correlated source.
	RunLengthSlack = 6

	// MinComplexity is the floor on the windowed-substring complexity
	// estimate. A balanced but periodic sequence (e.g. "0101...") falls
	// well below it.
	MinComplexity = 0.5

	// complexityWindow is the substring length used for the complexity
	// estimate.
	complexityWindow = 4
)

// A RandomnessReport summarizes the statistical screening of a bit
// sequence.
type RandomnessReport struct {
	TotalBits    int     `json:"total_bits"`
	Ones         int     `json:"ones"`
	Zeros        int     `json:"zeros"`
	Frequency    float64 `json:"frequency"`
	Runs         int     `json:"runs"`
	MaxRunLength int     `json:"max_run_length"`
	Complexity   float64 `json:"complexity"`
	DefenseGrade bool    `json:"defense_grade"`
}

// TestRandomness screens a bit sequence with frequency, run-length, and
// windowed-complexity tests. DefenseGrade is set iff all three pass.
func TestRandomness(bits string) (RandomnessReport, error) {
	seq, err := bitseq.FromString(bits)
	if err != nil {
		return RandomnessReport{}, fmt.Errorf("test_randomness: %w: %v", ErrInvalidInput, err)
	}
	n := seq.Len()
	if n == 0 {
		return RandomnessReport{}, fmt.Errorf("test_randomness: %w: empty bit sequence", ErrInvalidInput)
	}

	ones := seq.CountOnes()
	runs, maxRun := runStats(seq)
	r := RandomnessReport{
		TotalBits:    n,
		Ones:         ones,
		Zeros:        n - ones,
		Frequency:    float64(ones) / float64(n),
		Runs:         runs,
		MaxRunLength: maxRun,
		Complexity:   windowComplexity(seq.String()),
	}

	maxRunBound := int(math.Log2(float64(n))) + RunLengthSlack
	r.DefenseGrade = r.Frequency >= MinFrequency && r.Frequency <= MaxFrequency &&
		r.MaxRunLength < maxRunBound &&
		r.Complexity >= MinComplexity
	return r, nil
}

// runStats counts maximal contiguous same-value subsequences and the
// length of the longest one.
func runStats(seq bitseq.Bits) (runs, maxRun int) {
	n := seq.Len()
	runs = 1
	maxRun = 1
	cur := 1
	for i := 1; i < n; i++ {
		if seq.Get(i) == seq.Get(i-1) {
			cur++
			if cur > maxRun {
				maxRun = cur
			}
			continue
		}
		runs++
		cur = 1
	}
	return runs, maxRun
}

// windowComplexity estimates compressibility as the number of distinct
// fixed-length windows observed, normalized by the most that could have
// been observed. Sequences shorter than the window are judged on their
// full length.
func windowComplexity(bits string) float64 {
	w := complexityWindow
	if len(bits) < w {
		w = len(bits)
	}
	windows := len(bits) - w + 1
	distinct := make(map[string]struct{}, windows)
	for i := 0; i < windows; i++ {
		distinct[bits[i:i+w]] = struct{}{}
	}
	possible := windows
	if alphabet := 1 << w; alphabet < possible {
		possible = alphabet
	}
	return float64(len(distinct)) / float64(possible)
}
