package qrng

import (
	"fmt"
	"math"
	"sync"
)

// Rating bands for the rolling average entropy of the source.
const (
	ExcellentEntropy = 0.99
	GoodEntropy      = 0.95

	RatingExcellent   = "EXCELLENT"
	RatingGood        = "GOOD"
	RatingNeedsReview = "NEEDS_REVIEW"
)

// A PerformanceTracker aggregates generation statistics for the life of
// the process. It is the one piece of shared mutable state in the
// system; all updates happen under its lock, and observations are never
// rolled back.
type PerformanceTracker struct {
	mu         sync.Mutex
	totalBits  int64
	entropySum float64
	samples    int64
}

// A PerformanceSnapshot is a point-in-time copy of the tracker's
// aggregate state.
type PerformanceSnapshot struct {
	TotalBitsGenerated int64   `json:"total_bits_generated"`
	AverageEntropy     float64 `json:"average_entropy"`
	PerformanceRating  string  `json:"performance_rating"`
}

// NewPerformanceTracker returns an empty tracker.
func NewPerformanceTracker() *PerformanceTracker {
	return &PerformanceTracker{}
}

// Record absorbs one generation: bitsGenerated bits produced with the
// given measured entropy. Safe for concurrent use; no updates are lost.
func (t *PerformanceTracker) Record(bitsGenerated int, entropy float64) error {
	if bitsGenerated < 0 {
		return fmt.Errorf("record: %w: negative bit count %d", ErrInvalidInput, bitsGenerated)
	}
	if math.IsNaN(entropy) || entropy < 0 || entropy > 1 {
		return fmt.Errorf("record: %w: entropy %v outside [0, 1]", ErrInvalidInput, entropy)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.totalBits > math.MaxInt64-int64(bitsGenerated) {
		return fmt.Errorf("record: %w: bit counter would overflow", ErrAggregation)
	}
	t.totalBits += int64(bitsGenerated)
	t.entropySum += entropy
	t.samples++
	return nil
}

// Snapshot returns the current aggregate state.
func (t *PerformanceTracker) Snapshot() PerformanceSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := PerformanceSnapshot{TotalBitsGenerated: t.totalBits}
	if t.samples > 0 {
		s.AverageEntropy = t.entropySum / float64(t.samples)
	}
	switch {
	case t.samples > 0 && s.AverageEntropy >= ExcellentEntropy:
		s.PerformanceRating = RatingExcellent
	case t.samples > 0 && s.AverageEntropy >= GoodEntropy:
		s.PerformanceRating = RatingGood
	default:
		s.PerformanceRating = RatingNeedsReview
	}
	return s
}
