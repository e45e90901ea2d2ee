package qrng

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestTrackerAveraging(t *testing.T) {
	tr := NewPerformanceTracker()
	if err := tr.Record(64, 1.0); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := tr.Record(64, 0.9); err != nil {
		t.Fatalf("Record: %v", err)
	}
	snap := tr.Snapshot()
	if snap.TotalBitsGenerated != 128 {
		t.Errorf("TotalBitsGenerated == %d, want 128", snap.TotalBitsGenerated)
	}
	if math.Abs(snap.AverageEntropy-0.95) > 1e-12 {
		t.Errorf("AverageEntropy == %v, want 0.95", snap.AverageEntropy)
	}
	if snap.PerformanceRating != RatingGood {
		t.Errorf("PerformanceRating == %q, want %q", snap.PerformanceRating, RatingGood)
	}
}

func TestTrackerRatingBands(t *testing.T) {
	tcs := []struct {
		name      string
		entropies []float64
		erating   string
	}{
		{"excellent", []float64{1.0, 0.995}, RatingExcellent},
		{"good", []float64{0.97, 0.95}, RatingGood},
		{"needs review", []float64{0.5, 0.9}, RatingNeedsReview},
		{"empty", nil, RatingNeedsReview},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewPerformanceTracker()
			for _, e := range tc.entropies {
				if err := tr.Record(32, e); err != nil {
					t.Fatalf("Record: %v", err)
				}
			}
			if got := tr.Snapshot().PerformanceRating; got != tc.erating {
				t.Errorf("PerformanceRating == %q, want %q", got, tc.erating)
			}
		})
	}
}

func TestTrackerConcurrentRecords(t *testing.T) {
	const (
		workers     = 64
		bitsPerCall = 257
	)
	tr := NewPerformanceTracker()
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tr.Record(bitsPerCall, 0.99); err != nil {
				t.Errorf("Record: %v", err)
			}
		}()
	}
	wg.Wait()
	if got := tr.Snapshot().TotalBitsGenerated; got != workers*bitsPerCall {
		t.Errorf("TotalBitsGenerated == %d, want exactly %d", got, workers*bitsPerCall)
	}
}

func TestTrackerRejectsBadObservations(t *testing.T) {
	tr := NewPerformanceTracker()
	tcs := []struct {
		name    string
		bits    int
		entropy float64
	}{
		{"negative bits", -1, 0.5},
		{"entropy above 1", 10, 1.5},
		{"negative entropy", 10, -0.1},
		{"NaN entropy", 10, math.NaN()},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if err := tr.Record(tc.bits, tc.entropy); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Record(%d, %v) err == %v, want ErrInvalidInput", tc.bits, tc.entropy, err)
			}
		})
	}
	if got := tr.Snapshot().TotalBitsGenerated; got != 0 {
		t.Errorf("rejected observations still mutated the tracker: %d bits", got)
	}
}

func TestTrackerOverflowGuard(t *testing.T) {
	tr := NewPerformanceTracker()
	if err := tr.Record(math.MaxInt32, 1.0); err != nil {
		t.Fatalf("Record: %v", err)
	}
	tr.totalBits = math.MaxInt64 - 10
	if err := tr.Record(100, 1.0); !errors.Is(err, ErrAggregation) {
		t.Errorf("Record past overflow err == %v, want ErrAggregation", err)
	}
}
