package qrng

import (
	"errors"
	"math"
	"testing"

	"github.com/quantum-shield/qrng/qrng/sampler"
)

func TestEntropyBalanced(t *testing.T) {
	e, err := Entropy(sampler.Counts{"0": 512, "1": 512})
	if err != nil {
		t.Fatalf("Entropy: %v", err)
	}
	if e != 1.0 {
		t.Errorf("Entropy(512, 512) == %v, want exactly 1.0", e)
	}
}

func TestEntropyDeterministic(t *testing.T) {
	for _, n := range []int{1, 7, 1024} {
		e, err := Entropy(sampler.Counts{"0": n, "1": 0})
		if err != nil {
			t.Fatalf("Entropy: %v", err)
		}
		if e != 0 {
			t.Errorf("Entropy(%d, 0) == %v, want 0", n, e)
		}
	}
}

func TestEntropyRange(t *testing.T) {
	tcs := []struct {
		name   string
		counts sampler.Counts
	}{
		{"skewed", sampler.Counts{"0": 700, "1": 300}},
		{"mildly skewed", sampler.Counts{"0": 513, "1": 511}},
		{"extreme", sampler.Counts{"0": 1023, "1": 1}},
		{"tiny", sampler.Counts{"0": 1, "1": 2}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			e, err := Entropy(tc.counts)
			if err != nil {
				t.Fatalf("Entropy: %v", err)
			}
			if e < 0 || e > 1 {
				t.Errorf("Entropy(%v) == %v, outside [0, 1]", tc.counts, e)
			}
		})
	}
}

func TestEntropyOrdering(t *testing.T) {
	// Entropy must fall as the distribution skews.
	prev := math.Inf(1)
	for _, c := range []sampler.Counts{
		{"0": 500, "1": 500},
		{"0": 600, "1": 400},
		{"0": 800, "1": 200},
		{"0": 990, "1": 10},
	} {
		e, err := Entropy(c)
		if err != nil {
			t.Fatalf("Entropy(%v): %v", c, err)
		}
		if e >= prev {
			t.Errorf("Entropy(%v) == %v, want < %v", c, e, prev)
		}
		prev = e
	}
}

func TestEntropyInvalidInput(t *testing.T) {
	tcs := []struct {
		name   string
		counts sampler.Counts
	}{
		{"empty", sampler.Counts{}},
		{"all zero", sampler.Counts{"0": 0, "1": 0}},
		{"negative", sampler.Counts{"0": -5, "1": 10}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Entropy(tc.counts); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Entropy(%v) err == %v, want ErrInvalidInput", tc.counts, err)
			}
		})
	}
}
