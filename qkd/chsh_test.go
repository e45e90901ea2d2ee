package qkd

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/quantum-shield/qrng/qrng"
	"github.com/quantum-shield/qrng/qrng/sampler"
)

func testCHSH(t *testing.T, seed int64) *CHSH {
	t.Helper()
	c, err := NewCHSH(CHSHOpts{
		Sampler: sampler.NewSimulated(rand.New(rand.NewSource(seed)), 0.5),
		Rand:    rand.New(rand.NewSource(seed + 1)),
	})
	if err != nil {
		t.Fatalf("building CHSH: %v", err)
	}
	return c
}

func TestCHSHIdealSourceViolatesBell(t *testing.T) {
	c := testCHSH(t, 42)
	res, err := c.Run(4096)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := math.Abs(res.S - TsirelsonBound); got > 0.1 {
		t.Errorf("S == %v, want within 0.1 of %v", res.S, TsirelsonBound)
	}
	if !res.BellViolation {
		t.Errorf("BellViolation == false for an ideal entangled source")
	}
	if res.SecurityLevel != SecurityHigh {
		t.Errorf("SecurityLevel == %q, want %q", res.SecurityLevel, SecurityHigh)
	}
	if len(res.Correlations) != 4 {
		t.Fatalf("got %d correlations, want 4: %v", len(res.Correlations), res.Correlations)
	}
	for _, label := range pairLabels {
		e, ok := res.Correlations[label]
		if !ok {
			t.Errorf("missing correlation for basis pair %q", label)
			continue
		}
		if e < -1 || e > 1 {
			t.Errorf("E(%s) == %v outside [-1, 1]", label, e)
		}
	}
}

func TestCHSHStaysWithinAlgebraicCeiling(t *testing.T) {
	// Small shot counts maximize estimator variance; the sum must still
	// respect the ceiling because each term is a mean of +/-1 values.
	for seed := int64(0); seed < 20; seed++ {
		res, err := testCHSH(t, seed).Run(8)
		if err != nil {
			t.Fatalf("Run(seed %d): %v", seed, err)
		}
		if math.Abs(res.S) > AlgebraicCeiling {
			t.Errorf("|S| == %v exceeds %v (seed %d)", math.Abs(res.S), AlgebraicCeiling, seed)
		}
	}
}

func TestCHSHInvalidShots(t *testing.T) {
	c := testCHSH(t, 1)
	for _, shots := range []int{0, -5} {
		if _, err := c.Run(shots); !errors.Is(err, qrng.ErrInvalidInput) {
			t.Errorf("Run(%d) err == %v, want ErrInvalidInput", shots, err)
		}
	}
}

func TestCHSHBackendFailurePropagates(t *testing.T) {
	c, err := NewCHSH(CHSHOpts{
		Sampler: sampler.Unavailable{},
		Rand:    rand.New(rand.NewSource(3)),
	})
	if err != nil {
		t.Fatalf("building CHSH: %v", err)
	}
	if _, err := c.Run(32); !errors.Is(err, sampler.ErrUnavailable) {
		t.Errorf("Run err == %v, want sampler.ErrUnavailable", err)
	}
}

func TestSecurityLevelBands(t *testing.T) {
	tcs := []struct {
		s    float64
		eout string
	}{
		{2.83, SecurityHigh},
		{-2.83, SecurityHigh},
		{2.3, SecurityModerate},
		{-2.1, SecurityModerate},
		{1.9, SecurityClassical},
		{0, SecurityClassical},
	}
	for _, tc := range tcs {
		if got := securityLevel(tc.s); got != tc.eout {
			t.Errorf("securityLevel(%v) == %q, want %q", tc.s, got, tc.eout)
		}
	}
}
