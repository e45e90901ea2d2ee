package qkd

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/quantum-shield/qrng/qrng"
	"github.com/quantum-shield/qrng/qrng/sampler"
)

func testBB84(t *testing.T, seed int64) *BB84 {
	t.Helper()
	b, err := NewBB84(BB84Opts{
		Sampler: sampler.NewSimulated(rand.New(rand.NewSource(seed)), 0.5),
		Rand:    rand.New(rand.NewSource(seed + 1)),
	})
	if err != nil {
		t.Fatalf("building BB84: %v", err)
	}
	return b
}

func TestBB84Efficiency(t *testing.T) {
	b := testBB84(t, 42)
	const n = 4096
	res, err := b.Run(n)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RawBitCount != n {
		t.Errorf("RawBitCount == %d, want %d", res.RawBitCount, n)
	}
	// Basis reconciliation keeps about half the bits.
	if res.Efficiency < 0.45 || res.Efficiency > 0.55 {
		t.Errorf("Efficiency == %v, want roughly 0.5", res.Efficiency)
	}
	if len(res.SiftedKey) != res.SiftedKeyLength {
		t.Errorf("len(SiftedKey) == %d, want %d", len(res.SiftedKey), res.SiftedKeyLength)
	}
	for i, c := range res.SiftedKey {
		if c != '0' && c != '1' {
			t.Fatalf("SiftedKey[%d] == %q, want '0' or '1'", i, c)
		}
	}
	if res.Vulnerability != BB84Vulnerability {
		t.Errorf("Vulnerability == %q, want the static contrast note", res.Vulnerability)
	}
}

func TestBB84InvalidBitCount(t *testing.T) {
	b := testBB84(t, 1)
	for _, n := range []int{0, -1} {
		if _, err := b.Run(n); !errors.Is(err, qrng.ErrInvalidInput) {
			t.Errorf("Run(%d) err == %v, want ErrInvalidInput", n, err)
		}
	}
}

func TestBB84BackendFailurePropagates(t *testing.T) {
	b, err := NewBB84(BB84Opts{
		Sampler: sampler.Unavailable{},
		Rand:    rand.New(rand.NewSource(3)),
	})
	if err != nil {
		t.Fatalf("building BB84: %v", err)
	}
	if _, err := b.Run(64); !errors.Is(err, sampler.ErrUnavailable) {
		t.Errorf("Run err == %v, want sampler.ErrUnavailable", err)
	}
}

func TestNewBB84Validation(t *testing.T) {
	if _, err := NewBB84(BB84Opts{Rand: rand.New(rand.NewSource(1))}); err == nil {
		t.Errorf("NewBB84 accepted a nil sampler")
	}
	if _, err := NewBB84(BB84Opts{Sampler: sampler.Unavailable{}}); err == nil {
		t.Errorf("NewBB84 accepted a nil rand")
	}
}
