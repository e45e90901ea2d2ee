package qkd

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/quantum-shield/qrng/qrng"
	"github.com/quantum-shield/qrng/qrng/bitseq"
	"github.com/quantum-shield/qrng/qrng/sampler"
)

// BB84Vulnerability documents the structural weakness of BB84 relative
// to E91: there is no real-time entanglement certificate, so an
// attacker is visible only statistically, after the fact, by
// sacrificing a disclosed subset of the sifted key for error-rate
// comparison.
const BB84Vulnerability = "eavesdropping detectable only post hoc via disclosed-subset error comparison; no real-time Bell certification"

// A BB84 simulates prepare-and-measure key distribution: one party
// prepares bits in random bases, the other measures in random bases,
// and only matching-basis bits survive reconciliation.
type BB84 struct {
	sampler sampler.Sampler
	rand    *rand.Rand
}

// A BB84Opts packages together the arguments necessary to construct a
// BB84 simulator.
type BB84Opts struct {
	// Sampler provides the prepared bit values. Must be non-nil.
	Sampler sampler.Sampler

	// Rand drives basis selection. Must be non-nil.
	Rand *rand.Rand
}

// A BB84Result reports the outcome of one protocol run. BB84 raises no
// security verdict of its own; it exists as the contrast baseline for
// protocol comparison.
type BB84Result struct {
	RawBitCount     int     `json:"raw_bit_count"`
	SiftedKey       string  `json:"sifted_key"`
	SiftedKeyLength int     `json:"sifted_key_length"`
	Efficiency      float64 `json:"efficiency"`
	Vulnerability   string  `json:"vulnerability"`
}

// NewBB84 returns a BB84 simulator configured per opts, or an error if
// the options are nonsensical.
func NewBB84(opts BB84Opts) (*BB84, error) {
	if opts.Sampler == nil {
		return nil, errors.New("must provide Sampler")
	}
	if opts.Rand == nil {
		return nil, errors.New("must provide Rand")
	}
	return &BB84{sampler: opts.Sampler, rand: opts.Rand}, nil
}

// Run prepares and measures numBits qubits and sifts the results.
// Expected efficiency is 0.5, the probability of basis agreement.
func (b *BB84) Run(numBits int) (BB84Result, error) {
	if numBits <= 0 {
		return BB84Result{}, fmt.Errorf("bb84: %w: bit count must be positive, got %d", qrng.ErrInvalidInput, numBits)
	}

	var sifted bitseq.Bits
	for i := 0; i < numBits; i++ {
		outcome, err := b.sampler.Bit()
		if err != nil {
			return BB84Result{}, fmt.Errorf("bb84 qubit %d: %w", i, err)
		}
		aliceBasis := b.rand.Intn(2)
		bobBasis := b.rand.Intn(2)
		if aliceBasis != bobBasis {
			continue
		}
		sifted.AppendBit(outcome == sampler.One)
	}

	return BB84Result{
		RawBitCount:     numBits,
		SiftedKey:       sifted.String(),
		SiftedKeyLength: sifted.Len(),
		Efficiency:      float64(sifted.Len()) / float64(numBits),
		Vulnerability:   BB84Vulnerability,
	}, nil
}
