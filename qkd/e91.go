package qkd

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/quantum-shield/qrng/qrng"
	"github.com/quantum-shield/qrng/qrng/bitseq"
	"github.com/quantum-shield/qrng/qrng/sampler"
)

// An E91 simulates entangled-pair key distribution between two parties.
// Each round distributes one entangled pair; rounds where the parties'
// randomly chosen bases coincide contribute one sifted key bit.
type E91 struct {
	sampler sampler.Sampler
	rand    *rand.Rand
	noise   float64
}

// An E91Opts packages together the arguments necessary to construct an
// E91 simulator.
type E91Opts struct {
	// Sampler provides measurement outcomes for the entangled pairs.
	// Must be non-nil.
	Sampler sampler.Sampler

	// Rand drives basis selection and channel disturbance. This may be
	// seeded for reproducible simulations. Must be non-nil.
	Rand *rand.Rand

	// Noise overrides the baseline matched-basis disagreement rate.
	// Zero means BaselineNoise; must lie in [0, 1).
	Noise float64
}

// An E91Result reports the outcome of one complete protocol run. If the
// run was judged insecure the shared key has been destroyed and
// SharedKey is empty.
type E91Result struct {
	TotalRounds     int     `json:"total_rounds"`
	SiftedKeyLength int     `json:"sifted_key_length"`
	SharedKey       string  `json:"shared_key"`
	QBER            float64 `json:"qber"`
	Secure          bool    `json:"secure"`
	Efficiency      float64 `json:"efficiency"`
}

// NewE91 returns an E91 simulator configured per opts, or an error if
// the options are nonsensical.
func NewE91(opts E91Opts) (*E91, error) {
	if opts.Sampler == nil {
		return nil, errors.New("must provide Sampler")
	}
	if opts.Rand == nil {
		return nil, errors.New("must provide Rand")
	}
	if opts.Noise < 0 || opts.Noise >= 1 {
		return nil, fmt.Errorf("noise rate %v outside [0, 1)", opts.Noise)
	}
	noise := opts.Noise
	if noise == 0 {
		noise = BaselineNoise
	}
	return &E91{sampler: opts.Sampler, rand: opts.Rand, noise: noise}, nil
}

// Run performs rounds sifting attempts. With eavesdrop set, an
// intercept-resend attacker is placed on the channel, which elevates
// the matched-basis disagreement rate past the security bound.
//
// An insecure verdict is a normal result, not an error; the error
// channel is reserved for invalid arguments and backend failures.
func (e *E91) Run(rounds int, eavesdrop bool) (E91Result, error) {
	if rounds <= 0 {
		return E91Result{}, fmt.Errorf("e91: %w: round count must be positive, got %d", qrng.ErrInvalidInput, rounds)
	}

	errProb := e.noise
	if eavesdrop {
		errProb = InterceptResendError
	}

	var key bitseq.Bits
	var disagreements int
	for i := 0; i < rounds; i++ {
		aliceBasis := e.rand.Intn(2)
		bobBasis := e.rand.Intn(2)
		if aliceBasis != bobBasis {
			continue
		}
		outcome, err := e.sampler.Bit()
		if err != nil {
			return E91Result{}, fmt.Errorf("e91 round %d: %w", i, err)
		}
		aliceBit := outcome == sampler.One
		bobBit := aliceBit
		if e.rand.Float64() < errProb {
			bobBit = !bobBit
		}
		key.AppendBit(aliceBit)
		if aliceBit != bobBit {
			disagreements++
		}
	}

	res := E91Result{
		TotalRounds:     rounds,
		SiftedKeyLength: key.Len(),
		Efficiency:      float64(key.Len()) / float64(rounds),
	}
	if key.Len() > 0 {
		res.QBER = float64(disagreements) / float64(key.Len())
	}
	res.Secure = res.QBER < QBERSecureBound
	if res.Secure {
		res.SharedKey = key.String()
	}
	return res, nil
}
