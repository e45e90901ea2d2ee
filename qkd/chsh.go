package qkd

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/quantum-shield/qrng/qrng"
	"github.com/quantum-shield/qrng/qrng/sampler"
)

// CHSH bounds. A classical (local hidden variable) system cannot exceed
// ClassicalBound; an ideal entangled source reaches TsirelsonBound; the
// algebraic ceiling of the four-term correlation sum is AlgebraicCeiling
// regardless of physics.
const (
	ClassicalBound    = 2.0
	HighSecurityBound = 2.5
	AlgebraicCeiling  = 4.0
)

// TsirelsonBound is the quantum-mechanical maximum of |S|, 2*sqrt(2).
var TsirelsonBound = 2 * math.Sqrt2

// Bell-test security levels derived from |S|.
const (
	SecurityHigh      = "HIGH"
	SecurityModerate  = "MODERATE"
	SecurityClassical = "NONE/CLASSICAL"
)

// Polarizer angles, in radians, for the four CHSH basis pairs. This is
// the standard arrangement that maximizes |S| under the cosine
// correlation law E = cos(2*(a-b)).
var (
	chshAliceAngles = [2]float64{0, math.Pi / 4}
	chshBobAngles   = [2]float64{math.Pi / 8, 3 * math.Pi / 8}
)

// pairLabels name the four basis-pair combinations in the order their
// correlations enter S = E(a,b) - E(a,b') + E(a',b) + E(a',b').
var pairLabels = [4]string{"ab", "ab'", "a'b", "a'b'"}

// A CHSH estimates basis-pair correlations of an entangled source and
// combines them into the CHSH statistic S.
type CHSH struct {
	sampler sampler.Sampler
	rand    *rand.Rand
}

// A CHSHOpts packages together the arguments necessary to construct a
// CHSH test.
type CHSHOpts struct {
	// Sampler provides the local measurement outcomes. Must be non-nil.
	Sampler sampler.Sampler

	// Rand drives the correlated-pair disturbance draws. Must be
	// non-nil.
	Rand *rand.Rand
}

// A BellResult reports one Bell test: the four estimated correlations,
// the CHSH statistic, and the derived security classification.
type BellResult struct {
	Correlations  map[string]float64 `json:"correlations"`
	S             float64            `json:"S"`
	BellViolation bool               `json:"bell_violation"`
	SecurityLevel string             `json:"security_level"`
}

// NewCHSH returns a CHSH test configured per opts, or an error if the
// options are nonsensical.
func NewCHSH(opts CHSHOpts) (*CHSH, error) {
	if opts.Sampler == nil {
		return nil, errors.New("must provide Sampler")
	}
	if opts.Rand == nil {
		return nil, errors.New("must provide Rand")
	}
	return &CHSH{sampler: opts.Sampler, rand: opts.Rand}, nil
}

// Run estimates each of the four basis-pair correlations from shots
// trials under the ideal-entanglement model and computes S. An ideal
// source yields |S| near TsirelsonBound; |S| above AlgebraicCeiling is
// impossible by construction and reported as a defect.
func (c *CHSH) Run(shots int) (BellResult, error) {
	if shots <= 0 {
		return BellResult{}, fmt.Errorf("chsh: %w: shot count must be positive, got %d", qrng.ErrInvalidInput, shots)
	}

	res := BellResult{Correlations: make(map[string]float64, 4)}
	for i, a := range chshAliceAngles {
		for j, b := range chshBobAngles {
			e, err := c.correlation(a, b, shots)
			if err != nil {
				return BellResult{}, err
			}
			res.Correlations[pairLabels[2*i+j]] = e
		}
	}
	res.S = res.Correlations["ab"] - res.Correlations["ab'"] +
		res.Correlations["a'b"] + res.Correlations["a'b'"]
	if math.Abs(res.S) > AlgebraicCeiling {
		return BellResult{}, fmt.Errorf("chsh: |S| = %v exceeds algebraic ceiling %v", math.Abs(res.S), AlgebraicCeiling)
	}
	res.BellViolation = math.Abs(res.S) > ClassicalBound
	res.SecurityLevel = securityLevel(res.S)
	return res, nil
}

// correlation estimates E(a, b) from shots correlated pairs. Alice's
// outcome comes from the measurement source; under the ideal model
// Bob's outcome agrees with hers with probability
// (1 + cos(2*(a-b)))/2, so the sample mean of the +/-1 outcome
// products converges on the cosine correlation law.
func (c *CHSH) correlation(a, b float64, shots int) (float64, error) {
	pAgree := (1 + math.Cos(2*(a-b))) / 2
	products := make([]float64, shots)
	for i := range products {
		outcome, err := c.sampler.Bit()
		if err != nil {
			return 0, fmt.Errorf("chsh trial %d: %w", i, err)
		}
		alice := 1.0
		if outcome == sampler.Zero {
			alice = -1.0
		}
		bob := alice
		if c.rand.Float64() >= pAgree {
			bob = -bob
		}
		products[i] = alice * bob
	}
	return stat.Mean(products, nil), nil
}

func securityLevel(s float64) string {
	abs := math.Abs(s)
	switch {
	case abs > HighSecurityBound:
		return SecurityHigh
	case abs > ClassicalBound:
		return SecurityModerate
	default:
		return SecurityClassical
	}
}
