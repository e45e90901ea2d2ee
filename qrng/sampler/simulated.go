package sampler

import (
	"math/rand"
	"sync"
)

// A Simulated is a Sampler that models an ideal Hadamard-then-measure
// circuit with pseudorandomness. It is explicitly labeled as a
// simulation; it must never masquerade as a hardware source.
//
// A Simulated is safe for concurrent use.
type Simulated struct {
	mu   sync.Mutex
	rand *rand.Rand
	pOne float64
}

// NewSimulated returns a Simulated sampler driven by r. An unbiased
// source has pOne == 0.5; other values model a defective backend.
func NewSimulated(r *rand.Rand, pOne float64) *Simulated {
	return &Simulated{rand: r, pOne: pOne}
}

// Sample implements the Sampler interface.
func (s *Simulated) Sample(shots int) (Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := Counts{Zero: 0, One: 0}
	for i := 0; i < shots; i++ {
		if s.rand.Float64() < s.pOne {
			c[One]++
		} else {
			c[Zero]++
		}
	}
	return c, nil
}

// Bit implements the Sampler interface.
func (s *Simulated) Bit() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rand.Float64() < s.pOne {
		return One, nil
	}
	return Zero, nil
}

// Source implements the Sampler interface.
func (s *Simulated) Source() string {
	return "simulated superposition circuit (pseudorandom)"
}

// An Unavailable is a Sampler whose backend can never be reached. It
// exists so that callers can exercise their backend-failure paths.
type Unavailable struct{}

// Sample implements the Sampler interface.
func (Unavailable) Sample(int) (Counts, error) { return nil, ErrUnavailable }

// Bit implements the Sampler interface.
func (Unavailable) Bit() (string, error) { return "", ErrUnavailable }

// Source implements the Sampler interface.
func (Unavailable) Source() string { return "unavailable backend" }
