// Package sampler abstracts the two-outcome quantum measurement source
// that every higher component draws from. Implementations may be backed
// by real hardware, a circuit simulator, or an explicitly-labeled
// pseudorandom substitute.
package sampler

import "errors"

// ErrUnavailable is returned when the measurement backend cannot be
// reached.
var ErrUnavailable = errors.New("measurement backend unavailable")

// Outcome labels for the two-outcome reference circuit.
const (
	Zero = "0"
	One  = "1"
)

// Counts maps an outcome label to the number of times it was observed.
type Counts map[string]int

// Total returns the number of trials recorded in c.
func (c Counts) Total() int {
	var n int
	for _, v := range c {
		n += v
	}
	return n
}

// A Sampler measures a single qubit held in maximal superposition.
type Sampler interface {
	// Sample runs shots independent measurements of the reference
	// circuit and returns aggregate outcome counts.
	Sample(shots int) (Counts, error)

	// Bit performs one measurement and returns "0" or "1".
	Bit() (string, error)

	// Source identifies the backend producing measurements, so that a
	// pseudorandom substitution is always visible to callers.
	Source() string
}
