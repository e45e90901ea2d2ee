package qcrypto

import (
	"fmt"

	"github.com/quantum-shield/qrng/qrng/bitseq"
)

// A toeplitz represents a matrix whose diagonals are all constant,
// operating in F_2. Multiplying raw measurement bits by a random
// toeplitz matrix is a universal-hash randomness extractor, the same
// construction QKD systems use for privacy amplification.
type toeplitz struct {
	// The diagonal constants, starting from the bottom left and ending
	// with the top right.
	diags bitseq.Bits

	m int
	n int
}

// Mul computes the matrix product Av between the toeplitz matrix t and
// the provided vector.
func (t toeplitz) Mul(vec bitseq.Bits) (bitseq.Bits, error) {
	if t.diags.Len() < t.m+t.n-1 {
		return bitseq.Bits{}, fmt.Errorf("improper toeplitz construction, has %d diagonals, needs %d", t.diags.Len(), t.m+t.n-1)
	}
	if t.n != vec.Len() {
		return bitseq.Bits{}, fmt.Errorf("multiplying %dx%d matrix into %d-dim vector", t.m, t.n, vec.Len())
	}

	var r bitseq.Bits
	for off := t.m - 1; off >= 0; off-- {
		row, err := bitseq.Slice(t.diags, off, off+t.n)
		if err != nil {
			return bitseq.Bits{}, err
		}
		r.AppendBit(bitseq.And(row, vec).Parity())
	}
	return r, nil
}
