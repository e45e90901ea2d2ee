// Package bitseq provides a densely-packed bit sequence used for key
// material and raw measurement records.
package bitseq

import (
	"fmt"
	"math/bits"
)

const byteSize = 8

// Bits is a fixed-length sequence of bits packed into bytes, LSB first
// within each byte.
type Bits struct {
	data []byte
	n    int
}

// New returns a Bits of length bitLen backed by data, which New takes
// ownership of. A negative bitLen is inferred from data. If bitLen
// exceeds data, trailing zeros are added; pad bits past bitLen are
// cleared.
func New(data []byte, bitLen int) Bits {
	if bitLen < 0 {
		bitLen = len(data) * byteSize
	}
	b := Bits{data: data, n: bitLen}
	if want := b.ByteLen(); want <= len(b.data) {
		b.data = b.data[:want]
	} else {
		for len(b.data) < want {
			b.data = append(b.data, 0)
		}
	}
	if rem := bitLen % byteSize; rem != 0 {
		b.data[len(b.data)-1] &= 1<<rem - 1
	}
	return b
}

// FromString parses a string of '0's and '1's. Spaces are ignored.
func FromString(s string) (Bits, error) {
	var b Bits
	for _, c := range s {
		switch c {
		case '0':
			b.AppendBit(false)
		case '1':
			b.AppendBit(true)
		case ' ':
		default:
			return Bits{}, fmt.Errorf("invalid bit character %q in %q", c, s)
		}
	}
	return b, nil
}

// String renders the sequence as a string of '0's and '1's.
func (b Bits) String() string {
	buf := make([]byte, b.n)
	for i := 0; i < b.n; i++ {
		if b.Get(i) {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}

// Len returns the number of bits in the sequence.
func (b Bits) Len() int { return b.n }

// ByteLen returns the number of bytes needed to hold the sequence.
func (b Bits) ByteLen() int { return BytesFor(b.n) }

// Data returns a view of the bytes underlying the sequence. Trailing
// pad bits past Len are zero.
func (b Bits) Data() []byte { return b.data }

// Get returns the i-th bit. Out-of-range reads return false.
func (b Bits) Get(i int) bool {
	if i < 0 || i >= b.n {
		return false
	}
	return b.data[i/byteSize]&(1<<(i%byteSize)) != 0
}

// AppendBit adds one bit to the end of the sequence.
func (b *Bits) AppendBit(bit bool) {
	j, pos := b.n/byteSize, b.n%byteSize
	b.n++
	if pos == 0 {
		b.data = append(b.data, 0)
	}
	if bit {
		b.data[j] |= 1 << pos
	}
}

// CountOnes returns the number of set bits.
func (b Bits) CountOnes() int {
	var sum int
	for _, x := range b.data {
		sum += bits.OnesCount8(x)
	}
	return sum
}

// Parity returns the parity of the sequence, true corresponding to 1.
func (b Bits) Parity() bool {
	var sum byte
	for _, x := range b.data {
		sum ^= x
	}
	return bits.OnesCount8(sum)%2 == 1
}

// And returns the bitwise AND of a and b, truncated to the shorter
// length.
func And(a, b Bits) Bits {
	n := a.n
	if b.n < n {
		n = b.n
	}
	r := Bits{data: make([]byte, BytesFor(n)), n: n}
	for i := range r.data {
		r.data[i] = a.data[i] & b.data[i]
	}
	return r
}

// XOr returns the bitwise XOR of a and b, which must agree in length.
func XOr(a, b Bits) (Bits, error) {
	if a.n != b.n {
		return Bits{}, fmt.Errorf("xor of unequal lengths: %d != %d", a.n, b.n)
	}
	r := Bits{data: make([]byte, BytesFor(a.n)), n: a.n}
	for i := range r.data {
		r.data[i] = a.data[i] ^ b.data[i]
	}
	return r, nil
}

// Slice copies bits [start, end) into a fresh sequence.
func Slice(b Bits, start, end int) (Bits, error) {
	if start < 0 || end < start || end > b.n {
		return Bits{}, fmt.Errorf("slicing [%d, %d) out of %d bits", start, end, b.n)
	}
	var r Bits
	for i := start; i < end; i++ {
		r.AppendBit(b.Get(i))
	}
	return r, nil
}

// BytesFor returns the number of bytes necessary to hold the provided
// number of bits.
func BytesFor(bits int) int {
	return (bits + byteSize - 1) / byteSize
}
