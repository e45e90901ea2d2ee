package qcrypto

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/quantum-shield/qrng/qrng/bitseq"
)

func TestToeplitzMul(t *testing.T) {
	tcs := []struct {
		mat  toeplitz
		vec  bitseq.Bits
		eout bitseq.Bits
	}{
		{
			// (0 1 0)
			// (0 0 1)
			// (1 0 0)
			mat: toeplitz{
				diags: bitseq.New([]byte{0b01001}, 5),
				m:     3,
				n:     3,
			},
			// (0 1 1)^T
			vec: bitseq.New([]byte{0b110}, 3),
			// (1 1 0)^T
			eout: bitseq.New([]byte{0b011}, 3),
		}, {
			// (0 0)
			// (1 0)
			// (0 1)
			// (1 0)
			mat: toeplitz{
				diags: bitseq.New([]byte{0b00101}, 5),
				m:     4,
				n:     2,
			},
			// (1 0)^T
			vec: bitseq.New([]byte{0b01}, 2),
			// (0 1 0 1)^T
			eout: bitseq.New([]byte{0b1010}, 4),
		}, {
			// (1 1 1 0)
			// (0 1 1 1)
			mat: toeplitz{
				diags: bitseq.New([]byte{0b01110}, 5),
				m:     2,
				n:     4,
			},
			// (0 1 0 1)^T
			vec: bitseq.New([]byte{0b01}, 4),
			// (1 0)^T
			eout: bitseq.New([]byte{0b01}, 2),
		},
	}

	for _, tc := range tcs {
		t.Run(fmt.Sprintf("%dx%d", tc.mat.m, tc.mat.n), func(t *testing.T) {
			out, err := tc.mat.Mul(tc.vec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Len() != tc.eout.Len() {
				t.Errorf("got vector of len %d, want %d", out.Len(), tc.eout.Len())
			}
			if !bytes.Equal(out.Data(), tc.eout.Data()) {
				t.Errorf("T*v == %v, want %v", out.Data(), tc.eout.Data())
			}
		})
	}
}

func TestToeplitzShape(t *testing.T) {
	tcs := []struct {
		name string
		mat  toeplitz
		vec  bitseq.Bits
		eErr bool
	}{
		{
			name: "mismatched dims",
			mat: toeplitz{
				diags: bitseq.New(nil, 5),
				m:     3,
				n:     3,
			},
			vec:  bitseq.New(nil, 2),
			eErr: true,
		}, {
			name: "insufficient diags",
			mat: toeplitz{
				diags: bitseq.New(nil, 2),
				m:     3,
				n:     3,
			},
			vec:  bitseq.New(nil, 3),
			eErr: true,
		}, {
			name: "extra diags",
			mat: toeplitz{
				diags: bitseq.New(nil, 1024),
				m:     3,
				n:     3,
			},
			vec:  bitseq.New(nil, 3),
			eErr: false,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.mat.Mul(tc.vec)
			if !tc.eErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tc.eErr && err == nil {
				t.Errorf("expected error: got nil")
			}
		})
	}
}
