package sample

import (
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/taurusgroup/chaum-pedersen/internal/params"
)

const maxIterations = 255

var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

// ErrZeroBound is the panic value of Below when asked for an element of an empty range.
var ErrZeroBound = errors.New("sample: bound must be positive")

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// ModN samples a uniform element of ℤₙ, i.e. an integer in [0, n).
//
// Candidates are drawn with the bit length of n and rejected until one is below n,
// so each attempt succeeds with probability at least 1/2.
func ModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	bits := n.BitLen()
	buf := make([]byte, (bits+7)/8)
	mask := byte(0xff >> (8*len(buf) - bits))
	out := new(saferith.Nat)
	for {
		mustReadBits(rand, buf)
		buf[0] &= mask
		out.SetBytes(buf)
		if _, _, lt := out.CmpMod(n); lt == 1 {
			return out
		}
	}
}

// Below returns a uniform integer in [0, bound).
//
// It panics with ErrZeroBound if bound = 0. For bound = 1 the result is always 0.
func Below(rand io.Reader, bound *saferith.Nat) *saferith.Nat {
	if bound == nil || bound.EqZero() == 1 {
		panic(ErrZeroBound)
	}
	return ModN(rand, saferith.ModulusFromNat(bound))
}

// Scalar returns a uniform secp256k1 scalar.
func Scalar(rand io.Reader) *secp256k1.ModNScalar {
	var s secp256k1.ModNScalar
	buf := make([]byte, params.BytesSecp256k1Scalar)
	for i := 0; i < maxIterations; i++ {
		mustReadBits(rand, buf)
		// reject instead of reducing, to keep the distribution uniform
		if overflow := s.SetByteSlice(buf); !overflow {
			return &s
		}
	}
	panic(ErrMaxIterations)
}
