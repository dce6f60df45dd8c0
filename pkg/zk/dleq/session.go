package zkdleq

import (
	"errors"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/chaum-pedersen/pkg/math/sample"
)

// ErrNonceReused is the panic value of Nonce.Respond when the nonce already answered a challenge.
//
// Answering two different challenges with the same k reveals x.
var ErrNonceReused = errors.New("zkdleq: nonce was already used")

// Public holds the values published by the prover, (y₁, y₂) = (αˣ, βˣ).
type Public struct {
	Y1, Y2 *saferith.Nat
}

// Commitment is the first message of the protocol, (r₁, r₂) = (αᵏ, βᵏ).
type Commitment struct {
	R1, R2 *saferith.Nat
}

// Nonce is the prover's secret randomness k for a single session.
//
// A Nonce is not safe for concurrent use. It answers exactly one challenge.
type Nonce struct {
	k          *saferith.Nat
	commitment Commitment
}

// NewNonce samples k ∈ ℤq and computes the corresponding commitment.
func NewNonce(rand io.Reader, pp *Parameters) *Nonce {
	k := sample.ModN(rand, pp.q)
	return &Nonce{
		k:          k,
		commitment: pp.CommitmentFromNonce(k),
	}
}

// Commitment returns (r₁, r₂), to be sent to the verifier.
func (n *Nonce) Commitment() Commitment {
	return n.commitment
}

// Respond returns s = k - c⋅x (mod q), and erases k.
//
// It panics with ErrNonceReused if called a second time.
func (n *Nonce) Respond(pp *Parameters, c, x *saferith.Nat) *saferith.Nat {
	if n.k == nil {
		panic(ErrNonceReused)
	}
	s := pp.Solve(n.k, c, x)
	n.k.SetUint64(0)
	n.k = nil
	return s
}

// NewChallenge samples the verifier's challenge c ∈ ℤq.
func NewChallenge(rand io.Reader, pp *Parameters) *saferith.Nat {
	return sample.ModN(rand, pp.q)
}
