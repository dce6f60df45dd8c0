package zkdleq

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/chaum-pedersen/pkg/hash"
	"github.com/taurusgroup/chaum-pedersen/pkg/math/arith"
	"github.com/taurusgroup/chaum-pedersen/pkg/math/sample"
)

// Proof is a non-interactive proof that log_α(y₁) = log_β(y₂), where the
// challenge is derived from a hash of the statement and the commitment.
type Proof struct {
	Commitment
	// S = k - c⋅x (mod q)
	S *saferith.Nat
}

// NewProof generates a proof that public = (αˣ, βˣ).
//
// The hash should already contain whatever context binds the proof to its session.
// It is modified by this function.
func NewProof(hash *hash.Hash, pp *Parameters, public Public, x *saferith.Nat, rand io.Reader) *Proof {
	n := NewNonce(rand, pp)
	commitment := n.Commitment()

	c, err := challenge(hash, pp, public, commitment)
	if err != nil {
		return nil
	}

	return &Proof{
		Commitment: commitment,
		S:          n.Respond(pp, c, x),
	}
}

// IsValid checks that all values of the proof are canonical and non-zero.
func (p *Proof) IsValid(pp *Parameters) bool {
	if p == nil {
		return false
	}
	if !arith.IsValidModN(pp.p, p.R1, p.R2) {
		return false
	}
	if p.R1.EqZero()|p.R2.EqZero() == 1 {
		return false
	}
	return arith.IsValidModN(pp.q, p.S)
}

// Verify checks the proof against public, using the same hash state as the prover.
func (p *Proof) Verify(hash *hash.Hash, pp *Parameters, public Public) bool {
	if !p.IsValid(pp) {
		return false
	}
	if !arith.IsValidModN(pp.p, public.Y1, public.Y2) {
		return false
	}
	if public.Y1.EqZero()|public.Y2.EqZero() == 1 {
		return false
	}

	c, err := challenge(hash, pp, public, p.Commitment)
	if err != nil {
		return false
	}

	return pp.Verify(p.R1, p.R2, public.Y1, public.Y2, c, p.S)
}

func challenge(hash *hash.Hash, pp *Parameters, public Public, commitment Commitment) (*saferith.Nat, error) {
	err := hash.WriteAny(pp.p, pp.q, pp.alpha, pp.beta,
		public.Y1, public.Y2,
		commitment.R1, commitment.R2)
	if err != nil {
		return nil, err
	}
	return sample.ModN(hash.Digest(), pp.q), nil
}

type proofMarshal struct {
	R1, R2, S *saferith.Nat
}

// MarshalBinary implements encoding.BinaryMarshaler, encoding the proof as CBOR.
func (p *Proof) MarshalBinary() ([]byte, error) {
	if p == nil || p.R1 == nil || p.R2 == nil || p.S == nil {
		return nil, ErrMissingValue
	}
	return cbor.Marshal(proofMarshal{R1: p.R1, R2: p.R2, S: p.S})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
// The values are not checked against any group, Verify does that.
func (p *Proof) UnmarshalBinary(data []byte) error {
	var m proofMarshal
	if err := cbor.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("zkdleq: unmarshal proof: %w", err)
	}
	if m.R1 == nil || m.R2 == nil || m.S == nil {
		return fmt.Errorf("zkdleq: unmarshal proof: %w", ErrMissingValue)
	}
	p.R1, p.R2, p.S = m.R1, m.R2, m.S
	return nil
}
