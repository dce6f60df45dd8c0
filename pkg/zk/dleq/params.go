package zkdleq

import (
	"errors"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/chaum-pedersen/pkg/math/arith"
)

// Errors returned by NewParameters, Validate and the encoding functions.
var (
	ErrMissingValue       = errors.New("zkdleq: value is missing")
	ErrZeroModulus        = errors.New("zkdleq: p and q must be non-zero")
	ErrGeneratorRange     = errors.New("zkdleq: generator is not in [2, p)")
	ErrGeneratorOrder     = errors.New("zkdleq: generator does not have order q")
	ErrGeneratorsEqual    = errors.New("zkdleq: α and β are equal")
	ErrOrderDoesNotDivide = errors.New("zkdleq: q does not divide p - 1")
)

// Parameters describes the group used by the proof: two generators α and β
// of the subgroup of order q in ℤₚˣ.
//
// Parameters are immutable once created, and can be shared between any number
// of concurrent provers and verifiers.
type Parameters struct {
	p, q        *saferith.Modulus
	alpha, beta *saferith.Nat
}

// NewParameters creates Parameters from p, q, α and β.
//
// Apart from requiring p and q to be non-zero, no check is performed on the values.
// Use Validate to check that they actually describe a subgroup of order q.
func NewParameters(p, q, alpha, beta *saferith.Nat) (*Parameters, error) {
	if p == nil || q == nil || alpha == nil || beta == nil {
		return nil, ErrMissingValue
	}
	if p.EqZero()|q.EqZero() == 1 {
		return nil, ErrZeroModulus
	}
	return &Parameters{
		p:     saferith.ModulusFromNat(p),
		q:     saferith.ModulusFromNat(q),
		alpha: new(saferith.Nat).SetNat(alpha),
		beta:  new(saferith.Nat).SetNat(beta),
	}, nil
}

// P returns the modulus of the group.
func (pp *Parameters) P() *saferith.Modulus { return pp.p }

// Q returns the order of the subgroup generated by α and β.
func (pp *Parameters) Q() *saferith.Modulus { return pp.q }

// Alpha returns a copy of the first generator.
func (pp *Parameters) Alpha() *saferith.Nat { return new(saferith.Nat).SetNat(pp.alpha) }

// Beta returns a copy of the second generator.
func (pp *Parameters) Beta() *saferith.Nat { return new(saferith.Nat).SetNat(pp.beta) }

// Exp returns baseᵉ (mod p).
func (pp *Parameters) Exp(base, e *saferith.Nat) *saferith.Nat {
	return arith.ExpMod(base, e, pp.p)
}

// Solve returns s = k - c⋅x (mod q).
func (pp *Parameters) Solve(k, c, x *saferith.Nat) *saferith.Nat {
	return solve(k, c, x, pp.q)
}

// Verify checks r₁ = αˢ⋅y₁ᶜ (mod p) and r₂ = βˢ⋅y₂ᶜ (mod p).
func (pp *Parameters) Verify(r1, r2, y1, y2, c, s *saferith.Nat) bool {
	return verify(pp.p, pp.alpha, pp.beta, r1, r2, y1, y2, c, s)
}

// PublicFromSecret returns (y₁, y₂) = (αˣ, βˣ).
func (pp *Parameters) PublicFromSecret(x *saferith.Nat) Public {
	return Public{
		Y1: pp.Exp(pp.alpha, x),
		Y2: pp.Exp(pp.beta, x),
	}
}

// CommitmentFromNonce returns (r₁, r₂) = (αᵏ, βᵏ).
func (pp *Parameters) CommitmentFromNonce(k *saferith.Nat) Commitment {
	return Commitment{
		R1: pp.Exp(pp.alpha, k),
		R2: pp.Exp(pp.beta, k),
	}
}

// Validate checks that
//   - q divides p - 1,
//   - α, β ∈ [2, p),
//   - α ≠ β,
//   - α^q = β^q = 1 (mod p).
//
// The primality of p and q is not checked.
func (pp *Parameters) Validate() error {
	one := new(saferith.Nat).SetUint64(1)
	pMinusOne := new(saferith.Nat).Sub(pp.p.Nat(), one, -1)
	if new(saferith.Nat).Mod(pMinusOne, pp.q).EqZero() != 1 {
		return ErrOrderDoesNotDivide
	}

	for i, g := range []*saferith.Nat{pp.alpha, pp.beta} {
		name := [2]string{"α", "β"}[i]
		if !arith.IsValidModN(pp.p, g) || g.EqZero() == 1 || arith.IsOne(g) {
			return fmt.Errorf("%w: %s", ErrGeneratorRange, name)
		}
		if !arith.IsOne(pp.Exp(g, pp.q.Nat())) {
			return fmt.Errorf("%w: %s", ErrGeneratorOrder, name)
		}
	}

	if pp.alpha.Eq(pp.beta) == 1 {
		return ErrGeneratorsEqual
	}
	return nil
}

type parametersMarshal struct {
	P, Q, Alpha, Beta *saferith.Nat
}

// MarshalBinary implements encoding.BinaryMarshaler, encoding the parameters as CBOR.
func (pp *Parameters) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(parametersMarshal{
		P:     pp.p.Nat(),
		Q:     pp.q.Nat(),
		Alpha: pp.alpha,
		Beta:  pp.beta,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (pp *Parameters) UnmarshalBinary(data []byte) error {
	var m parametersMarshal
	if err := cbor.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("zkdleq: unmarshal parameters: %w", err)
	}
	decoded, err := NewParameters(m.P, m.Q, m.Alpha, m.Beta)
	if err != nil {
		return fmt.Errorf("zkdleq: unmarshal parameters: %w", err)
	}
	*pp = *decoded
	return nil
}
