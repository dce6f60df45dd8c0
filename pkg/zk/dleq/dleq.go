package zkdleq

import (
	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/chaum-pedersen/pkg/math/arith"
)

// Exponentiate returns baseᵉ (mod modulus).
//
// It panics with arith.ErrZeroModulus if modulus = 0.
func Exponentiate(base, exponent, modulus *saferith.Nat) *saferith.Nat {
	return arith.Exp(base, exponent, modulus)
}

// Solve returns the prover's response s = k - c⋅x (mod q), as an element of [0, q).
//
// It panics with arith.ErrZeroModulus if q = 0.
func Solve(k, c, x, q *saferith.Nat) *saferith.Nat {
	return solve(k, c, x, arith.ModulusFromNat(q))
}

// Verify checks
//
//	r₁ = αˢ⋅y₁ᶜ (mod p)
//	r₂ = βˢ⋅y₂ᶜ (mod p)
//
// where both products are reduced mod p before being compared to r₁ and r₂.
// A commitment which isn't a canonical residue mod p is therefore never accepted.
//
// It panics with arith.ErrZeroModulus if p = 0.
func Verify(r1, r2, y1, y2, alpha, beta, c, s, p *saferith.Nat) bool {
	return verify(arith.ModulusFromNat(p), alpha, beta, r1, r2, y1, y2, c, s)
}

func solve(k, c, x *saferith.Nat, q *saferith.Modulus) *saferith.Nat {
	// c⋅x can exceed k, so the subtraction happens in ℤq rather than over the naturals.
	cx := arith.MulMod(c, x, q)
	return arith.SubMod(k, cx, q)
}

func verify(p *saferith.Modulus, alpha, beta, r1, r2, y1, y2, c, s *saferith.Nat) bool {
	for _, v := range []*saferith.Nat{alpha, beta, r1, r2, y1, y2, c, s} {
		if v == nil {
			return false
		}
	}

	// αˢ⋅y₁ᶜ (mod p)
	lhs1 := arith.MulMod(arith.ExpMod(alpha, s, p), arith.ExpMod(y1, c, p), p)
	// βˢ⋅y₂ᶜ (mod p)
	lhs2 := arith.MulMod(arith.ExpMod(beta, s, p), arith.ExpMod(y2, c, p), p)

	return r1.Eq(lhs1)&r2.Eq(lhs2) == 1
}
