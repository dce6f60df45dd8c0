package arith

import (
	"errors"
	"math/bits"

	"github.com/cronokirby/saferith"
)

// ErrZeroModulus is the panic value used when arithmetic is requested modulo 0.
var ErrZeroModulus = errors.New("arith: modulus must be at least 1")

// ModulusFromNat creates a saferith.Modulus from n.
//
// It panics with ErrZeroModulus if n = 0, since ℤ₀ has no residues to reduce to.
func ModulusFromNat(n *saferith.Nat) *saferith.Modulus {
	if n == nil || n.EqZero() == 1 {
		panic(ErrZeroModulus)
	}
	return saferith.ModulusFromNat(n)
}

// Exp returns baseᵉ (mod m), for a modulus m ≥ 1 given as a natural number.
func Exp(base, e, m *saferith.Nat) *saferith.Nat {
	return ExpMod(base, e, ModulusFromNat(m))
}

// ExpMod returns baseᵉ (mod m).
//
// The base does not need to be reduced. When m = 1 the result is always 0.
// Even moduli are supported.
func ExpMod(base, e *saferith.Nat, m *saferith.Modulus) *saferith.Nat {
	if isOne(m) {
		return new(saferith.Nat).SetUint64(0)
	}
	t := trailingZeros(m)
	if t == 0 {
		x := new(saferith.Nat).Mod(base, m)
		return new(saferith.Nat).Exp(x, e, m)
	}
	return expEven(base, e, m, t)
}

// expEven computes baseᵉ (mod m) for m = 2ᵗ⋅m', with m' odd.
//
// saferith only exponentiates modulo odd numbers, so the result is recombined from
//
//	a₁ = baseᵉ (mod m')
//	a₂ = baseᵉ (mod 2ᵗ)
//
// as a₁ + m'⋅((a₂ - a₁)⋅m'⁻¹ mod 2ᵗ).
func expEven(base, e *saferith.Nat, m *saferith.Modulus, t uint) *saferith.Nat {
	mOdd := new(saferith.Nat).Rsh(m.Nat(), t, -1)
	a1 := ExpMod(base, e, saferith.ModulusFromNat(mOdd))
	a2 := expPow2(base, e, int(t))

	h := new(saferith.Nat).Sub(a2, a1, int(t))
	h.Mul(h, inversePow2(mOdd, int(t)), int(t))

	result := new(saferith.Nat).Mul(mOdd, h, -1)
	result.Add(result, a1, -1)
	return result.Mod(result, m)
}

// expPow2 returns baseᵉ (mod 2ᵗ), by square and multiply over the bits of e.
func expPow2(base, e *saferith.Nat, t int) *saferith.Nat {
	one := new(saferith.Nat).SetUint64(1)
	b := new(saferith.Nat).Mul(base, one, t)
	result := new(saferith.Nat).Mul(one, one, t)
	product := new(saferith.Nat)
	for _, by := range e.Bytes() {
		for j := 7; j >= 0; j-- {
			result.Mul(result, result, t)
			product.Mul(result, b, t)
			result.CondAssign(saferith.Choice((by>>uint(j))&1), product)
		}
	}
	return result
}

// inversePow2 returns m⁻¹ (mod 2ᵗ) for an odd m, by Newton iteration.
func inversePow2(m *saferith.Nat, t int) *saferith.Nat {
	two := new(saferith.Nat).SetUint64(2)
	// m⋅m = 1 (mod 8) for every odd m, and each step doubles the number of correct bits.
	inv := new(saferith.Nat).Mul(m, new(saferith.Nat).SetUint64(1), t)
	tmp := new(saferith.Nat)
	for correct := 3; correct < t; correct *= 2 {
		tmp.Mul(m, inv, t)
		tmp.Sub(two, tmp, t)
		inv.Mul(inv, tmp, t)
	}
	return inv
}

// trailingZeros returns the largest t such that 2ᵗ divides m.
func trailingZeros(m *saferith.Modulus) uint {
	buf := m.Bytes()
	var t uint
	for i := len(buf) - 1; i >= 0; i-- {
		if buf[i] != 0 {
			return t + uint(bits.TrailingZeros8(buf[i]))
		}
		t += 8
	}
	return t
}

// MulMod returns a⋅b (mod m).
//
// Both the inputs are reduced first, and so is the product.
func MulMod(a, b *saferith.Nat, m *saferith.Modulus) *saferith.Nat {
	if isOne(m) {
		return new(saferith.Nat).SetUint64(0)
	}
	x := new(saferith.Nat).Mod(a, m)
	y := new(saferith.Nat).Mod(b, m)
	return x.ModMul(x, y, m)
}

// SubMod returns a - b (mod m), as an element of [0, m).
func SubMod(a, b *saferith.Nat, m *saferith.Modulus) *saferith.Nat {
	if isOne(m) {
		return new(saferith.Nat).SetUint64(0)
	}
	x := new(saferith.Nat).Mod(a, m)
	y := new(saferith.Nat).Mod(b, m)
	return x.ModSub(x, y, m)
}

// IsValidModN checks that all values are canonical residues mod n, i.e. 0 ≤ x < n.
//
// A nil value is never valid.
func IsValidModN(n *saferith.Modulus, values ...*saferith.Nat) bool {
	for _, x := range values {
		if x == nil {
			return false
		}
		if _, _, lt := x.CmpMod(n); lt != 1 {
			return false
		}
	}
	return true
}

// IsOne returns true if x = 1.
func IsOne(x *saferith.Nat) bool {
	return x.Eq(new(saferith.Nat).SetUint64(1)) == 1
}

// isOne reports whether m = 1, where every residue is 0.
func isOne(m *saferith.Modulus) bool {
	return m.BitLen() <= 1
}
