package zkdleq

import (
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/chaum-pedersen/pkg/math/arith"
)

func nat(v uint64) *saferith.Nat {
	return new(saferith.Nat).SetUint64(v)
}

func smallParameters(t testing.TB) *Parameters {
	pp, err := NewParameters(nat(23), nat(11), nat(4), nat(9))
	require.NoError(t, err)
	return pp
}

// solveBranching computes k - c⋅x mod q over the naturals, by branching on the sign of k - c⋅x.
func solveBranching(k, c, x, q *big.Int) *big.Int {
	cx := new(big.Int).Mul(c, x)
	if k.Cmp(cx) >= 0 {
		s := new(big.Int).Sub(k, cx)
		return s.Mod(s, q)
	}
	s := new(big.Int).Sub(cx, k)
	s.Mod(s, q)
	return s.Sub(q, s)
}

func TestRegressionVector(t *testing.T) {
	p, q, alpha, beta, x := nat(23), nat(11), nat(4), nat(9), nat(6)

	y1 := Exponentiate(alpha, x, p)
	y2 := Exponentiate(beta, x, p)
	assert.True(t, y1.Eq(nat(2)) == 1, "y1 = %v", y1)
	assert.True(t, y2.Eq(nat(3)) == 1, "y2 = %v", y2)

	k, c := nat(7), nat(4)
	r1 := Exponentiate(alpha, k, p)
	r2 := Exponentiate(beta, k, p)
	assert.True(t, r1.Eq(nat(8)) == 1, "r1 = %v", r1)
	assert.True(t, r2.Eq(nat(4)) == 1, "r2 = %v", r2)

	// 7 - 24 = -17 = 5 (mod 11)
	s := Solve(k, c, x, q)
	assert.True(t, s.Eq(nat(5)) == 1, "s = %v", s)

	assert.True(t, Verify(r1, r2, y1, y2, alpha, beta, c, s, p))
}

func TestVerify_ReducesProduct(t *testing.T) {
	p, alpha, beta := nat(23), nat(4), nat(9)
	y1, y2, r1, r2, c, s := nat(2), nat(3), nat(8), nat(4), nat(4), nat(5)

	// αˢ⋅y₁ᶜ = 12⋅16 = 192 before reduction, which is not r₁.
	raw := new(big.Int).Mul(
		Exponentiate(alpha, s, p).Big(),
		Exponentiate(y1, c, p).Big(),
	)
	require.Equal(t, 1, raw.Cmp(p.Big()), "the raw product should exceed p")
	require.NotEqual(t, 0, raw.Cmp(r1.Big()))

	assert.True(t, Verify(r1, r2, y1, y2, alpha, beta, c, s, p))

	// Comparing against the unreduced product, or a non-canonical commitment, fails.
	rawNat := new(saferith.Nat).SetBig(raw, raw.BitLen())
	assert.False(t, Verify(rawNat, r2, y1, y2, alpha, beta, c, s, p))
	r1PlusP := new(saferith.Nat).Add(r1, p, -1)
	assert.False(t, Verify(r1PlusP, r2, y1, y2, alpha, beta, c, s, p))
}

func TestSmallGroup_Exhaustive(t *testing.T) {
	pp := smallParameters(t)
	for x := uint64(0); x < 11; x++ {
		public := pp.PublicFromSecret(nat(x))
		for k := uint64(0); k < 11; k++ {
			commitment := pp.CommitmentFromNonce(nat(k))
			for c := uint64(0); c < 11; c++ {
				s := pp.Solve(nat(k), nat(c), nat(x))
				require.True(t, pp.Verify(commitment.R1, commitment.R2, public.Y1, public.Y2, nat(c), s),
					"completeness failed for x=%d k=%d c=%d", x, k, c)

				for sBad := uint64(0); sBad < 11; sBad++ {
					if nat(sBad).Eq(s) == 1 {
						continue
					}
					require.False(t, pp.Verify(commitment.R1, commitment.R2, public.Y1, public.Y2, nat(c), nat(sBad)),
						"accepted tampered response for x=%d k=%d c=%d s=%d", x, k, c, sBad)
				}
			}
		}
	}
}

func TestSolve_MatchesBranching(t *testing.T) {
	q := big.NewInt(11)
	for k := int64(0); k < 30; k++ {
		for c := int64(0); c < 11; c++ {
			for x := int64(0); x < 11; x++ {
				s := Solve(nat(uint64(k)), nat(uint64(c)), nat(uint64(x)), nat(11)).Big()
				expected := solveBranching(big.NewInt(k), big.NewInt(c), big.NewInt(x), q)

				require.True(t, s.Sign() >= 0 && s.Cmp(q) < 0, "s = %v out of range", s)
				// The branching form returns q instead of 0 when c⋅x - k is a positive multiple of q.
				require.Equal(t, 0, expected.Mod(expected, q).Cmp(s), "k=%d c=%d x=%d", k, c, x)
			}
		}
	}
}

func TestSolve_Boundaries(t *testing.T) {
	q := nat(11)

	// k = c⋅x
	assert.True(t, Solve(nat(6), nat(2), nat(3), q).EqZero() == 1)
	// c⋅x - k is a multiple of q
	assert.True(t, Solve(nat(2), nat(4), nat(6), q).EqZero() == 1)
	// c = 0 gives k mod q
	assert.True(t, Solve(nat(7), nat(0), nat(6), q).Eq(nat(7)) == 1)
	assert.True(t, Solve(nat(18), nat(0), nat(6), q).Eq(nat(7)) == 1)
	// zero secret
	assert.True(t, Solve(nat(7), nat(5), nat(0), q).Eq(nat(7)) == 1)
}

func TestSolve_Deterministic(t *testing.T) {
	k, c, x, q := nat(3), nat(9), nat(10), nat(11)
	first := Solve(k, c, x, q)
	for i := 0; i < 10; i++ {
		assert.True(t, Solve(k, c, x, q).Eq(first) == 1)
	}
}

func TestZeroChallenge(t *testing.T) {
	pp := smallParameters(t)
	k, x := nat(7), nat(6)
	public := pp.PublicFromSecret(x)
	commitment := pp.CommitmentFromNonce(k)
	s := pp.Solve(k, nat(0), x)
	assert.True(t, s.Eq(k) == 1)

	// With c = 0 the check degenerates to r₁ = αˢ and r₂ = βˢ.
	assert.True(t, commitment.R1.Eq(pp.Exp(pp.Alpha(), s)) == 1)
	assert.True(t, commitment.R2.Eq(pp.Exp(pp.Beta(), s)) == 1)
	assert.True(t, pp.Verify(commitment.R1, commitment.R2, public.Y1, public.Y2, nat(0), s))
}

func TestZeroModulus(t *testing.T) {
	assert.PanicsWithValue(t, arith.ErrZeroModulus, func() {
		Solve(nat(1), nat(1), nat(1), nat(0))
	})
	assert.PanicsWithValue(t, arith.ErrZeroModulus, func() {
		Verify(nat(1), nat(1), nat(1), nat(1), nat(4), nat(9), nat(1), nat(1), nat(0))
	})
	assert.PanicsWithValue(t, arith.ErrZeroModulus, func() {
		Exponentiate(nat(1), nat(1), nat(0))
	})
}

func TestVerify_NilValues(t *testing.T) {
	pp := smallParameters(t)
	assert.False(t, pp.Verify(nil, nat(4), nat(2), nat(3), nat(4), nat(5)))
	assert.False(t, pp.Verify(nat(8), nat(4), nat(2), nat(3), nil, nat(5)))
}

func TestStatelessMatchesStateful(t *testing.T) {
	pp := smallParameters(t)
	p, q, alpha, beta := pp.P().Nat(), pp.Q().Nat(), pp.Alpha(), pp.Beta()
	for k := uint64(0); k < 11; k++ {
		c, x := nat((k*7+3)%11), nat((k*5+1)%11)
		s := Solve(nat(k), c, x, q)
		assert.True(t, s.Eq(pp.Solve(nat(k), c, x)) == 1)

		public := pp.PublicFromSecret(x)
		commitment := pp.CommitmentFromNonce(nat(k))
		assert.Equal(t,
			pp.Verify(commitment.R1, commitment.R2, public.Y1, public.Y2, c, s),
			Verify(commitment.R1, commitment.R2, public.Y1, public.Y2, alpha, beta, c, s, p))
	}
}

func TestExponentiate_EvenModulus(t *testing.T) {
	assert.True(t, Exponentiate(nat(3), nat(5), nat(10)).Eq(nat(3)) == 1)
	assert.True(t, Exponentiate(nat(5), nat(3), nat(38)).Eq(nat(11)) == 1)

	// 3 has order 4 mod 10, so the same equations hold in a group with an even modulus.
	p := nat(10)
	y := Exponentiate(nat(3), nat(2), p)
	r := Exponentiate(nat(3), nat(3), p)
	s := Solve(nat(3), nat(1), nat(2), nat(4))
	assert.True(t, Verify(r, r, y, y, nat(3), nat(3), nat(1), s, p))
}
