// Package group builds Chaum-Pedersen groups for tests, benchmarks and the demo.
//
// Generating parameters is the job of whoever deploys the proof, so the
// library code in pkg/ never imports this package; only tests and commands do.
package group

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/chaum-pedersen/internal/params"
	"github.com/taurusgroup/chaum-pedersen/pkg/pool"
)

// Group is the subgroup of order Q of ℤₚˣ, with two generators.
type Group struct {
	P, Q, Alpha, Beta *saferith.Nat
}

var (
	ErrTooSmall           = fmt.Errorf("group: safe primes must have at least %d bits", params.MinBitsSafePrime)
	ErrMaxPrimeIterations = fmt.Errorf("group: failed to generate prime after %d iterations", maxPrimeIterations)
	errCandidateExhausted = errors.New("group: candidate exhausted")
)

// Small returns the group p = 23, q = 11, α = 4, β = 9.
func Small() Group {
	return Group{
		P:     new(saferith.Nat).SetUint64(23),
		Q:     new(saferith.Nat).SetUint64(11),
		Alpha: new(saferith.Nat).SetUint64(4),
		Beta:  new(saferith.Nat).SetUint64(9),
	}
}

// SafePrime returns a group where p is a safe prime of the given size, so that q = (p - 1) / 2.
//
// α = 4 and β = 9 are squares different from 1, so both generate the
// quadratic residues, which is exactly the subgroup of order q.
func SafePrime(rand io.Reader, bits int, pl *pool.Pool) (Group, error) {
	p, err := SafePrimeNat(rand, bits, pl)
	if err != nil {
		return Group{}, err
	}
	q := new(saferith.Nat).Rsh(p, 1, -1)
	return Group{
		P:     p,
		Q:     q,
		Alpha: new(saferith.Nat).SetUint64(4),
		Beta:  new(saferith.Nat).SetUint64(9),
	}, nil
}

// SafePrimeNat returns a prime p of exactly bits bits, such that (p - 1) / 2 is also prime.
//
// The search is spread over pl, reading randomness from rand under a lock.
func SafePrimeNat(rand io.Reader, bits int, pl *pool.Pool) (*saferith.Nat, error) {
	if bits < params.MinBitsSafePrime {
		return nil, ErrTooSmall
	}
	reader := pool.NewLockedReader(rand)

	attempts := make(chan struct{}, maxPrimeIterations)
	for i := 0; i < maxPrimeIterations; i++ {
		attempts <- struct{}{}
	}
	close(attempts)

	results := pl.Search(1, func() interface{} {
		if _, ok := <-attempts; !ok {
			return ErrMaxPrimeIterations
		}
		p, err := trySafePrime(reader, bits)
		if err != nil {
			if errors.Is(err, errCandidateExhausted) {
				return nil
			}
			return err
		}
		return p
	})

	switch r := results[0].(type) {
	case *big.Int:
		return new(saferith.Nat).SetBig(r, bits), nil
	case error:
		return nil, r
	default:
		return nil, fmt.Errorf("group: unexpected search result %T", r)
	}
}

// maxPrimeIterations is the number of candidates to try before giving up.
//
// Safe primes are sparse, so this is much larger than the bound used for sampling.
const maxPrimeIterations = 100_000

// primalityIterations is the number of Miller-Rabin rounds, the same number Go uses internally.
const primalityIterations = 20

// trialPrimes contains the first odd prime numbers.
//
// A safe prime p = 2q + 1 > 773 satisfies p ≠ 0 and p ≠ 1 mod each of them.
var trialPrimes = []uint64{
	3, 5, 7, 11, 13, 17, 19, 23,
	29, 31, 37, 41, 43, 47, 53, 59,
	61, 67, 71, 73, 79, 83, 89, 97,
	101, 103, 107, 109, 113, 127, 131, 137,
	139, 149, 151, 157, 163, 167, 173, 179,
	181, 191, 193, 197, 199, 211, 223, 227,
	229, 233, 239, 241, 251, 257, 263, 269,
	271, 277, 281, 283, 293, 307, 311, 313,
	317, 331, 337, 347, 349, 353, 359, 367,
	373, 379, 383, 389, 397, 401, 409, 419,
	421, 431, 433, 439, 443, 449, 457, 461,
	463, 467, 479, 487, 491, 499, 503, 509,
	521, 523, 541, 547, 557, 563, 569, 571,
	577, 587, 593, 599, 601, 607, 613, 617,
	619, 631, 641, 643, 647, 653, 659, 661,
	673, 677, 683, 691, 701, 709, 719, 727,
	733, 739, 743, 751, 757, 761, 769, 773,
}

// trySafePrime samples a random starting point, and walks from there over
// numbers which are 3 mod 4, returning the first safe prime it finds.
//
// It returns errCandidateExhausted if the walk leaves the allowed bit length first.
func trySafePrime(rand io.Reader, bits int) (*big.Int, error) {
	// The number of significant bits in the first byte
	topBits := uint(bits % 8)
	if topBits == 0 {
		topBits = 8
	}
	buf := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil, fmt.Errorf("group: read randomness: %w", err)
	}
	// Clear the bits above the requested size, and set the top one.
	buf[0] &= byte(1<<topBits) - 1
	buf[0] |= byte(1) << (topBits - 1)
	// Safe primes are 3 mod 4, and we keep it that way by moving in steps of 4.
	buf[len(buf)-1] |= 3
	base := new(big.Int).SetBytes(buf)

	mods := make([]uint64, len(trialPrimes))
	scratch := new(big.Int)
	for i, prime := range trialPrimes {
		scratch.SetUint64(prime)
		mods[i] = scratch.Mod(base, scratch).Uint64()
	}

	p := new(big.Int)
	q := new(big.Int)
	// Past this distance from base, a fresh starting point is cheaper than walking further.
	maxDelta := uint64(1<<20) - trialPrimes[len(trialPrimes)-1]
NextDelta:
	for delta := uint64(0); delta < maxDelta; delta += 4 {
		for i, prime := range trialPrimes {
			// If p = 0 mod r, then p is not prime.
			// If p = 1 mod r, then (p - 1) / 2 = 0 mod r, so q is not prime.
			if (mods[i]+delta)%prime <= 1 {
				continue NextDelta
			}
		}
		p.SetUint64(delta)
		p.Add(p, base)
		if p.BitLen() != bits {
			return nil, errCandidateExhausted
		}
		q.Rsh(p, 1)
		// q is less likely to be prime, so it is tested first.
		if !q.ProbablyPrime(primalityIterations) {
			continue
		}
		if !p.ProbablyPrime(primalityIterations) {
			continue
		}
		return p, nil
	}
	return nil, errCandidateExhausted
}
