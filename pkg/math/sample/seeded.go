package sample

import (
	"io"

	"golang.org/x/crypto/sha3"
)

const seededDomain = "chaum-pedersen/sample/seeded"

// NewSeededReader returns a deterministic stream of bytes derived from seed.
//
// The stream is the output of cSHAKE256, customized with a fixed domain, after
// absorbing seed. Two readers created from the same seed produce the same bytes,
// which makes proofs reproducible in tests.
//
// The returned reader must not be shared between goroutines without wrapping it
// in a pool.LockedReader. It must never replace crypto/rand.Reader outside of tests.
func NewSeededReader(seed []byte) io.Reader {
	h := sha3.NewCShake256(nil, []byte(seededDomain))
	_, _ = h.Write(seed)
	return h
}
