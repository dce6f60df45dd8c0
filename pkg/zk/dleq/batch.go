package zkdleq

import (
	"github.com/taurusgroup/chaum-pedersen/pkg/hash"
	"github.com/taurusgroup/chaum-pedersen/pkg/pool"
)

// VerifyBatch verifies proofs[i] against publics[i] for every i, spreading the work over pl.
//
// Each proof is checked against a clone of h, so h must be in the state
// the provers started from. A nil pool verifies sequentially.
//
// It returns the indices of the proofs that failed, and true if there are none.
func VerifyBatch(pl *pool.Pool, h *hash.Hash, pp *Parameters, publics []Public, proofs []*Proof) ([]int, bool) {
	if len(publics) != len(proofs) {
		failed := make([]int, len(proofs))
		for i := range failed {
			failed[i] = i
		}
		return failed, false
	}

	hashes := make([]*hash.Hash, len(proofs))
	for i := range hashes {
		hashes[i] = h.Clone()
	}
	results := pl.Parallelize(len(proofs), func(i int) interface{} {
		return proofs[i].Verify(hashes[i], pp, publics[i])
	})

	var failed []int
	for i, ok := range results {
		if !ok.(bool) {
			failed = append(failed, i)
		}
	}
	return failed, len(failed) == 0
}
