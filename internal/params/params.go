package params

const (
	SecParam = 256
	SecBytes = SecParam / 8

	// DigestLengthBytes is the size of the output of hash.Hash.Sum.
	DigestLengthBytes = SecBytes * 2 // 64

	// BitsGroup is the default size of the prime p used by the demo.
	//
	// Tests use much smaller groups, since finding a safe prime dominates their running time.
	BitsGroup = 1024

	// MinBitsSafePrime is the smallest safe prime internal/group agrees to look for.
	MinBitsSafePrime = 16

	// BytesSecp256k1Scalar is the encoded length of a secp256k1 scalar.
	BytesSecp256k1Scalar = 32
)
