package hash

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/chaum-pedersen/internal/params"
	"github.com/zeebo/blake3"
)

// Hash is the hash function we use for deriving Fiat-Shamir challenges.
//
// Internally, this is a wrapper around blake3.Hasher, whose output can be
// extended to any length. This lets challenges be sampled from it directly.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash struct, with the given domains already written.
func New(domains ...string) *Hash {
	hash := &Hash{h: blake3.New()}
	for _, d := range domains {
		err := writeWithDomain(hash.h, BytesWithDomain{
			TheDomain: "domain",
			Bytes:     []byte(d),
		})
		if err != nil {
			panic(fmt.Sprintf("hash.New: internal hash failure: %v", err))
		}
	}
	return hash
}

// Digest returns a reader for the current output of the function.
//
// This finalizes the current state of the hash, and returns what's
// essentially a stream of random bytes.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length params.DigestLengthBytes resulting from the current hash state.
// If a different length is required, use io.ReadFull(hash.Digest(), out) instead.
func (hash *Hash) Sum() []byte {
	out := make([]byte, params.DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - string
//   - *saferith.Nat
//   - *saferith.Modulus
//   - hash.WriterToWithDomain
//
// Integers are written without their leading zeros, so that the same value
// always hashes the same way regardless of its announced length.
func (hash *Hash) WriteAny(data ...interface{}) error {
	var toBeWritten WriterToWithDomain
	for _, d := range data {
		switch t := d.(type) {
		case []byte:
			toBeWritten = BytesWithDomain{"[]byte", t}
		case string:
			toBeWritten = BytesWithDomain{"string", []byte(t)}
		case *saferith.Nat:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *saferith.Nat: nil")
			}
			toBeWritten = BytesWithDomain{"saferith.Nat", t.Big().Bytes()}
		case *saferith.Modulus:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *saferith.Modulus: nil")
			}
			toBeWritten = BytesWithDomain{"saferith.Modulus", t.Big().Bytes()}
		case WriterToWithDomain:
			toBeWritten = t
		default:
			panic(fmt.Sprintf("hash.Hash: unsupported type %T", d))
		}
		if err := writeWithDomain(hash.h, toBeWritten); err != nil {
			return fmt.Errorf("hash.Hash: write %s: %w", toBeWritten.Domain(), err)
		}
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}

// writeWithDomain writes out a piece of data, using its domain.
//
// The output is `(<len(domain)><domain><len(data)><data>)`, so that two different
// sequences of objects can never produce the same stream.
func writeWithDomain(w io.Writer, object WriterToWithDomain) error {
	var body lengthCounter
	if _, err := object.WriteTo(&body); err != nil {
		return err
	}

	domain := object.Domain()
	header := make([]byte, 0, 1+8+len(domain)+8)
	header = append(header, '(')
	header = binary.BigEndian.AppendUint64(header, uint64(len(domain)))
	header = append(header, domain...)
	header = binary.BigEndian.AppendUint64(header, uint64(body))
	if _, err := w.Write(header); err != nil {
		return err
	}
	if _, err := object.WriteTo(w); err != nil {
		return err
	}
	if _, err := w.Write([]byte(")")); err != nil {
		return err
	}
	return nil
}

// lengthCounter is an io.Writer discarding its input, and remembering how much it received.
type lengthCounter int64

func (c *lengthCounter) Write(p []byte) (int, error) {
	*c += lengthCounter(len(p))
	return len(p), nil
}
