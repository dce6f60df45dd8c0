package zkecdleq

import (
	"errors"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/chaum-pedersen/internal/params"
	"github.com/taurusgroup/chaum-pedersen/pkg/hash"
	"github.com/taurusgroup/chaum-pedersen/pkg/math/sample"
)

// ErrIdentity is returned when a point of the statement or proof is the point at infinity.
var ErrIdentity = errors.New("zkecdleq: point is the identity")

// Public is the statement log_G(X) = log_H(Y), over secp256k1 with base point G.
type Public struct {
	H, X, Y *secp256k1.PublicKey
}

// NewPublic returns the statement (H, x⋅G, x⋅H).
//
// x must not be zero, since the identity has no encoding.
func NewPublic(h *secp256k1.PublicKey, x *secp256k1.ModNScalar) (Public, error) {
	var hJ, xG, xH secp256k1.JacobianPoint
	h.AsJacobian(&hJ)
	secp256k1.ScalarBaseMultNonConst(x, &xG)
	secp256k1.ScalarMultNonConst(x, &hJ, &xH)

	X, err := toPublicKey(&xG)
	if err != nil {
		return Public{}, err
	}
	Y, err := toPublicKey(&xH)
	if err != nil {
		return Public{}, err
	}
	return Public{H: h, X: X, Y: Y}, nil
}

// Proof is a non-interactive proof that log_G(X) = log_H(Y).
type Proof struct {
	// A = k⋅G, B = k⋅H
	A, B *secp256k1.PublicKey
	// Z = k - e⋅x
	Z *secp256k1.ModNScalar
}

// NewProof generates a proof that public.X = x⋅G and public.Y = x⋅H.
func NewProof(hash *hash.Hash, public Public, x *secp256k1.ModNScalar, rand io.Reader) *Proof {
	k := sample.Scalar(rand)
	for k.IsZero() {
		k = sample.Scalar(rand)
	}

	var hJ, kG, kH secp256k1.JacobianPoint
	public.H.AsJacobian(&hJ)
	secp256k1.ScalarBaseMultNonConst(k, &kG)
	secp256k1.ScalarMultNonConst(k, &hJ, &kH)
	A, errA := toPublicKey(&kG)
	B, errB := toPublicKey(&kH)
	if errA != nil || errB != nil {
		return nil
	}

	e, err := challenge(hash, public, A, B)
	if err != nil {
		return nil
	}

	// z = k - e⋅x
	z := new(secp256k1.ModNScalar).Mul2(e, x).Negate().Add(k)
	k.Zero()

	return &Proof{A: A, B: B, Z: z}
}

// Verify checks that z⋅G + e⋅X = A and z⋅H + e⋅Y = B.
func (p *Proof) Verify(hash *hash.Hash, public Public) bool {
	if p == nil || p.A == nil || p.B == nil || p.Z == nil {
		return false
	}
	if public.H == nil || public.X == nil || public.Y == nil {
		return false
	}

	e, err := challenge(hash, public, p.A, p.B)
	if err != nil {
		return false
	}

	var hJ, zG, zH secp256k1.JacobianPoint
	public.H.AsJacobian(&hJ)
	secp256k1.ScalarBaseMultNonConst(p.Z, &zG)
	secp256k1.ScalarMultNonConst(p.Z, &hJ, &zH)

	return linearCombinationEquals(&zG, e, public.X, p.A) &&
		linearCombinationEquals(&zH, e, public.Y, p.B)
}

// linearCombinationEquals checks whether zP + e⋅V = expected.
func linearCombinationEquals(zP *secp256k1.JacobianPoint, e *secp256k1.ModNScalar, v, expected *secp256k1.PublicKey) bool {
	var vJ, eV, sum, expectedJ secp256k1.JacobianPoint
	v.AsJacobian(&vJ)
	secp256k1.ScalarMultNonConst(e, &vJ, &eV)
	secp256k1.AddNonConst(zP, &eV, &sum)
	if isIdentity(&sum) {
		return false
	}
	sum.ToAffine()
	expected.AsJacobian(&expectedJ)
	return sum.X.Equals(&expectedJ.X) && sum.Y.Equals(&expectedJ.Y)
}

func challenge(hash *hash.Hash, public Public, A, B *secp256k1.PublicKey) (*secp256k1.ModNScalar, error) {
	err := hash.WriteAny(point{public.H}, point{public.X}, point{public.Y}, point{A}, point{B})
	if err != nil {
		return nil, err
	}
	return sample.Scalar(hash.Digest()), nil
}

type proofMarshal struct {
	A, B, Z []byte
}

// MarshalBinary implements encoding.BinaryMarshaler, using compressed points.
func (p *Proof) MarshalBinary() ([]byte, error) {
	z := p.Z.Bytes()
	return cbor.Marshal(proofMarshal{
		A: p.A.SerializeCompressed(),
		B: p.B.SerializeCompressed(),
		Z: z[:],
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Proof) UnmarshalBinary(data []byte) error {
	var m proofMarshal
	if err := cbor.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("zkecdleq: unmarshal proof: %w", err)
	}
	A, err := secp256k1.ParsePubKey(m.A)
	if err != nil {
		return fmt.Errorf("zkecdleq: unmarshal proof: A: %w", err)
	}
	B, err := secp256k1.ParsePubKey(m.B)
	if err != nil {
		return fmt.Errorf("zkecdleq: unmarshal proof: B: %w", err)
	}
	if len(m.Z) != params.BytesSecp256k1Scalar {
		return fmt.Errorf("zkecdleq: unmarshal proof: invalid length for scalar: %d", len(m.Z))
	}
	var z secp256k1.ModNScalar
	if z.SetByteSlice(m.Z) {
		return errors.New("zkecdleq: unmarshal proof: scalar overflows the group order")
	}
	p.A, p.B, p.Z = A, B, &z
	return nil
}

// point makes a public key usable with hash.WriteAny.
type point struct {
	*secp256k1.PublicKey
}

// WriteTo implements io.WriterTo.
func (p point) WriteTo(w io.Writer) (int64, error) {
	if p.PublicKey == nil {
		return 0, ErrIdentity
	}
	n, err := w.Write(p.SerializeCompressed())
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (point) Domain() string {
	return "secp256k1.Point"
}

func isIdentity(p *secp256k1.JacobianPoint) bool {
	return p.Z.IsZero() || (p.X.IsZero() && p.Y.IsZero())
}

func toPublicKey(p *secp256k1.JacobianPoint) (*secp256k1.PublicKey, error) {
	if isIdentity(p) {
		return nil, ErrIdentity
	}
	p.ToAffine()
	return secp256k1.NewPublicKey(&p.X, &p.Y), nil
}
