package hash

import (
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_WriteAny(t *testing.T) {
	testFunc := func(vs ...interface{}) error {
		h := New()
		for _, v := range vs {
			if err := h.WriteAny(v); err != nil {
				return err
			}
		}
		return nil
	}
	b := big.NewInt(35)
	n := new(saferith.Nat).SetBig(b, b.BitLen())
	m := saferith.ModulusFromBytes(b.Bytes())

	assert.NoError(t, testFunc(n, m))
	assert.NoError(t, testFunc([]byte{1, 4, 6}))
	assert.NoError(t, testFunc("label"))
	assert.NoError(t, testFunc(BytesWithDomain{"custom", []byte{1}}))
	assert.Error(t, testFunc((*saferith.Nat)(nil)))
	assert.Error(t, testFunc((*saferith.Modulus)(nil)))
	assert.ErrorIs(t, testFunc([]byte(nil)), io.ErrUnexpectedEOF)
	assert.NoError(t, testFunc([]byte{}), "an empty slice is not missing")
	assert.NoError(t, testFunc(""))
	assert.Panics(t, func() { _ = testFunc(42) })
}

func TestHash_WriteAny_Collision(t *testing.T) {
	testFunc := func(vs ...interface{}) []byte {
		h := New()
		require.NoError(t, h.WriteAny(vs...))
		return h.Sum()
	}
	h1 := testFunc([]byte("1)(big.Int\x02*data_added*"), []byte("3"))
	h2 := testFunc([]byte("1"), []byte("*data_added*)(big.Int\x023"))
	assert.NotEqual(t, h1, h2)

	assert.NotEqual(t, testFunc([]byte("ab"), []byte("c")), testFunc([]byte("a"), []byte("bc")))
	assert.NotEqual(t, testFunc([]byte("ab")), testFunc("ab"), "types should be domain separated")
}

func TestHash_AnnouncedLength(t *testing.T) {
	short := new(saferith.Nat).SetUint64(1234)
	long := new(saferith.Nat).SetUint64(1234).Resize(2048)

	h1, h2 := New(), New()
	require.NoError(t, h1.WriteAny(short))
	require.NoError(t, h2.WriteAny(long))
	assert.Equal(t, h1.Sum(), h2.Sum(), "the announced length of a Nat should not change its hash")
}

func TestHash_Domains(t *testing.T) {
	assert.NotEqual(t, New("a").Sum(), New("b").Sum())
	assert.Equal(t, New("a").Sum(), New("a").Sum())
}

func TestHash_Clone(t *testing.T) {
	h := New("clone")
	require.NoError(t, h.WriteAny([]byte("prefix")))
	c := h.Clone()
	require.NoError(t, c.WriteAny([]byte("suffix")))
	assert.NotEqual(t, h.Sum(), c.Sum())

	h2 := New("clone")
	require.NoError(t, h2.WriteAny([]byte("prefix")))
	assert.Equal(t, h2.Sum(), h.Sum(), "writing to a clone should not modify the original")
}

func TestHash_Digest(t *testing.T) {
	h := New()
	out := make([]byte, 200)
	_, err := io.ReadFull(h.Digest(), out)
	require.NoError(t, err)
	assert.Equal(t, h.Sum(), out[:len(h.Sum())])
}

type failingWriterTo struct{}

func (failingWriterTo) WriteTo(io.Writer) (int64, error) { return 0, errors.New("boom") }
func (failingWriterTo) Domain() string                   { return "failing" }

func TestHash_WriterToError(t *testing.T) {
	err := New().WriteAny(failingWriterTo{})
	assert.ErrorContains(t, err, "boom")
}
