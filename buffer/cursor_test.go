package buffer

import (
	"errors"
	"math"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/common/littleendian"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_PeekAndRead(t *testing.T) {
	require := require.New(t)

	b := NewBorrowing([]byte("0123456789"))

	t.Run("PeekAt does not move the cursor", func(t *testing.T) {
		p, err := b.PeekAt(2, 3)
		require.NoError(err)
		assert.Equal(t, []byte("234"), p)
		assert.Equal(t, 0, b.Pos())
	})

	t.Run("ReadAt moves the cursor past the view", func(t *testing.T) {
		p, err := b.ReadAt(2, 3)
		require.NoError(err)
		assert.Equal(t, []byte("234"), p)
		assert.Equal(t, 5, b.Pos())
	})

	t.Run("Current peeks the byte under the cursor", func(t *testing.T) {
		c, err := b.Current()
		require.NoError(err)
		assert.Equal(t, byte('5'), c)
		assert.Equal(t, 5, b.Pos())
	})

	t.Run("final byte region is readable", func(t *testing.T) {
		p, err := b.PeekAt(9, 1)
		require.NoError(err)
		assert.Equal(t, []byte("9"), p)

		p, err = b.PeekAt(0, 10)
		require.NoError(err)
		assert.Equal(t, []byte("0123456789"), p)
	})
}

func TestCursor_BoundsErrors(t *testing.T) {
	b := NewBorrowing([]byte("abcd"))

	cases := []struct {
		name      string
		offset, n int
	}{
		{"past end", 2, 3},
		{"offset past end", 5, 0},
		{"negative offset", -1, 2},
		{"negative length", 0, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.PeekAt(tc.offset, tc.n)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrOutOfRange))
			assert.Equal(t, 0, b.Pos(), "failed read must not move the cursor")
		})
	}

	t.Run("exhausted Skip", func(t *testing.T) {
		_, err := b.Skip(5)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrOutOfRange))
	})
}

func TestCursor_TypedReads(t *testing.T) {
	require := require.New(t)

	b := New()
	require.NoError(b.AppendByte(0xA5))
	require.NoError(b.Append(littleendian.Uint32ToBytes(0xDEADBEEF)))
	require.NoError(b.Append(littleendian.Uint32ToBytes(math.Float32bits(3.5))))
	require.NoError(b.Append(littleendian.Uint64ToBytes(math.Float64bits(-1.25e300))))
	require.NoError(b.Seek(0))

	u8, err := b.ReadU8()
	require.NoError(err)
	assert.Equal(t, byte(0xA5), u8)

	u32, err := b.ReadU32()
	require.NoError(err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)

	f32, err := b.ReadF32()
	require.NoError(err)
	assert.Equal(t, float32(3.5), f32)

	f64, err := b.ReadF64()
	require.NoError(err)
	assert.Equal(t, -1.25e300, f64)

	require.True(b.Empty())
	checkInvariants(t, b)
}

// appendExtended lays out an x87 80-bit value the way the x86-64 ABI stores a
// long double: 8 significand bytes, 2 sign/exponent bytes, 6 padding bytes.
func appendExtended(t *testing.T, b *Buffer, mant uint64, se uint16) {
	t.Helper()
	require.NoError(t, b.Append(littleendian.Uint64ToBytes(mant)))
	require.NoError(t, b.Append([]byte{byte(se), byte(se >> 8), 0, 0, 0, 0, 0, 0}))
}

func TestCursor_ReadExtendedFloat(t *testing.T) {
	cases := []struct {
		name string
		mant uint64
		se   uint16
		want float64
	}{
		{"one", 0x8000000000000000, 0x3FFF, 1.0},
		{"minus two point five", 0xA000000000000000, 0xC000, -2.5},
		{"zero", 0, 0, 0.0},
		{"pos infinity", 0x8000000000000000, 0x7FFF, math.Inf(1)},
		{"neg infinity", 0x8000000000000000, 0xFFFF, math.Inf(-1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := New()
			appendExtended(t, b, tc.mant, tc.se)
			require.NoError(t, b.Seek(0))

			got, err := b.ReadExtendedFloat()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.True(t, b.Empty(), "extended read consumes all 16 bytes")
		})
	}

	t.Run("NaN", func(t *testing.T) {
		b := New()
		appendExtended(t, b, 0xC000000000000001, 0x7FFF)
		require.NoError(t, b.Seek(0))

		got, err := b.ReadExtendedFloat()
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got))
	})
}

// TestCursor_FloatWriteReadRoundTrip mirrors the encode path: raw bytes of a
// float are appended, the cursor is reset to the write offset, and the typed
// read must return the original value.
func TestCursor_FloatWriteReadRoundTrip(t *testing.T) {
	b := New()
	require.NoError(t, b.Append([]byte("prefix")))
	mark := b.Pos()

	require.NoError(t, b.Append(littleendian.Uint32ToBytes(math.Float32bits(3.5))))
	require.NoError(t, b.Seek(mark))

	got, err := b.ReadF32()
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), got)
}
