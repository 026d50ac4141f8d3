package buffer

// cursor.go holds the bounds guard and the typed accessors built on it.
//
// Every read funnels through require(), which is what lets bounded and
// streaming buffers share the accessor set: a bounded buffer fails a short
// request immediately, a streaming one first tries to pull the missing bytes
// from its source.
//
// Multi-byte values are assembled explicitly in little-endian order (the
// Sereal wire order). Reinterpreting unaligned bytes through a pointer of the
// target type is not portable and is deliberately avoided.

import (
	"math"

	"github.com/Fantom-foundation/lachesis-base/common/littleendian"
	"github.com/pkg/errors"
)

// require guarantees that data[offset : offset+n] is valid, pulling from the
// stream source first when the buffer is streaming.
func (b *Buffer) require(offset, n int) error {
	if offset < 0 || n < 0 {
		return errors.Wrapf(ErrOutOfRange, "negative extent (%d + %d)", offset, n)
	}
	if offset+n <= len(b.data) {
		return nil
	}
	if !b.streaming {
		return errors.Wrapf(ErrOutOfRange, "%d + %d > %d", offset, n, len(b.data))
	}
	if err := b.fillTo(offset + n); err != nil {
		return errors.Wrapf(ErrOutOfRange, "stream request for %d bytes failed (err: %v)", n, err)
	}
	return nil
}

// PeekAt returns a view of n bytes starting at offset without moving the
// cursor. The view shares memory with the buffer and is valid until the next
// growth or compaction.
func (b *Buffer) PeekAt(offset, n int) ([]byte, error) {
	if err := b.require(offset, n); err != nil {
		return nil, err
	}
	return b.data[offset : offset+n], nil
}

// ReadAt is PeekAt plus moving the cursor to the end of the view.
func (b *Buffer) ReadAt(offset, n int) ([]byte, error) {
	p, err := b.PeekAt(offset, n)
	if err != nil {
		return nil, err
	}
	b.pos = offset + n
	return p, nil
}

// Current returns the byte under the cursor without consuming it.
func (b *Buffer) Current() (byte, error) {
	if err := b.require(b.pos, 1); err != nil {
		return 0, err
	}
	return b.data[b.pos], nil
}

// Skip advances the cursor by n without interpreting the bytes and returns n.
func (b *Buffer) Skip(n int) (int, error) {
	if err := b.require(b.pos, n); err != nil {
		return 0, err
	}
	b.pos += n
	return n, nil
}

// next consumes n bytes at the cursor.
func (b *Buffer) next(n int) ([]byte, error) {
	return b.ReadAt(b.pos, n)
}

// ReadU8 consumes one byte.
func (b *Buffer) ReadU8() (byte, error) {
	p, err := b.next(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// ReadU32 consumes four little-endian bytes.
func (b *Buffer) ReadU32() (uint32, error) {
	p, err := b.next(4)
	if err != nil {
		return 0, err
	}
	return littleendian.BytesToUint32(p), nil
}

// ReadF32 consumes a little-endian IEEE 754 single.
func (b *Buffer) ReadF32() (float32, error) {
	p, err := b.next(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(littleendian.BytesToUint32(p)), nil
}

// ReadF64 consumes a little-endian IEEE 754 double.
func (b *Buffer) ReadF64() (float64, error) {
	p, err := b.next(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(littleendian.BytesToUint64(p)), nil
}

// ReadExtendedFloat consumes an x87 80-bit extended float as laid out by the
// x86-64 ABI: 8 significand bytes, 2 sign/exponent bytes, 6 bytes of padding.
// The value is rounded to the nearest float64.
func (b *Buffer) ReadExtendedFloat() (float64, error) {
	p, err := b.next(16)
	if err != nil {
		return 0, err
	}
	mant := littleendian.BytesToUint64(p[:8])
	se := uint16(p[8]) | uint16(p[9])<<8
	return extendedToFloat64(mant, se), nil
}

// extendedToFloat64 converts an x87 extended value (explicit integer bit in
// mant, 15-bit biased exponent plus sign in se) to a float64.
func extendedToFloat64(mant uint64, se uint16) float64 {
	sign := 1.0
	if se&0x8000 != 0 {
		sign = -1.0
	}
	exp := int(se & 0x7fff)
	switch {
	case exp == 0x7fff:
		// Infinity has an empty fraction below the integer bit.
		if mant<<1 == 0 {
			return sign * math.Inf(1)
		}
		return math.NaN()
	case exp == 0:
		// Denormal: no implied scaling from the integer bit.
		return sign * math.Ldexp(float64(mant), -16382-63)
	default:
		return sign * math.Ldexp(float64(mant), exp-16383-63)
	}
}
