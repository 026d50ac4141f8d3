package sereal

// writer.go emits Sereal documents through the buffer engine's append path.

import (
	"math"

	"github.com/Fantom-foundation/lachesis-base/common/littleendian"
	"github.com/pkg/errors"

	"github.com/rony4d/go-sereal/buffer"
)

// ErrTooLarge is returned when a single value exceeds what this writer is
// willing to emit (or this reader to allocate).
var ErrTooLarge = errors.New("value too large")

// Writer builds one Sereal document in an owned buffer.
type Writer struct {
	buf *buffer.Buffer
}

// NewWriter returns a Writer with an empty document buffer.
func NewWriter() *Writer {
	return &Writer{
		buf: buffer.New(),
	}
}

// Buffer exposes the underlying document buffer.
func (w *Writer) Buffer() *buffer.Buffer {
	return w.buf
}

// Bytes returns the document built so far.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Header writes the protocol-2 document header: the "=srl" magic, the
// version/type byte (high nibble 0 = raw body) and an empty optional-suffix
// (varint 0).
func (w *Writer) Header() error {
	if err := w.buf.Append(littleendian.Uint32ToBytes(Magic)); err != nil {
		return err
	}
	if err := w.buf.AppendByte(ProtocolVersion); err != nil {
		return err
	}
	return w.buf.AppendByte(0) // suffix size
}

// varint appends the canonical base-128 varint of v (no tag byte).
func (w *Writer) varint(v uint64) error {
	for v >= 0x80 {
		if err := w.buf.AppendByte(byte(v) | 0x80); err != nil {
			return err
		}
		v >>= 7
	}
	return w.buf.AppendByte(byte(v))
}

// Int writes an integer with the most compact applicable tag: the one-byte
// small-int forms, VARINT for larger positives, ZIGZAG for larger negatives.
func (w *Writer) Int(v int64) error {
	switch {
	case v >= 0 && v <= smallIntMax:
		return w.buf.AppendByte(tagPos0 + byte(v))
	case v < 0 && v >= smallIntMin:
		return w.buf.AppendByte(tagNeg16 + byte(v-smallIntMin))
	case v >= 0:
		return w.UInt(uint64(v))
	default:
		if err := w.buf.AppendByte(tagZigZag); err != nil {
			return err
		}
		return w.varint(uint64(v)<<1 ^ uint64(v>>63))
	}
}

// UInt writes a non-negative integer as VARINT (without the small-int
// shortcut, which callers get via Int).
func (w *Writer) UInt(v uint64) error {
	if err := w.buf.AppendByte(tagVarint); err != nil {
		return err
	}
	return w.varint(v)
}

// Float32 writes a FLOAT value, four little-endian IEEE bytes.
func (w *Writer) Float32(v float32) error {
	if err := w.buf.AppendByte(tagFloat); err != nil {
		return err
	}
	return w.buf.Append(littleendian.Uint32ToBytes(math.Float32bits(v)))
}

// Float64 writes a DOUBLE value, eight little-endian IEEE bytes.
func (w *Writer) Float64(v float64) error {
	if err := w.buf.AppendByte(tagDouble); err != nil {
		return err
	}
	return w.buf.Append(littleendian.Uint64ToBytes(math.Float64bits(v)))
}

// Bool writes TRUE or FALSE.
func (w *Writer) Bool(v bool) error {
	if v {
		return w.buf.AppendByte(tagTrue)
	}
	return w.buf.AppendByte(tagFalse)
}

// Undef writes UNDEF.
func (w *Writer) Undef() error {
	return w.buf.AppendByte(tagUndef)
}

// Binary writes a byte string, using the single-byte short form for payloads
// up to 31 bytes and the varint-prefixed BINARY tag beyond that.
func (w *Writer) Binary(p []byte) error {
	if len(p) > MaxAlloc {
		return errors.Wrapf(ErrTooLarge, "binary of %d bytes", len(p))
	}
	if len(p) <= shortBinaryMaxSize {
		if err := w.buf.AppendByte(tagShortBinary + byte(len(p))); err != nil {
			return err
		}
		return w.buf.Append(p)
	}
	if err := w.buf.AppendByte(tagBinary); err != nil {
		return err
	}
	if err := w.varint(uint64(len(p))); err != nil {
		return err
	}
	return w.buf.Append(p)
}

// String writes a STR_UTF8 value.
func (w *Writer) String(s string) error {
	if len(s) > MaxAlloc {
		return errors.Wrapf(ErrTooLarge, "string of %d bytes", len(s))
	}
	if err := w.buf.AppendByte(tagStrUTF8); err != nil {
		return err
	}
	if err := w.varint(uint64(len(s))); err != nil {
		return err
	}
	return w.buf.Append([]byte(s))
}

// ArrayStart opens an array of count elements. Small arrays get the compact
// ARRAYREF form; larger ones REFN + ARRAY + varint count. The caller then
// writes exactly count values.
func (w *Writer) ArrayStart(count int) error {
	if count < 0 || count > MaxAlloc {
		return errors.Wrapf(ErrTooLarge, "array of %d elements", count)
	}
	if count < 16 {
		return w.buf.AppendByte(tagArrayRef0 + byte(count))
	}
	if err := w.buf.AppendByte(tagRefn); err != nil {
		return err
	}
	if err := w.buf.AppendByte(tagArray); err != nil {
		return err
	}
	return w.varint(uint64(count))
}

// HashStart opens a hash of count key/value pairs; the caller then writes
// count alternating string keys and values.
func (w *Writer) HashStart(count int) error {
	if count < 0 || count > MaxAlloc {
		return errors.Wrapf(ErrTooLarge, "hash of %d pairs", count)
	}
	if count < 16 {
		return w.buf.AppendByte(tagHashRef0 + byte(count))
	}
	if err := w.buf.AppendByte(tagRefn); err != nil {
		return err
	}
	if err := w.buf.AppendByte(tagHash); err != nil {
		return err
	}
	return w.varint(uint64(count))
}
