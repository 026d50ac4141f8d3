package sereal

// reader.go decodes the primitive value subset. It works identically over an
// in-memory document and a stream-backed one, because every access goes
// through the buffer engine's bounds guard.

import (
	"io"

	"github.com/pkg/errors"

	"github.com/rony4d/go-sereal/buffer"
)

// Decoding errors. The buffer's range errors pass through unchanged.
var (
	ErrBadHeader          = errors.New("document does not start with Sereal magic")
	ErrUnsupportedVersion = errors.New("unsupported protocol version or body encoding")
	ErrCorrupt            = errors.New("malformed document")
)

// Reader decodes one or more consecutive Sereal documents.
type Reader struct {
	buf *buffer.Buffer
	// version of the document currently being read, set by ReadHeader.
	version byte
}

// NewReader decodes from an in-memory document. The bytes are borrowed, not
// copied.
func NewReader(doc []byte) *Reader {
	return &Reader{
		buf: buffer.NewBorrowing(doc),
	}
}

// NewStreamingReader decodes from src, pulling bytes on demand. The refill
// buffer is capped at MaxAlloc.
func NewStreamingReader(src io.Reader) *Reader {
	b := buffer.NewStreaming(src)
	b.SetLimit(MaxAlloc)
	return &Reader{
		buf: b,
	}
}

// Buffer exposes the underlying buffer, e.g. to anchor a source object for
// the duration of the decode.
func (r *Reader) Buffer() *buffer.Buffer {
	return r.buf
}

// Exhausted reports whether every buffered byte has been consumed. On a
// streaming reader this does not rule out more documents arriving later.
func (r *Reader) Exhausted() bool {
	return r.buf.Empty()
}

// Compact drops the consumed prefix of the underlying buffer. During long
// streaming decodes the caller invokes this between documents to bound
// memory; it is invalid while borrowed storage backs the reader.
func (r *Reader) Compact() error {
	return r.buf.Compact()
}

// ReadHeader consumes and validates a document header, leaving the cursor on
// the first body tag.
func (r *Reader) ReadHeader() error {
	magic, err := r.buf.ReadU32()
	if err != nil {
		return err
	}
	vt, err := r.buf.ReadU8()
	if err != nil {
		return err
	}
	version := vt & 0x0f
	encoding := vt >> 4

	switch magic {
	case Magic:
		if version < 1 || version > 2 {
			return errors.Wrapf(ErrBadHeader, "legacy magic with version %d", version)
		}
	case MagicV3:
		if version < 3 {
			return errors.Wrapf(ErrBadHeader, "v3 magic with version %d", version)
		}
	default:
		return errors.Wrapf(ErrBadHeader, "got 0x%08x", magic)
	}
	if version > ProtocolVersion {
		return errors.Wrapf(ErrUnsupportedVersion, "version %d", version)
	}
	if encoding != 0 {
		// Compressed bodies are out of scope for this engine.
		return errors.Wrapf(ErrUnsupportedVersion, "body encoding %d", encoding)
	}
	r.version = version

	// Skip the optional header suffix.
	suffix, err := r.varint()
	if err != nil {
		return err
	}
	if suffix > MaxAlloc {
		return errors.Wrapf(ErrTooLarge, "header suffix of %d bytes", suffix)
	}
	_, err = r.buf.Skip(int(suffix))
	return err
}

// Version returns the protocol version of the current document.
func (r *Reader) Version() byte {
	return r.version
}

// varint consumes a base-128 varint. Ten bytes bound a 64-bit value; an
// unterminated run is corruption, not a range problem.
func (r *Reader) varint() (uint64, error) {
	var v uint64
	for shift := uint(0); shift < 70; shift += 7 {
		b, err := r.buf.ReadU8()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, errors.Wrap(ErrCorrupt, "varint longer than 10 bytes")
}

// zigzag consumes a zigzag-encoded signed integer.
func (r *Reader) zigzag() (int64, error) {
	u, err := r.varint()
	if err != nil {
		return 0, err
	}
	return int64(u>>1) ^ -int64(u&1), nil
}

// ReadValue decodes the next value. Scalars map to int64/uint64, float32,
// float64, bool, []byte, string and nil; containers to []interface{} and
// map[string]interface{}.
func (r *Reader) ReadValue() (interface{}, error) {
	return r.readValue(0)
}

func (r *Reader) readValue(depth int) (interface{}, error) {
	if depth > maxDepth {
		return nil, errors.Wrap(ErrCorrupt, "nesting too deep")
	}

	tag, err := r.buf.ReadU8()
	if err != nil {
		return nil, err
	}
	// The track flag marks back-reference targets; harmless to a decoder
	// that materializes values eagerly.
	tag &^= trackFlag

	switch {
	case tag <= tagPos0+smallIntMax:
		return int64(tag), nil
	case tag >= tagNeg16 && tag < tagVarint:
		return int64(tag) - 32, nil
	case tag >= tagArrayRef0 && tag < tagArrayRef0+16:
		return r.readArray(int(tag-tagArrayRef0), depth)
	case tag >= tagHashRef0 && tag < tagHashRef0+16:
		return r.readHash(int(tag-tagHashRef0), depth)
	case tag >= tagShortBinary && tag < tagShortBinary+32:
		return r.readBytes(int(tag - tagShortBinary))
	}

	switch tag {
	case tagVarint:
		return r.varint()
	case tagZigZag:
		return r.zigzag()
	case tagFloat:
		return r.buf.ReadF32()
	case tagDouble:
		return r.buf.ReadF64()
	case tagLongDouble:
		return r.buf.ReadExtendedFloat()
	case tagUndef:
		return nil, nil
	case tagTrue:
		return true, nil
	case tagFalse:
		return false, nil
	case tagPad:
		return r.readValue(depth + 1)
	case tagBinary:
		n, err := r.readLength()
		if err != nil {
			return nil, err
		}
		return r.readBytes(n)
	case tagStrUTF8:
		n, err := r.readLength()
		if err != nil {
			return nil, err
		}
		p, err := r.readBytes(n)
		if err != nil {
			return nil, err
		}
		return string(p), nil
	case tagRefn:
		// A reference to the following value; the distinction carries no
		// meaning outside a Perl host.
		return r.readValue(depth + 1)
	case tagArray:
		n, err := r.readLength()
		if err != nil {
			return nil, err
		}
		return r.readArray(n, depth)
	case tagHash:
		n, err := r.readLength()
		if err != nil {
			return nil, err
		}
		return r.readHash(n, depth)
	default:
		return nil, errors.Wrapf(ErrCorrupt, "unsupported tag 0x%02x at offset %d", tag, r.buf.Pos()-1)
	}
}

// readLength consumes a varint length prefix and bounds it by MaxAlloc.
func (r *Reader) readLength() (int, error) {
	n, err := r.varint()
	if err != nil {
		return 0, err
	}
	if n > MaxAlloc {
		return 0, errors.Wrapf(ErrTooLarge, "length prefix of %d", n)
	}
	return int(n), nil
}

// readBytes consumes n payload bytes and returns a copy, so the result stays
// valid across later growth or compaction of the buffer.
func (r *Reader) readBytes(n int) ([]byte, error) {
	p, err := r.buf.ReadAt(r.buf.Pos(), n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p)
	return out, nil
}

func (r *Reader) readArray(count, depth int) ([]interface{}, error) {
	out := make([]interface{}, 0, allocHint(count))
	for i := 0; i < count; i++ {
		v, err := r.readValue(depth + 1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *Reader) readHash(count, depth int) (map[string]interface{}, error) {
	out := make(map[string]interface{}, allocHint(count))
	for i := 0; i < count; i++ {
		k, err := r.readValue(depth + 1)
		if err != nil {
			return nil, err
		}
		var key string
		switch k := k.(type) {
		case []byte:
			key = string(k)
		case string:
			key = k
		default:
			return nil, errors.Wrapf(ErrCorrupt, "hash key of type %T", k)
		}
		v, err := r.readValue(depth + 1)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// allocHint caps pre-allocation from attacker-controlled counts; the slices
// still grow to the real size as elements prove to exist.
func allocHint(count int) int {
	const max = 1024
	if count > max {
		return max
	}
	return count
}
