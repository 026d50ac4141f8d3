package buffer

// buffer.go implements the growable byte buffer that backs Sereal encoding and
// decoding.
//
// - The encode path appends bytes to the end (Growth is amortized with a fixed
//   slack, so repeated small appends don't reallocate every time).
// - The decode path reads at or after the cursor through a single bounds guard
//   (cursor.go), which makes bounded and stream-backed buffers share one
//   implementation.
// - Long streaming decodes call Compact (compact.go) to drop the consumed
//   prefix and bound memory.
//
// A Buffer is confined to one logical encode-or-decode operation at a time;
// there is no internal locking.

import (
	"io"

	"github.com/pkg/errors"
)

// Errors surfaced by buffer operations. Callers match them with errors.Is;
// the wrapped message carries offset/length/size context for diagnostics.
var (
	ErrOutOfRange = errors.New("position is out of bounds")
	ErrAllocLimit = errors.New("allocation limit exceeded")
	ErrBorrowed   = errors.New("buffer does not own its storage")
)

// growSlack is the fixed over-allocation added on every growth, so a run of
// small appends settles into a single reallocation per ~512 written bytes.
const growSlack = 512

// Buffer is a contiguous byte arena with a read/write cursor.
//
// The valid region is data[0:len(data)]; cap(data) is the reserved storage.
// pos is the cursor and satisfies 0 <= pos <= len(data) after every call.
type Buffer struct {
	// data holds the valid bytes; len(data) is the write high-water mark.
	data []byte
	// pos is the current read/write offset (cursor).
	pos int

	// borrowed buffers wrap storage owned by someone else: they are never
	// reallocated, appended to, compacted or released.
	borrowed bool
	// streaming buffers may extend the valid region on demand from source.
	streaming bool
	source    io.Reader

	// anchor pins an external object for the duration of an operation, so
	// the runtime cannot reclaim data the operation is still reading from.
	anchor interface{}

	// limit caps total reserved storage; 0 means unlimited.
	limit int
}

// New returns an empty owned, bounded buffer.
func New() *Buffer {
	return &Buffer{}
}

// NewBorrowing wraps existing storage without taking ownership.
// The buffer is bounded; the caller must not expect writes to work.
func NewBorrowing(b []byte) *Buffer {
	return &Buffer{
		data:     b,
		borrowed: true,
	}
}

// NewStreaming returns an owned buffer whose valid region is extended on
// demand by pulling from src. Reads past the current end block inside the
// bounds guard until src delivers the bytes, errors, or runs dry.
func NewStreaming(src io.Reader) *Buffer {
	return &Buffer{
		streaming: true,
		source:    src,
	}
}

// Destroy releases the anchor and drops the storage reference. For owned
// buffers that releases the storage; for borrowed ones the external slice is
// untouched and merely no longer reachable through the buffer. Idempotent and
// safe on a nil buffer.
func (b *Buffer) Destroy() {
	if b == nil {
		return
	}
	b.anchor = nil
	b.source = nil
	b.data = nil
	b.pos = 0
}

// SetLimit caps reserved storage at n bytes (0 = unlimited). Growth past the
// cap fails with ErrAllocLimit instead of allocating.
func (b *Buffer) SetLimit(n int) {
	b.limit = n
}

// SetAnchor pins obj for the duration of the current operation. Only one
// anchor is held at a time; re-anchoring drops the previous reference.
func (b *Buffer) SetAnchor(obj interface{}) {
	b.anchor = obj
}

// ClearAnchor drops the pinned reference, if any.
func (b *Buffer) ClearAnchor() {
	b.anchor = nil
}

// Pos returns the current cursor offset.
func (b *Buffer) Pos() int {
	return b.pos
}

// Size returns the count of valid bytes (write high-water mark).
func (b *Buffer) Size() int {
	return len(b.data)
}

// Cap returns the reserved storage size. Cap() >= Size() always.
func (b *Buffer) Cap() int {
	return cap(b.data)
}

// Empty reports whether the cursor has consumed all valid bytes.
func (b *Buffer) Empty() bool {
	return b.pos == len(b.data)
}

// Bytes returns the valid region. The slice shares memory with the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Seek repositions the cursor without reading or growing.
func (b *Buffer) Seek(offset int) error {
	if offset < 0 || offset > len(b.data) {
		return errors.Wrapf(ErrOutOfRange, "seek to %d outside [0, %d]", offset, len(b.data))
	}
	b.pos = offset
	return nil
}

// ensure guarantees room for add more bytes, preserving the valid region.
// When growth is needed it reserves add+growSlack beyond the current size.
func (b *Buffer) ensure(add int) error {
	if b.borrowed {
		return errors.Wrap(ErrBorrowed, "cannot grow")
	}
	need := len(b.data) + add
	if need <= cap(b.data) {
		return nil
	}
	reserve := need + growSlack
	if b.limit > 0 {
		if need > b.limit {
			return errors.Wrapf(ErrAllocLimit, "allocation of %d bytes over limit %d", need, b.limit)
		}
		if reserve > b.limit {
			reserve = b.limit
		}
	}
	grown := make([]byte, len(b.data), reserve)
	copy(grown, b.data)
	b.data = grown
	return nil
}

// Append writes p at the end of the valid region, advancing both the
// high-water mark and the cursor by len(p). Owned buffers only.
func (b *Buffer) Append(p []byte) error {
	if err := b.ensure(len(p)); err != nil {
		return err
	}
	b.data = append(b.data, p...)
	b.pos += len(p)
	return nil
}

// AppendByte is Append for a single byte.
func (b *Buffer) AppendByte(v byte) error {
	if err := b.ensure(1); err != nil {
		return err
	}
	b.data = append(b.data, v)
	b.pos++
	return nil
}
