package buffer

// compact.go reclaims memory consumed by long decodes.

import (
	"github.com/pkg/errors"
)

// Compact discards the consumed prefix data[0:pos], moves the unconsumed tail
// to the start of fresh exactly-sized storage and resets the cursor to 0.
// With nothing left to keep, storage is released entirely and the buffer is
// back in its just-created state. Compacting an already-compacted buffer is a
// no-op in content terms.
func (b *Buffer) Compact() error {
	if b.borrowed {
		return errors.Wrap(ErrBorrowed, "cannot compact")
	}
	left := len(b.data) - b.pos
	if left == 0 {
		b.data = nil
		b.pos = 0
		return nil
	}
	kept := make([]byte, left)
	copy(kept, b.data[b.pos:])
	b.data = kept
	b.pos = 0
	return nil
}
