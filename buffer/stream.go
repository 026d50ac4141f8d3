package buffer

// stream.go extends a streaming buffer's valid region from its source.
//
// Filling is a side effect of a bounds check, not a semantic read, so the
// cursor is saved before the pull loop and restored after it. Partial progress
// is kept on failure: whatever arrived before the source ran dry stays in the
// buffer so the caller can still inspect it.

import (
	"io"
)

// fillTo pulls from the source until at least target valid bytes exist.
// A zero-byte read or a source error aborts the fill; io.EOF with trailing
// bytes attached is consumed before the shortfall is reported.
func (b *Buffer) fillTo(target int) error {
	pos := b.pos
	defer func() {
		b.pos = pos
	}()

	for len(b.data) < target {
		chunk := make([]byte, target-len(b.data))
		n, err := b.source.Read(chunk)
		if n > 0 {
			if aerr := b.Append(chunk[:n]); aerr != nil {
				return aerr
			}
		}
		if len(b.data) >= target {
			break
		}
		if err == nil && n > 0 {
			continue
		}
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}
