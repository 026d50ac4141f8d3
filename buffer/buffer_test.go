package buffer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkInvariants asserts the cursor/size/capacity ordering that must hold
// after every operation.
func checkInvariants(t *testing.T, b *Buffer) {
	t.Helper()
	require.LessOrEqual(t, b.Pos(), b.Size(), "pos must not pass size")
	require.LessOrEqual(t, b.Size(), b.Cap(), "size must not pass capacity")
}

func TestBuffer_Lifecycle(t *testing.T) {
	t.Run("New is empty", func(t *testing.T) {
		b := New()
		assert.Equal(t, 0, b.Pos())
		assert.Equal(t, 0, b.Size())
		assert.Equal(t, 0, b.Cap())
		assert.True(t, b.Empty())
		checkInvariants(t, b)
	})

	t.Run("Destroy is idempotent and nil-safe", func(t *testing.T) {
		b := New()
		require.NoError(t, b.Append([]byte("abc")))
		b.Destroy()
		assert.Equal(t, 0, b.Size())
		b.Destroy() // second call must be a no-op
		assert.Equal(t, 0, b.Size())

		var nilBuf *Buffer
		nilBuf.Destroy()
	})

	t.Run("Destroy keeps borrowed storage", func(t *testing.T) {
		backing := []byte{1, 2, 3}
		b := NewBorrowing(backing)
		b.Destroy()
		assert.Equal(t, []byte{1, 2, 3}, backing, "external storage must survive Destroy")

		// The buffer itself is done either way: no bytes remain readable
		// through it, same as a destroyed owned buffer.
		assert.Equal(t, 0, b.Size())
		_, err := b.PeekAt(0, 1)
		assert.True(t, errors.Is(err, ErrOutOfRange))
	})
}

func TestBuffer_Append(t *testing.T) {
	require := require.New(t)

	b := New()
	require.NoError(b.Append([]byte("hello")))
	require.Equal([]byte("hello"), b.Bytes())
	require.Equal(5, b.Pos(), "append advances the cursor")
	checkInvariants(t, b)

	// Appending after existing content lands at the high-water mark even when
	// the cursor was repositioned.
	require.NoError(b.Seek(1))
	require.NoError(b.Append([]byte(" world")))
	require.Equal([]byte("hello world"), b.Bytes())
	checkInvariants(t, b)
}

func TestBuffer_AppendByte(t *testing.T) {
	b := New()
	for i := byte(0); i < 100; i++ {
		require.NoError(t, b.AppendByte(i))
	}
	require.Equal(t, 100, b.Size())
	for i := 0; i < 100; i++ {
		assert.Equal(t, byte(i), b.Bytes()[i])
	}
	checkInvariants(t, b)
}

func TestBuffer_Growth(t *testing.T) {
	t.Run("slack amortizes reallocation", func(t *testing.T) {
		b := New()
		require.NoError(t, b.Append([]byte{1}))
		firstCap := b.Cap()
		require.GreaterOrEqual(t, firstCap, 1+growSlack)

		// Writes fitting the slack must not reallocate.
		for i := 0; i < growSlack; i++ {
			require.NoError(t, b.AppendByte(byte(i)))
		}
		assert.Equal(t, firstCap, b.Cap(), "no reallocation while slack covers the append")
	})

	t.Run("growth preserves content", func(t *testing.T) {
		b := New()
		require.NoError(t, b.Append([]byte("abcd")))
		big := make([]byte, growSlack*3)
		require.NoError(t, b.Append(big))
		assert.Equal(t, []byte("abcd"), b.Bytes()[:4])
		assert.GreaterOrEqual(t, b.Cap(), b.Size())
		checkInvariants(t, b)
	})

	t.Run("limit", func(t *testing.T) {
		b := New()
		b.SetLimit(8)
		require.NoError(t, b.Append([]byte("12345678")))

		err := b.AppendByte('9')
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAllocLimit))
		assert.Equal(t, []byte("12345678"), b.Bytes(), "failed growth must not disturb content")
	})
}

func TestBuffer_BorrowedWrites(t *testing.T) {
	b := NewBorrowing([]byte{1, 2, 3})

	err := b.Append([]byte{4})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBorrowed))

	err = b.Compact()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBorrowed))
}

func TestBuffer_Seek(t *testing.T) {
	b := New()
	require.NoError(t, b.Append([]byte("0123456789")))

	require.NoError(t, b.Seek(4))
	assert.Equal(t, 4, b.Pos())

	require.NoError(t, b.Seek(10), "seeking to size is allowed")
	assert.True(t, b.Empty())

	assert.True(t, errors.Is(b.Seek(11), ErrOutOfRange))
	assert.True(t, errors.Is(b.Seek(-1), ErrOutOfRange))
	assert.Equal(t, 10, b.Pos(), "failed seek must not move the cursor")
}

func TestBuffer_Anchor(t *testing.T) {
	type host struct{ payload string }

	b := New()
	first := &host{"first"}
	second := &host{"second"}

	b.SetAnchor(first)
	assert.Same(t, first, b.anchor)

	// Re-anchoring replaces the held reference.
	b.SetAnchor(second)
	assert.Same(t, second, b.anchor)

	b.ClearAnchor()
	assert.Nil(t, b.anchor)
	b.ClearAnchor() // repeat must be safe

	// Anchoring never disturbs content or cursor.
	require.NoError(t, b.Append([]byte("xy")))
	b.SetAnchor(first)
	assert.Equal(t, []byte("xy"), b.Bytes())
	assert.Equal(t, 2, b.Pos())
	b.Destroy()
	assert.Nil(t, b.anchor, "Destroy releases the anchor")
}

// TestBuffer_InvariantUnderOpSequence drives a mixed sequence of operations
// and re-checks pos <= size <= capacity after each one.
func TestBuffer_InvariantUnderOpSequence(t *testing.T) {
	b := New()
	steps := []func() error{
		func() error { return b.Append([]byte("abcdef")) },
		func() error { return b.Seek(2) },
		func() error { _, err := b.ReadU8(); return err },
		func() error { return b.Compact() },
		func() error { return b.Append(make([]byte, 1000)) },
		func() error { _, err := b.Skip(3); return err },
		func() error { return b.Compact() },
		func() error { return b.Compact() },
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		checkInvariants(t, b)
	}
}
