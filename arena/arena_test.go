package arena

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arloliu/objbase/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a := New(64)

	require.Equal(t, 64, a.Cap())
	require.Equal(t, 0, a.Len())
	require.Equal(t, 0, a.ReadCursor())
	require.Equal(t, 64, a.WriteAvailable())
	require.Equal(t, 0, a.ReadAvailable())
	require.Equal(t, 0, a.Count())

	require.Equal(t, DefaultCapacity, New(0).Cap())
}

func TestArena_HelloWorld(t *testing.T) {
	a := New(1024)
	src := []byte("Hello World!\x00")
	src = append(src, 0) // 14 bytes, as a C string literal with its terminator

	offset := a.Write(src)

	require.Equal(t, 0, offset)
	require.Equal(t, 1010, a.WriteAvailable())
	require.Equal(t, 1, a.Count())

	buf := make([]byte, 14)
	require.NoError(t, a.Read(buf, 0, 14))
	require.Equal(t, src, buf)
}

func TestArena_Write(t *testing.T) {
	t.Run("offsets follow the write cursor", func(t *testing.T) {
		a := New(8)

		require.Equal(t, 0, a.Write([]byte("abc")))
		require.Equal(t, 3, a.Write([]byte("defgh")))
		require.Equal(t, 8, a.Write([]byte("ij")))

		require.Equal(t, 10, a.WriteCursor())
		require.Equal(t, 3, a.Count())
		require.Equal(t, []Entry{{0, 3}, {3, 5}, {8, 2}}, a.Entries())
		require.Equal(t, []byte("abcdefghij"), a.Bytes())
	})

	t.Run("grows geometrically", func(t *testing.T) {
		a := New(8)
		a.Write(make([]byte, 8))
		a.Write([]byte{1})

		require.Equal(t, 16, a.Cap())
		require.Equal(t, 7, a.WriteAvailable())
	})

	t.Run("empty write is indexed", func(t *testing.T) {
		a := New(8)
		off := a.Write(nil)

		require.Equal(t, 0, off)
		require.Equal(t, 1, a.Count())
		size, ok := a.EntrySize(0)
		require.True(t, ok)
		require.Equal(t, 0, size)
	})
}

func TestArena_ReadAvailable(t *testing.T) {
	a := New(4)
	total := 0
	for _, s := range []string{"a", "bcd", "efghij", "k"} {
		a.Write([]byte(s))
		total += len(s)
	}

	require.Equal(t, total, a.ReadAvailable())

	buf := make([]byte, total+1)
	err := a.Read(buf, 0, total+1)
	require.ErrorIs(t, err, errs.ErrInsufficientData)
	require.Equal(t, 0, a.ReadCursor())
}

func TestArena_Read(t *testing.T) {
	newArena := func() *Arena {
		a := New(32)
		a.Write([]byte("first"))
		a.Write([]byte("second"))

		return a
	}

	t.Run("sequential read advances cursor", func(t *testing.T) {
		a := newArena()
		buf := make([]byte, 5)

		require.NoError(t, a.Read(buf, 0, 5))
		require.Equal(t, "first", string(buf))
		require.Equal(t, 5, a.ReadCursor())
		require.Equal(t, 6, a.ReadAvailable())
	})

	t.Run("random read leaves cursor", func(t *testing.T) {
		a := newArena()
		buf := make([]byte, 6)

		require.NoError(t, a.Read(buf, 5, 6))
		require.Equal(t, "second", string(buf))
		require.Equal(t, 0, a.ReadCursor())
	})

	t.Run("random read is validated against the written region", func(t *testing.T) {
		a := newArena()
		buf := make([]byte, 11)

		// Move the read cursor to the end; an absolute read of earlier data still works.
		require.NoError(t, a.Read(buf, 0, 11))
		require.Equal(t, 0, a.ReadAvailable())
		require.NoError(t, a.Read(buf[:5], 0, 5))
		require.Equal(t, "first", string(buf[:5]))
	})

	t.Run("past the end", func(t *testing.T) {
		a := newArena()
		err := a.Read(make([]byte, 4), 9, 4)
		require.ErrorIs(t, err, errs.ErrInsufficientData)
	})

	t.Run("negative offset", func(t *testing.T) {
		a := newArena()
		require.ErrorIs(t, a.Read(make([]byte, 1), -1, 1), errs.ErrInvalidOffset)
		require.ErrorIs(t, a.Read(make([]byte, 1), 0, -1), errs.ErrInvalidOffset)
	})

	t.Run("short destination", func(t *testing.T) {
		a := newArena()
		require.ErrorIs(t, a.Read(make([]byte, 2), 0, 5), errs.ErrShortBuffer)
	})
}

func TestArena_PeekSeek(t *testing.T) {
	a := New(16)
	a.Write([]byte("abcd"))
	a.Write([]byte("efgh"))

	buf := make([]byte, 4)
	require.NoError(t, a.Peek(buf, 0, 4))
	require.Equal(t, []byte("abcd"), buf)
	require.Zero(t, a.ReadCursor())

	require.ErrorIs(t, a.Peek(buf, 6, 4), errs.ErrInsufficientData)
	require.ErrorIs(t, a.Peek(buf, -1, 4), errs.ErrInvalidOffset)
	require.ErrorIs(t, a.Peek(buf[:2], 0, 4), errs.ErrShortBuffer)

	require.NoError(t, a.Seek(4))
	require.NoError(t, a.Next(buf))
	require.Equal(t, []byte("efgh"), buf)
	require.Equal(t, 8, a.ReadCursor())

	require.NoError(t, a.Seek(8))
	require.ErrorIs(t, a.Seek(9), errs.ErrInvalidOffset)
	require.ErrorIs(t, a.Seek(-1), errs.ErrInvalidOffset)
	require.Equal(t, 8, a.ReadCursor())
}

func TestArena_ReadEntry(t *testing.T) {
	a := New(16)
	a.Write([]byte("key"))
	off := a.Write([]byte("value"))

	buf := make([]byte, 16)
	n, err := a.ReadEntry(buf, off)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "value", string(buf[:n]))

	_, err = a.ReadEntry(buf, 1)
	require.ErrorIs(t, err, errs.ErrUnknownOffset)

	_, err = a.ReadEntry(buf[:2], off)
	require.ErrorIs(t, err, errs.ErrShortBuffer)
}

func TestArena_Next(t *testing.T) {
	a := New(16)
	a.Write([]byte("abcdef"))

	buf := make([]byte, 4)
	require.NoError(t, a.Next(buf))
	require.Equal(t, "abcd", string(buf))

	require.ErrorIs(t, a.Next(buf), errs.ErrInsufficientData)
	require.Equal(t, 4, a.ReadCursor())

	require.NoError(t, a.Next(buf[:2]))
	require.Equal(t, "ef", string(buf[:2]))
	require.Equal(t, 0, a.ReadAvailable())

	a.Rewind()
	require.Equal(t, 6, a.ReadAvailable())
}

func TestArena_Append(t *testing.T) {
	src := New(8)
	src.Write([]byte("one"))
	src.Write([]byte("two"))

	dst := New(4)
	dst.Write([]byte("zero"))
	off := dst.Append(src)

	require.Equal(t, 4, off)
	require.Equal(t, 2, dst.Count())
	size, ok := dst.EntrySize(off)
	require.True(t, ok)
	require.Equal(t, 6, size)
	require.Equal(t, "zeroonetwo", string(dst.Bytes()))

	// The source is untouched.
	require.Equal(t, 2, src.Count())
	require.Equal(t, "onetwo", string(src.Bytes()))
}

func TestArena_AppendSelf(t *testing.T) {
	a := New(4)
	a.Write([]byte("abcd"))
	a.Append(a)

	require.Equal(t, "abcdabcd", string(a.Bytes()))
	require.Equal(t, 2, a.Count())
}

func TestArena_Reset(t *testing.T) {
	a := New(8)
	a.Write([]byte("abcdefgh"))
	require.NoError(t, a.Next(make([]byte, 2)))
	capBefore := a.Cap()

	a.Reset()

	require.Equal(t, 0, a.Len())
	require.Equal(t, 0, a.ReadCursor())
	require.Equal(t, 0, a.Count())
	require.Equal(t, capBefore, a.Cap())
	_, ok := a.EntrySize(0)
	require.False(t, ok)
}

func TestRestore(t *testing.T) {
	t.Run("valid index", func(t *testing.T) {
		orig := New(8)
		orig.Write([]byte("ab"))
		orig.Write([]byte("cde"))

		restored, err := Restore(orig.Bytes(), orig.Entries())
		require.NoError(t, err)
		require.Equal(t, orig.Bytes(), restored.Bytes())
		require.Equal(t, orig.Entries(), restored.Entries())

		buf := make([]byte, 3)
		n, err := restored.ReadEntry(buf, 2)
		require.NoError(t, err)
		require.Equal(t, "cde", string(buf[:n]))
	})

	t.Run("gap", func(t *testing.T) {
		_, err := Restore([]byte("abcde"), []Entry{{0, 2}, {3, 2}})
		require.ErrorIs(t, err, errs.ErrCorruptIndex)
	})

	t.Run("overrun", func(t *testing.T) {
		_, err := Restore([]byte("abc"), []Entry{{0, 4}})
		require.ErrorIs(t, err, errs.ErrCorruptIndex)
	})

	t.Run("uncovered tail", func(t *testing.T) {
		_, err := Restore([]byte("abc"), []Entry{{0, 2}})
		require.ErrorIs(t, err, errs.ErrCorruptIndex)
	})

	t.Run("empty", func(t *testing.T) {
		a, err := Restore(nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, a.Len())
	})
}

func TestArena_Streams(t *testing.T) {
	a := New(8)
	a.Write([]byte("stream"))
	a.Write([]byte("ed"))

	var out bytes.Buffer
	n, err := a.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(8), n)
	require.Equal(t, "streamed", out.String())

	b := New(4)
	m, err := b.ReadFrom(strings.NewReader("streamed"))
	require.NoError(t, err)
	require.Equal(t, int64(8), m)
	require.Equal(t, 1, b.Count())
	require.Equal(t, a.Bytes(), b.Bytes())
}

func BenchmarkArena_Write(b *testing.B) {
	record := make([]byte, 32)
	a := New(1024)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if a.Len() > 1<<20 {
			a.Reset()
		}
		a.Write(record)
	}
}
