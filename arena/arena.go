// Package arena implements a growable byte arena with an offset-indexed view of every
// write.
//
// An Arena owns a contiguous byte buffer with two cursors: the write cursor (the number
// of bytes written so far, which never decreases) and a read cursor used for sequential
// reads. Every Write or Append records one index entry mapping the write's start offset
// to its length, so records can later be fetched by offset alone:
//
//	a := arena.New(1024)
//	off := a.Write(record)
//	n, err := a.ReadEntry(buf, off)
//
// Reads are validated against the written region: asking for bytes beyond the write
// cursor fails with errs.ErrInsufficientData, and the read cursor advances only when a
// read starts exactly at it.
//
// An Arena is not safe for concurrent use.
package arena

import (
	"fmt"
	"io"

	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/internal/pool"
)

// DefaultCapacity is the capacity used by New when a non-positive capacity is given.
const DefaultCapacity = 1024

// Entry is one index record: a write's start offset and its length in bytes.
type Entry struct {
	Offset int
	Size   int
}

// End returns the offset just past the entry.
func (e Entry) End() int {
	return e.Offset + e.Size
}

// Arena is a growable byte buffer with independent write and read cursors.
type Arena struct {
	buf     *pool.ByteBuffer
	readPos int
	sizes   map[int]int // write start offset -> length
	entries []Entry     // entries in write order
}

// New creates an empty arena with the given initial capacity.
func New(capacity int) *Arena {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Arena{
		buf:   pool.NewByteBuffer(capacity),
		sizes: make(map[int]int),
	}
}

// Write copies p at the write cursor and returns the offset it was written at.
//
// Storage grows geometrically when p does not fit. A zero-length write still records an
// index entry so that every call is addressable.
func (a *Arena) Write(p []byte) int {
	offset := a.buf.Len()
	_, _ = a.buf.Write(p)

	a.record(offset, len(p))

	return offset
}

// Append writes the written region of other onto a as a single entry and returns its
// offset. Other is not modified.
func (a *Arena) Append(other *Arena) int {
	if other == a {
		// Copy first: growing a would otherwise alias the source region.
		src := make([]byte, a.buf.Len())
		copy(src, a.buf.Bytes())

		return a.Write(src)
	}

	return a.Write(other.buf.Bytes())
}

func (a *Arena) record(offset, size int) {
	a.sizes[offset] = size
	a.entries = append(a.entries, Entry{Offset: offset, Size: size})
}

// Read copies size bytes starting at offset into dst.
//
// Returns:
//   - errs.ErrInvalidOffset if offset or size is negative
//   - errs.ErrShortBuffer if dst is shorter than size
//   - errs.ErrInsufficientData if offset+size runs past the written region
//
// The read cursor advances by size only when offset equals the current read cursor.
func (a *Arena) Read(dst []byte, offset, size int) error {
	if err := a.Peek(dst, offset, size); err != nil {
		return err
	}

	if offset == a.readPos {
		a.readPos += size
	}

	return nil
}

// Peek copies size bytes starting at offset into dst like Read, but never moves the
// read cursor.
func (a *Arena) Peek(dst []byte, offset, size int) error {
	if offset < 0 || size < 0 {
		return fmt.Errorf("%w: offset %d, size %d", errs.ErrInvalidOffset, offset, size)
	}

	if len(dst) < size {
		return fmt.Errorf("%w: need %d bytes, have %d", errs.ErrShortBuffer, size, len(dst))
	}

	if offset+size > a.buf.Len() {
		return fmt.Errorf("%w: need %d bytes at offset %d, written %d",
			errs.ErrInsufficientData, size, offset, a.buf.Len())
	}

	copy(dst, a.buf.B[offset:offset+size])

	return nil
}

// Seek moves the read cursor to offset, which must lie within the written region.
func (a *Arena) Seek(offset int) error {
	if offset < 0 || offset > a.buf.Len() {
		return fmt.Errorf("%w: seek to %d, written %d", errs.ErrInvalidOffset, offset, a.buf.Len())
	}
	a.readPos = offset

	return nil
}

// ReadEntry reads the entry recorded at offset into dst and returns its size.
// Returns errs.ErrUnknownOffset if no write started at offset.
func (a *Arena) ReadEntry(dst []byte, offset int) (int, error) {
	size, ok := a.sizes[offset]
	if !ok {
		return 0, fmt.Errorf("%w: %d", errs.ErrUnknownOffset, offset)
	}

	if err := a.Read(dst, offset, size); err != nil {
		return 0, err
	}

	return size, nil
}

// Next reads len(dst) bytes at the read cursor and advances it.
func (a *Arena) Next(dst []byte) error {
	if len(dst) > a.ReadAvailable() {
		return fmt.Errorf("%w: need %d bytes, %d available to read",
			errs.ErrInsufficientData, len(dst), a.ReadAvailable())
	}

	return a.Read(dst, a.readPos, len(dst))
}

// Cap returns the total capacity of the backing storage.
func (a *Arena) Cap() int {
	return a.buf.Cap()
}

// Len returns the number of bytes written. It is the same as WriteCursor.
func (a *Arena) Len() int {
	return a.buf.Len()
}

// WriteCursor returns the offset the next write will start at.
func (a *Arena) WriteCursor() int {
	return a.buf.Len()
}

// ReadCursor returns the offset the next sequential read will start at.
func (a *Arena) ReadCursor() int {
	return a.readPos
}

// WriteAvailable returns how many bytes fit before the storage must grow.
func (a *Arena) WriteAvailable() int {
	return a.buf.Available()
}

// ReadAvailable returns the bytes between the read cursor and the write cursor.
func (a *Arena) ReadAvailable() int {
	return a.buf.Len() - a.readPos
}

// Count returns the number of indexed entries.
func (a *Arena) Count() int {
	return len(a.entries)
}

// EntrySize returns the size recorded for offset.
func (a *Arena) EntrySize(offset int) (int, bool) {
	size, ok := a.sizes[offset]
	return size, ok
}

// Entries returns a copy of the index in write order.
func (a *Arena) Entries() []Entry {
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)

	return out
}

// Bytes returns the written region. The slice aliases the arena storage and is only
// valid until the next write.
func (a *Arena) Bytes() []byte {
	return a.buf.Bytes()
}

// Rewind moves the read cursor back to the start.
func (a *Arena) Rewind() {
	a.readPos = 0
}

// Reset discards all data and index entries but keeps the allocated storage.
func (a *Arena) Reset() {
	a.buf.Reset()
	a.readPos = 0
	clear(a.sizes)
	a.entries = a.entries[:0]
}

// Restore rebuilds an arena from raw data and its index. The entries must appear in
// write order and tile data exactly, as produced by Entries.
func Restore(data []byte, entries []Entry) (*Arena, error) {
	next := 0
	for i, e := range entries {
		if e.Offset != next || e.Size < 0 || e.End() > len(data) {
			return nil, fmt.Errorf("%w: entry %d (offset %d, size %d) does not follow offset %d",
				errs.ErrCorruptIndex, i, e.Offset, e.Size, next)
		}
		next = e.End()
	}

	if next != len(data) {
		return nil, fmt.Errorf("%w: entries cover %d of %d bytes", errs.ErrCorruptIndex, next, len(data))
	}

	a := New(len(data))
	_, _ = a.buf.Write(data)
	for _, e := range entries {
		a.record(e.Offset, e.Size)
	}

	return a, nil
}

// WriteTo writes the written region to w. It implements io.WriterTo.
func (a *Arena) WriteTo(w io.Writer) (int64, error) {
	return a.buf.WriteTo(w)
}

// ReadFrom reads r until EOF and appends everything read as a single entry.
// It implements io.ReaderFrom.
func (a *Arena) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	a.Write(data)

	return int64(len(data)), nil
}
