package section

import (
	"fmt"

	"github.com/arloliu/objbase/arena"
	"github.com/arloliu/objbase/endian"
	"github.com/arloliu/objbase/errs"
)

// IndexEntry records one arena write in the snapshot index section.
// It is a fixed size of 16 bytes.
type IndexEntry struct {
	// Offset is the arena offset at which the write started.
	//
	// Offset: 0, Size: 8 bytes
	Offset uint64

	// Size is the byte length of the write.
	//
	// Offset: 8, Size: 8 bytes
	Size uint64
}

// NewIndexEntry converts an arena entry.
func NewIndexEntry(e arena.Entry) IndexEntry {
	return IndexEntry{Offset: uint64(e.Offset), Size: uint64(e.Size)} //nolint: gosec
}

// Entry converts the index entry back to an arena entry.
func (e IndexEntry) Entry() arena.Entry {
	return arena.Entry{Offset: int(e.Offset), Size: int(e.Size)} //nolint: gosec
}

// AppendTo appends the encoded entry to dst.
func (e IndexEntry) AppendTo(engine endian.EndianEngine, dst []byte) []byte {
	dst = engine.AppendUint64(dst, e.Offset)
	return engine.AppendUint64(dst, e.Size)
}

// ParseIndexEntry parses an IndexEntry from a byte slice.
//
// Parameters:
//   - data: Byte slice containing index entry (must be at least 16 bytes)
//   - engine: Endian engine for byte order
//
// Returns:
//   - IndexEntry: Parsed index entry
//   - error: ErrInvalidIndexEntrySize if data is too short
func ParseIndexEntry(data []byte, engine endian.EndianEngine) (IndexEntry, error) {
	if len(data) < IndexEntrySize {
		return IndexEntry{}, fmt.Errorf("%w: got %d bytes", errs.ErrInvalidIndexEntrySize, len(data))
	}

	return IndexEntry{
		Offset: engine.Uint64(data[0:8]),
		Size:   engine.Uint64(data[8:16]),
	}, nil
}

// ParseIndex parses count consecutive entries.
func ParseIndex(data []byte, count int, engine endian.EndianEngine) ([]arena.Entry, error) {
	if len(data) < count*IndexEntrySize {
		return nil, fmt.Errorf("%w: index needs %d bytes, got %d",
			errs.ErrInvalidIndexEntrySize, count*IndexEntrySize, len(data))
	}

	entries := make([]arena.Entry, count)
	for i := range entries {
		e, err := ParseIndexEntry(data[i*IndexEntrySize:], engine)
		if err != nil {
			return nil, err
		}
		entries[i] = e.Entry()
	}

	return entries, nil
}
