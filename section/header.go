package section

import (
	"fmt"

	"github.com/arloliu/objbase/errs"
)

// SnapshotHeader represents the fixed-size header section at the start of an arena snapshot.
type SnapshotHeader struct {
	// EntryCount is the number of offset index entries following the header.
	EntryCount uint32 // byte offset 4-7
	// RawLength is the byte length of the arena data before compression.
	RawLength uint64 // byte offset 8-15
	// StoredLength is the byte length of the data section as stored in the snapshot.
	StoredLength uint64 // byte offset 16-23
	// Checksum is the xxHash64 digest of the raw (uncompressed) arena data.
	Checksum uint64 // byte offset 24-31

	// Flag is a packed field for byte order, compression and magic number.
	Flag SnapshotFlag // byte offset 0-2, byte 3 is reserved
}

// NewSnapshotHeader creates a header with the default flag. Counts, lengths and the
// checksum are filled in by the snapshot writer.
func NewSnapshotHeader() *SnapshotHeader {
	return &SnapshotHeader{Flag: NewSnapshotFlag()}
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be exactly 32 bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not 32 bytes, or flag validation errors
func (h *SnapshotHeader) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidHeaderSize, len(data), HeaderSize)
	}

	// Options are always little-endian, they tell the byte order of everything else.
	h.Flag.Options = uint16(data[0]) | (uint16(data[1]) << 8)
	h.Flag.CompressionType = data[2]

	if err := h.Flag.Validate(); err != nil {
		return err
	}

	if data[3] != 0 {
		return fmt.Errorf("%w: reserved header byte 0x%02X", errs.ErrInvalidHeaderFlags, data[3])
	}

	engine := h.Flag.GetEndianEngine()
	h.EntryCount = engine.Uint32(data[4:8])
	h.RawLength = engine.Uint64(data[8:16])
	h.StoredLength = engine.Uint64(data[16:24])
	h.Checksum = engine.Uint64(data[24:32])

	if h.EntryCount > MaxEntryCount {
		return fmt.Errorf("%w: %d entries", errs.ErrInvalidHeaderSize, h.EntryCount)
	}

	return nil
}

// Bytes serializes the SnapshotHeader into a byte slice.
func (h *SnapshotHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)

	engine := h.Flag.GetEndianEngine()

	b[0] = byte(h.Flag.Options)
	b[1] = byte(h.Flag.Options >> 8)
	b[2] = h.Flag.CompressionType
	engine.PutUint32(b[4:8], h.EntryCount)
	engine.PutUint64(b[8:16], h.RawLength)
	engine.PutUint64(b[16:24], h.StoredLength)
	engine.PutUint64(b[24:32], h.Checksum)

	return b
}

// IndexSize returns the byte length of the index section described by the header.
func (h *SnapshotHeader) IndexSize() int {
	return int(h.EntryCount) * IndexEntrySize
}

// DataOffset returns the byte offset of the data section.
func (h *SnapshotHeader) DataOffset() int {
	return HeaderSize + h.IndexSize()
}

// ParseSnapshotHeader parses a SnapshotHeader from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be at least 32 bytes)
//
// Returns:
//   - SnapshotHeader: Parsed header struct
//   - error: ErrInvalidHeaderSize or flag validation errors
func ParseSnapshotHeader(data []byte) (SnapshotHeader, error) {
	if len(data) < HeaderSize {
		return SnapshotHeader{}, fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidHeaderSize, len(data), HeaderSize)
	}

	h := SnapshotHeader{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return SnapshotHeader{}, err
	}

	return h, nil
}
