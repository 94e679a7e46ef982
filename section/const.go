package section

import (
	"github.com/arloliu/objbase/format"
)

const (
	// Bit masks
	EndiannessMask   = 0x0002 // Mask for endianness bit (bit 1)
	ReservedBitsMask = 0x000D // Mask for reserved bits (bits 0, 2, 3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// Magic numbers (bits 4-15)
	MagicSnapshotV1Opt = 0x0B10 // MagicSnapshotV1Opt is the version 1 magic number of arena snapshots.

	// Snapshot data compression, using format package constants
	CompressionNone = uint8(format.CompressionNone) // CompressionNone stores the arena data as-is.
	CompressionZstd = uint8(format.CompressionZstd) // CompressionZstd represents Zstandard compression.
	CompressionS2   = uint8(format.CompressionS2)   // CompressionS2 represents S2 compression.
	CompressionLZ4  = uint8(format.CompressionLZ4)  // CompressionLZ4 represents LZ4 compression.
)

// offset and section sizes in the snapshot file
const (
	HeaderSize        = 32                           // fixed header size in bytes
	IndexEntrySize    = 16                           // fixed index entry size in bytes
	IndexOffsetOffset = HeaderSize                   // byte offset where the index section starts
	MaxEntryCount     = (1<<31 - 1) / IndexEntrySize // upper bound on entries a header may declare
)
