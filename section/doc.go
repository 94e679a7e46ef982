// Package section defines the low-level binary structures and constants of the arena
// snapshot format.
//
// # Snapshot Structure
//
// A snapshot is one arena image: a fixed header, the arena's offset index and the
// (optionally compressed) arena bytes.
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (32 bytes, fixed)                                │
//	│  - Flag (3 bytes + 1 reserved): order/compression/magic │
//	│  - EntryCount (4 bytes)                                 │
//	│  - RawLength, StoredLength, Checksum (8 bytes each)     │
//	├─────────────────────────────────────────────────────────┤
//	│ Index (N × 16 bytes, fixed per entry)                   │
//	│  - One entry per arena write: offset, size              │
//	├─────────────────────────────────────────────────────────┤
//	│ Data (StoredLength bytes)                               │
//	│  - Arena bytes, compressed as the flag says             │
//	└─────────────────────────────────────────────────────────┘
//
// # Header Format
//
//	Bytes  | Field           | Type   | Description
//	-------|-----------------|--------|----------------------------------
//	0-1    | Options         | uint16 | Magic number and byte order, always little-endian
//	2      | CompressionType | uint8  | 0x1=None, 0x2=Zstd, 0x3=S2, 0x4=LZ4
//	3      | Reserved        | uint8  | Must be 0
//	4-7    | EntryCount      | uint32 | Number of index entries
//	8-15   | RawLength       | uint64 | Arena data length before compression
//	16-23  | StoredLength    | uint64 | Data section length in the file
//	24-31  | Checksum        | uint64 | xxHash64 of the raw arena data
//
// Options bits:
//
//	Bit 0: Reserved (must be 0)
//	Bit 1: Endianness (0=little-endian, 1=big-endian)
//	Bits 2-3: Reserved (must be 0)
//	Bits 4-15: Magic number (0x0B10 for snapshot v1)
//
// # Index Entry Format
//
//	Bytes  | Field  | Type   | Description
//	-------|--------|--------|----------------------------------
//	0-7    | Offset | uint64 | Arena offset where the write started
//	8-15   | Size   | uint64 | Length of the write
//
// Every multi-byte field after the options uses the byte order selected by bit 1.
package section
