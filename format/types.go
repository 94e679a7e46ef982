// Package format holds the small enumerations shared across objbase packages and
// configuration: byte order, snapshot compression and cache eviction kinds.
package format

import (
	"fmt"
	"strings"
)

type (
	ByteOrder       uint8
	CompressionType uint8
	EvictionType    uint8
)

const (
	LittleEndian ByteOrder = 0x1 // LittleEndian encodes multi-byte fields least significant byte first.
	BigEndian    ByteOrder = 0x2 // BigEndian encodes multi-byte fields most significant byte first.

	CompressionNone CompressionType = 0x1 // CompressionNone stores snapshot data as-is.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.

	EvictionLRU    EvictionType = 0x1 // EvictionLRU drops the least recently used entry.
	EvictionReject EvictionType = 0x2 // EvictionReject refuses new ids once the cache is full.
)

func (o ByteOrder) String() string {
	switch o {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func (e EvictionType) String() string {
	switch e {
	case EvictionLRU:
		return "lru"
	case EvictionReject:
		return "reject"
	default:
		return "Unknown"
	}
}

// ParseByteOrder parses "little" or "big" (case-insensitive).
func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(s) {
	case "little", "le", "":
		return LittleEndian, nil
	case "big", "be":
		return BigEndian, nil
	default:
		return 0, fmt.Errorf("unknown byte order: %q", s)
	}
}

// ParseCompressionType parses a compression name such as "zstd" or "none".
func ParseCompressionType(s string) (CompressionType, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression type: %q", s)
	}
}

// ParseEvictionType parses "lru" or "reject".
func ParseEvictionType(s string) (EvictionType, error) {
	switch strings.ToLower(s) {
	case "lru", "":
		return EvictionLRU, nil
	case "reject":
		return EvictionReject, nil
	default:
		return 0, fmt.Errorf("unknown eviction type: %q", s)
	}
}
