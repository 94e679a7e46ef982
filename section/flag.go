package section

import (
	"fmt"

	"github.com/arloliu/objbase/endian"
	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/format"
)

// SnapshotFlag represents the packed flag field at the start of the snapshot header.
type SnapshotFlag struct {
	// Options is a packed field for various options.
	// Bit 0 is reserved, must be set to 0.
	// Bit 1 is endianness flag, 0 means little-endian, 1 means big-endian.
	// Bit 2-3 are reserved for future use, must be set to 0.
	// Bit 4-15 are magic number to identify the snapshot format:
	//   - 0x0B10 (0b0000_1011_0001_0000): arena snapshot format v1
	Options uint16

	// CompressionType is the compression applied to the stored arena data.
	CompressionType uint8
}

var validCompressions = map[uint8]struct{}{
	CompressionNone: {},
	CompressionZstd: {},
	CompressionS2:   {},
	CompressionLZ4:  {},
}

// NewSnapshotFlag creates a little-endian, uncompressed snapshot flag.
func NewSnapshotFlag() SnapshotFlag {
	flag := SnapshotFlag{
		Options:         MagicSnapshotV1Opt,
		CompressionType: CompressionNone,
	}
	flag.WithLittleEndian()

	return flag
}

// IsLittleEndian returns whether the data is little-endian.
func (f SnapshotFlag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the data is big-endian.
func (f SnapshotFlag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *SnapshotFlag) WithLittleEndian() {
	f.Options &= ^uint16(EndiannessMask)
}

// WithBigEndian sets big-endian byte order.
func (f *SnapshotFlag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// SetByteOrder sets the byte order bit from order.
func (f *SnapshotFlag) SetByteOrder(order format.ByteOrder) {
	if order == format.BigEndian {
		f.WithBigEndian()
	} else {
		f.WithLittleEndian()
	}
}

// ByteOrder returns the byte order selected by the flag.
func (f SnapshotFlag) ByteOrder() format.ByteOrder {
	if f.IsBigEndian() {
		return format.BigEndian
	}

	return format.LittleEndian
}

// GetEndianEngine returns the engine matching the endianness bit.
func (f SnapshotFlag) GetEndianEngine() endian.EndianEngine {
	if f.IsBigEndian() {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// GetMagicNumber returns the magic number from the Options field.
func (f SnapshotFlag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// Compression returns the data compression type.
func (f SnapshotFlag) Compression() format.CompressionType {
	return format.CompressionType(f.CompressionType)
}

// SetCompression sets the data compression type.
func (f *SnapshotFlag) SetCompression(compression format.CompressionType) {
	f.CompressionType = uint8(compression)
}

// IsValidMagicNumber checks if the magic number is valid.
func (f SnapshotFlag) IsValidMagicNumber() bool {
	return f.GetMagicNumber() == MagicSnapshotV1Opt
}

// IsValidCompression checks if the compression type is valid.
func (f SnapshotFlag) IsValidCompression() bool {
	_, ok := validCompressions[f.CompressionType]
	return ok
}

// Validate checks if the flag contains valid values.
func (f SnapshotFlag) Validate() error {
	if !f.IsValidMagicNumber() {
		return fmt.Errorf("%w: 0x%04X", errs.ErrInvalidMagicNumber, f.GetMagicNumber())
	}

	if f.Options&ReservedBitsMask != 0 {
		return fmt.Errorf("%w: reserved option bits 0x%04X", errs.ErrInvalidHeaderFlags, f.Options&ReservedBitsMask)
	}

	if !f.IsValidCompression() {
		return fmt.Errorf("%w: compression %d", errs.ErrInvalidHeaderFlags, f.CompressionType)
	}

	return nil
}
