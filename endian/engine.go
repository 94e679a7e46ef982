// Package endian provides the byte order engines used by every objbase codec.
//
// An EndianEngine combines encoding/binary's ByteOrder and AppendByteOrder so record
// encoders can append fields directly to a destination slice:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint64(buf, uint64(id))
//
// Entity records, version tags and snapshot headers are written through an engine chosen
// by configuration (format.ByteOrder), so byte order is honored for real rather than
// accepted and ignored. Little-endian is the default.
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use. Engines are stateless.
package endian

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/arloliu/objbase/format"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100: a little-endian host stores the 0x00 byte first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// NativeOrder returns the host byte order as a format.ByteOrder.
func NativeOrder() format.ByteOrder {
	if CheckEndianness() == binary.BigEndian {
		return format.BigEndian
	}

	return format.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// ForOrder returns the engine for the given byte order.
func ForOrder(order format.ByteOrder) (EndianEngine, error) {
	switch order {
	case format.LittleEndian:
		return binary.LittleEndian, nil
	case format.BigEndian:
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("unsupported byte order: %s", order)
	}
}

// OrderOf reports which byte order an engine implements.
func OrderOf(engine EndianEngine) format.ByteOrder {
	if engine == binary.BigEndian {
		return format.BigEndian
	}

	return format.LittleEndian
}

// IsNative reports whether the engine matches the host byte order.
func IsNative(engine EndianEngine) bool {
	return OrderOf(engine) == NativeOrder()
}

// AppendInt16 appends a signed 16-bit value using the engine's byte order.
func AppendInt16(engine EndianEngine, dst []byte, v int16) []byte {
	return engine.AppendUint16(dst, uint16(v))
}

// Int16 decodes a signed 16-bit value. b must hold at least 2 bytes.
func Int16(engine EndianEngine, b []byte) int16 {
	return int16(engine.Uint16(b))
}

// AppendInt64 appends a signed 64-bit value using the engine's byte order.
func AppendInt64(engine EndianEngine, dst []byte, v int64) []byte {
	return engine.AppendUint64(dst, uint64(v))
}

// Int64 decodes a signed 64-bit value. b must hold at least 8 bytes.
func Int64(engine EndianEngine, b []byte) int64 {
	return int64(engine.Uint64(b))
}
