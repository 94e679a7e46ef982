// Package errs defines the sentinel errors shared by every objbase package.
//
// Errors are returned wrapped with context (fmt.Errorf("%w: ...")), so callers should
// match them with errors.Is rather than comparing values directly.
package errs

import "errors"

// Decoding and versioning errors.
var (
	// ErrVersionMismatch is returned when the version tag read in front of an entity does
	// not match the static tag of the type being decoded. It is fatal for that record:
	// the target entity is left untouched and no partial decode is attempted.
	ErrVersionMismatch = errors.New("version tag mismatch")
	// ErrInvalidTagSize is returned when a version tag block is not exactly TagSize bytes.
	ErrInvalidTagSize = errors.New("invalid version tag size")
	// ErrInvalidPayloadSize is returned when a payload block does not match the size
	// declared by its type.
	ErrInvalidPayloadSize = errors.New("invalid payload size")
)

// Arena errors.
var (
	// ErrInsufficientData is returned when a read asks for more bytes than are available.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUnknownOffset is returned when an indexed read targets an offset that was never
	// recorded by a write.
	ErrUnknownOffset = errors.New("unknown offset")
	// ErrInvalidOffset is returned for negative offsets or sizes.
	ErrInvalidOffset = errors.New("invalid offset")
	// ErrShortBuffer is returned when the destination slice cannot hold the requested bytes.
	ErrShortBuffer = errors.New("destination buffer too short")
	// ErrCorruptIndex is returned when a restored offset index does not tile the data.
	ErrCorruptIndex = errors.New("corrupt offset index")
)

// Identity errors.
var (
	ErrInvalidStep       = errors.New("sequence step must be positive")
	ErrInvalidSequence   = errors.New("sequence value must not be negative")
	ErrSequenceExhausted = errors.New("sequence exhausted")
	ErrInvalidCapacity   = errors.New("invalid cache capacity")
	// ErrCapacityExceeded is returned by a cache policy that refuses to evict when a new id
	// is requested and the cache is already at its maximum capacity.
	ErrCapacityExceeded = errors.New("cache capacity exceeded")
)

// Command errors.
var (
	// ErrCommandFailure wraps the error raised by a command effect during Run.
	ErrCommandFailure = errors.New("command failed")
	// ErrUndoFailure wraps the error raised by a command effect during Undo.
	ErrUndoFailure       = errors.New("command undo failed")
	ErrCommandAlreadyRun = errors.New("command already run")
	ErrCompositeFull     = errors.New("composite command is full")
)

// Snapshot, store and configuration errors.
var (
	ErrInvalidHeaderSize     = errors.New("invalid header size")
	ErrInvalidIndexEntrySize = errors.New("invalid index entry size")
	ErrInvalidMagicNumber    = errors.New("invalid magic number")
	ErrInvalidHeaderFlags    = errors.New("invalid header flags")
	ErrChecksumMismatch      = errors.New("checksum mismatch")
	ErrDecompressedSize      = errors.New("decompressed size mismatch")
	ErrNotFound              = errors.New("entity not found")
	ErrInvalidConfig         = errors.New("invalid configuration")
)
