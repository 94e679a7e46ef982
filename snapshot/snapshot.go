// Package snapshot moves whole arenas to and from byte streams.
//
// A snapshot is the section.SnapshotHeader, the arena's offset index and the arena bytes,
// optionally compressed with one of the compress codecs. The header carries an xxHash64
// checksum of the uncompressed bytes, so a restored arena is byte-for-byte the arena
// that was written, with the same entries at the same offsets:
//
//	var buf bytes.Buffer
//	_, err := snapshot.Write(&buf, a, snapshot.WithCompression(format.CompressionZstd))
//	...
//	restored, err := snapshot.Read(&buf)
//
// Entity records inside the arena keep their own byte order; WithByteOrder only selects
// the order of the snapshot framing.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/objbase/arena"
	"github.com/arloliu/objbase/compress"
	"github.com/arloliu/objbase/endian"
	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/format"
	"github.com/arloliu/objbase/internal/options"
	"github.com/arloliu/objbase/internal/pool"
	"github.com/arloliu/objbase/section"
)

// DefaultMaxSize is the largest raw arena Read accepts unless WithMaxSize says otherwise.
const DefaultMaxSize = 1 << 30

type config struct {
	compression format.CompressionType
	order       format.ByteOrder
	maxSize     uint64
}

// Option configures Write and Read.
type Option = options.Option[*config]

// WithCompression selects the codec applied to the arena bytes. Ignored by Read.
func WithCompression(c format.CompressionType) Option {
	return options.New(func(cfg *config) error {
		if _, err := compress.GetCodec(c); err != nil {
			return err
		}
		cfg.compression = c

		return nil
	})
}

// WithByteOrder selects the byte order of the header and index. Ignored by Read.
func WithByteOrder(order format.ByteOrder) Option {
	return options.New(func(cfg *config) error {
		if _, err := endian.ForOrder(order); err != nil {
			return err
		}
		cfg.order = order

		return nil
	})
}

// WithMaxSize bounds the raw and stored lengths Read accepts from a header.
func WithMaxSize(n uint64) Option {
	return options.NoError(func(cfg *config) {
		cfg.maxSize = n
	})
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		compression: format.CompressionNone,
		order:       format.LittleEndian,
		maxSize:     DefaultMaxSize,
	}

	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Image is a decoded snapshot: its header and the restored arena.
type Image struct {
	Header section.SnapshotHeader
	Arena  *arena.Arena
}

// Stats reports the compression effect recorded in the header.
func (img *Image) Stats() compress.CompressionStats {
	return compress.CompressionStats{
		Algorithm:      img.Header.Flag.Compression(),
		OriginalSize:   int64(img.Header.RawLength),    //nolint: gosec
		CompressedSize: int64(img.Header.StoredLength), //nolint: gosec
	}
}

// Write writes a snapshot of a to w and returns the number of bytes written.
func Write(w io.Writer, a *arena.Arena, opts ...Option) (int64, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return 0, err
	}

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return 0, err
	}

	raw := a.Bytes()
	stored, err := codec.Compress(raw)
	if err != nil {
		return 0, fmt.Errorf("compressing arena with %s: %w", cfg.compression, err)
	}

	header := section.NewSnapshotHeader()
	header.Flag.SetByteOrder(cfg.order)
	header.Flag.SetCompression(cfg.compression)
	header.RawLength = uint64(len(raw))
	header.StoredLength = uint64(len(stored))
	header.Checksum = xxhash.Sum64(raw)

	entries := a.Entries()
	if len(entries) > section.MaxEntryCount {
		return 0, fmt.Errorf("%w: %d entries", errs.ErrInvalidHeaderSize, len(entries))
	}
	header.EntryCount = uint32(len(entries)) //nolint: gosec

	engine := header.Flag.GetEndianEngine()

	bb := pool.GetScratch()
	defer pool.PutScratch(bb)

	bb.B = append(bb.B[:0], header.Bytes()...)
	for _, e := range entries {
		bb.B = section.NewIndexEntry(e).AppendTo(engine, bb.B)
	}

	var total int64
	for _, chunk := range [][]byte{bb.B, stored} {
		n, err := w.Write(chunk)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// Read reads a snapshot from r and restores its arena.
func Read(r io.Reader, opts ...Option) (*arena.Arena, error) {
	img, err := ReadImage(r, opts...)
	if err != nil {
		return nil, err
	}

	return img.Arena, nil
}

// ReadImage reads a snapshot from r and returns the header along with the arena.
//
// Returns errs.ErrInvalidHeaderSize, errs.ErrInvalidMagicNumber or
// errs.ErrInvalidHeaderFlags for a bad header, errs.ErrInsufficientData for a truncated
// stream, errs.ErrChecksumMismatch when the data does not match the recorded checksum and
// errs.ErrCorruptIndex when the index does not tile the data.
func ReadImage(r io.Reader, opts ...Option) (*Image, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	var hdr [section.HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, truncated("header", err)
	}

	header, err := section.ParseSnapshotHeader(hdr[:])
	if err != nil {
		return nil, err
	}

	if header.RawLength > cfg.maxSize || header.StoredLength > cfg.maxSize {
		return nil, fmt.Errorf("%w: raw %d, stored %d bytes exceed limit %d",
			errs.ErrInvalidHeaderSize, header.RawLength, header.StoredLength, cfg.maxSize)
	}

	index, err := readN(r, uint64(header.IndexSize()), "index")
	if err != nil {
		return nil, err
	}

	engine := header.Flag.GetEndianEngine()
	entries, err := section.ParseIndex(index, int(header.EntryCount), engine)
	if err != nil {
		return nil, err
	}

	stored, err := readN(r, header.StoredLength, "data")
	if err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(header.Flag.Compression())
	if err != nil {
		return nil, err
	}

	raw, err := codec.DecompressSize(stored, int(header.RawLength))
	if err != nil {
		return nil, fmt.Errorf("decompressing arena with %s: %w", header.Flag.Compression(), err)
	}

	if sum := xxhash.Sum64(raw); sum != header.Checksum {
		return nil, fmt.Errorf("%w: computed 0x%016X, header 0x%016X", errs.ErrChecksumMismatch, sum, header.Checksum)
	}

	a, err := arena.Restore(raw, entries)
	if err != nil {
		return nil, err
	}

	return &Image{Header: header, Arena: a}, nil
}

// WriteFile writes a snapshot of a to the named file, creating or truncating it.
func WriteFile(name string, a *arena.Arena, opts ...Option) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}

	if _, err := Write(f, a, opts...); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// ReadFile reads the snapshot stored in the named file.
func ReadFile(name string, opts ...Option) (*Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadImage(f, opts...)
}

// readN reads exactly n bytes without trusting n for the initial allocation.
func readN(r io.Reader, n uint64, what string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(n))) //nolint: gosec
	if err != nil {
		return nil, truncated(what, err)
	}

	if uint64(len(data)) != n {
		return nil, fmt.Errorf("%w: %s has %d of %d bytes", errs.ErrInsufficientData, what, len(data), n)
	}

	return data, nil
}

func truncated(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading snapshot %s: %w", errs.ErrInsufficientData, what, err)
	}

	return fmt.Errorf("reading snapshot %s: %w", what, err)
}
