// Package compress provides the compression codecs applied to arena snapshots at rest.
//
// Entity records themselves are never compressed: every record keeps its fixed-size
// layout inside the arena. Compression only applies to the whole arena image when the
// snapshot package writes it to a stream, and the snapshot header records which codec
// was used.
//
// # Supported Algorithms
//
//	format.CompressionNone  NoOpCompressor  data stored as-is
//	format.CompressionZstd  ZstdCompressor  best ratio, moderate speed
//	format.CompressionS2    S2Compressor    good ratio, fast
//	format.CompressionLZ4   LZ4Compressor   fastest decompression
//
// Arenas full of fixed-size records with small integer fields compress well; zstd is
// the usual choice for snapshots kept on disk, S2 or LZ4 when snapshots are restored on
// a hot path.
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	stored, err := codec.Compress(raw)
//	...
//	raw, err = codec.DecompressSize(stored, rawLength)
//
// DecompressSize is preferred whenever the original length is known: it allocates the
// output once and rejects data that decodes to a different length.
//
// # Thread Safety
//
// All built-in codecs are stateless values backed by sync.Pool, and are safe for
// concurrent use.
package compress
