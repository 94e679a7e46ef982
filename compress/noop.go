package compress

// NoOpCompressor stores snapshot data uncompressed.
//
// This compressor is useful for:
//   - Small arenas where the snapshot header dominates anyway
//   - Debugging snapshots with a hex viewer
//   - Baseline performance measurements
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor that bypasses data.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns the input data directly without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// DecompressSize returns data after checking its length.
func (c NoOpCompressor) DecompressSize(data []byte, size int) ([]byte, error) {
	if err := checkSize("none", len(data), size); err != nil {
		return nil, err
	}

	return data, nil
}
