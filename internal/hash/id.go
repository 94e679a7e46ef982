// Package hash computes the 64-bit digests used as entity equality keys and as snapshot
// checksums.
package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// String computes the xxHash64 of s.
func String(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Bytes computes the xxHash64 of b.
func Bytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// Parts hashes a composite key. Every part is prefixed with its length so that
// ("ab", "c") and ("a", "bc") produce different digests.
func Parts(parts ...[]byte) uint64 {
	d := xxhash.New()

	var lenBuf [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(p)))
		_, _ = d.Write(lenBuf[:])
		_, _ = d.Write(p)
	}

	return d.Sum64()
}
