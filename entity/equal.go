package entity

import (
	"bytes"

	"github.com/arloliu/objbase/endian"
	"github.com/arloliu/objbase/internal/pool"
)

// Equal reports whether a and b hold the same record.
//
// Hashes are compared first and a mismatch returns false without touching either
// payload. Otherwise the version tags and the encoded payloads must match exactly.
func Equal(a, b Entity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if a.Hash() != b.Hash() {
		return false
	}

	if !a.Version().Equal(b.Version()) || a.Size() != b.Size() {
		return false
	}

	engine := endian.GetLittleEndianEngine()

	bufA := pool.GetScratch()
	defer pool.PutScratch(bufA)
	bufB := pool.GetScratch()
	defer pool.PutScratch(bufB)

	bufA.B = a.AppendPayload(engine, bufA.B[:0])
	bufB.B = b.AppendPayload(engine, bufB.B[:0])

	return bytes.Equal(bufA.B, bufB.B)
}
