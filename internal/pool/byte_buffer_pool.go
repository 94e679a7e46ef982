package pool

import (
	"io"
	"sync"
)

// Default sizes for pooled scratch buffers.
const (
	ScratchBufferDefaultSize  = 256       // enough for most single entity records
	ScratchBufferMaxThreshold = 64 * 1024 // larger buffers are not returned to the pool
)

// ByteBuffer is a growable byte slice. It is the backing storage of arena.Arena and the
// scratch space used by codecs.
type ByteBuffer struct {
	// B is the underlying byte slice; len(B) is the written length.
	B []byte
}

// NewByteBuffer creates an empty ByteBuffer with the given capacity.
func NewByteBuffer(capacity int) *ByteBuffer {
	if capacity < 0 {
		capacity = 0
	}

	return &ByteBuffer{
		B: make([]byte, 0, capacity),
	}
}

// Bytes returns the written region.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps its storage.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the number of written bytes.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the storage.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Available returns how many bytes can be written before the storage must grow.
func (bb *ByteBuffer) Available() int {
	return cap(bb.B) - len(bb.B)
}

// Grow ensures that at least n more bytes fit without reallocating.
//
// Capacity doubles on each growth so a sequence of writes costs amortized O(1) per byte.
// If doubling is still not enough, the buffer grows to exactly what is required.
func (bb *ByteBuffer) Grow(n int) {
	if bb.Available() >= n {
		return
	}

	required := len(bb.B) + n
	newCap := cap(bb.B) * 2
	if newCap < required {
		newCap = required
	}

	newBuf := make([]byte, len(bb.B), newCap)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends data, growing the storage as needed. It never fails.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.Grow(len(data))
	bb.B = append(bb.B, data...)

	return len(data), nil
}

// WriteTo writes the written region to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a sync.Pool of ByteBuffers. Buffers larger than maxThreshold are
// dropped instead of being retained.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool handing out buffers of defaultSize capacity.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves an empty ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var scratchPool = NewByteBufferPool(ScratchBufferDefaultSize, ScratchBufferMaxThreshold)

// GetScratch retrieves a ByteBuffer from the shared scratch pool.
func GetScratch() *ByteBuffer {
	return scratchPool.Get()
}

// PutScratch returns a ByteBuffer to the shared scratch pool.
func PutScratch(bb *ByteBuffer) {
	scratchPool.Put(bb)
}
