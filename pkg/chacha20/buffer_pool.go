// Buffer pooling to reduce allocations in keystream and XOR loops, which
// matters for the throughput benchmarks and for checkers that walk large
// vector tables. The pool uses size classes aligned to the 64-byte block.

package chacha20

import (
	"sync"
)

// BufferPool provides pooled byte slices for cipher operations.
type BufferPool struct {
	// Single-block buffers (64 bytes)
	block sync.Pool

	// Small message buffers (up to 1KB)
	small sync.Pool

	// Medium message buffers (up to 16KB)
	medium sync.Pool

	// Large message buffers (up to 64KB)
	large sync.Pool
}

// Buffer size class thresholds.
const (
	blockBufferSize  = BlockSize
	smallBufferSize  = 1 << 10
	mediumBufferSize = 16 << 10
	largeBufferSize  = 64 << 10
)

// globalPool is the default buffer pool instance.
var globalPool = NewBufferPool()

// NewBufferPool creates a new buffer pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		block: sync.Pool{
			New: func() any {
				buf := make([]byte, blockBufferSize)
				return &buf
			},
		},
		small: sync.Pool{
			New: func() any {
				buf := make([]byte, smallBufferSize)
				return &buf
			},
		},
		medium: sync.Pool{
			New: func() any {
				buf := make([]byte, mediumBufferSize)
				return &buf
			},
		},
		large: sync.Pool{
			New: func() any {
				buf := make([]byte, largeBufferSize)
				return &buf
			},
		},
	}
}

// GetBlock returns a zeroed single-block buffer from the pool.
func (p *BufferPool) GetBlock() []byte {
	bufPtr := p.block.Get().(*[]byte)
	buf := *bufPtr
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// PutBlock returns a single-block buffer to the pool.
func (p *BufferPool) PutBlock(buf []byte) {
	if buf == nil || cap(buf) != blockBufferSize {
		return
	}
	// Zero before returning to pool so keystream never lingers
	buf = buf[:cap(buf)]
	for i := range buf {
		buf[i] = 0
	}
	p.block.Put(&buf)
}

// Get returns a buffer of at least the requested size from the pool.
// Requests beyond the largest size class are allocated directly.
func (p *BufferPool) Get(size int) []byte {
	if size <= 0 {
		return nil
	}

	var bufPtr *[]byte

	switch {
	case size <= smallBufferSize:
		bufPtr = p.small.Get().(*[]byte)
	case size <= mediumBufferSize:
		bufPtr = p.medium.Get().(*[]byte)
	case size <= largeBufferSize:
		bufPtr = p.large.Get().(*[]byte)
	default:
		return make([]byte, size)
	}

	return (*bufPtr)[:size]
}

// Put returns a buffer to the pool. Buffers whose capacity does not match
// a size class are dropped.
func (p *BufferPool) Put(buf []byte) {
	if buf == nil {
		return
	}

	bufCap := cap(buf)
	if bufCap == 0 {
		return
	}

	// Extend to full capacity and zero before pooling
	buf = buf[:bufCap]
	for i := range buf {
		buf[i] = 0
	}

	bufPtr := &buf

	switch bufCap {
	case smallBufferSize:
		p.small.Put(bufPtr)
	case mediumBufferSize:
		p.medium.Put(bufPtr)
	case largeBufferSize:
		p.large.Put(bufPtr)
		// Non-standard sizes are not returned to the pool
	}
}

// GetBuffer returns a buffer from the global pool.
func GetBuffer(size int) []byte {
	return globalPool.Get(size)
}

// PutBuffer returns a buffer to the global pool.
func PutBuffer(buf []byte) {
	globalPool.Put(buf)
}

// GetBlockBuffer returns a single-block buffer from the global pool.
func GetBlockBuffer() []byte {
	return globalPool.GetBlock()
}

// PutBlockBuffer returns a single-block buffer to the global pool.
func PutBlockBuffer(buf []byte) {
	globalPool.PutBlock(buf)
}

// EncryptPooled is Encrypt with the output taken from the global buffer
// pool. The caller must hand the result back with PutBuffer when done.
// Meant for high-throughput loops; everyone else should use Encrypt.
func (c *Cipher) EncryptPooled(data []byte, counter uint64) []byte {
	out := GetBuffer(len(data))
	c.XORKeyStream(out, data, counter)
	return out
}
