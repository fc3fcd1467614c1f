package native

import (
	"sync"
	"sync/atomic"
)

var bufferPool = sync.Pool{
	New: func() any { return new(Buffer) },
}

// Buffer carries one encoded engine reply across the boundary.
type Buffer struct {
	data     []byte
	released atomic.Bool
}

// NewBuffer takes an empty buffer from the pool.
func NewBuffer() *Buffer {
	b := bufferPool.Get().(*Buffer)
	b.data = b.data[:0]
	b.released.Store(false)
	return b
}

// Write appends p to the buffer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// WriteString appends s to the buffer.
func (b *Buffer) WriteString(s string) (int, error) {
	b.data = append(b.data, s...)
	return len(s), nil
}

// Bytes returns the buffer contents. The slice is only valid until Release.
func (b *Buffer) Bytes() []byte { return b.data }

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int { return len(b.data) }

// Released reports whether Release has been called.
func (b *Buffer) Released() bool { return b.released.Load() }

// Release returns the buffer to the pool. It panics if called twice.
func (b *Buffer) Release() {
	if !b.released.CompareAndSwap(false, true) {
		panic("native: buffer released twice")
	}
	const maxPooled = 4 << 20
	if cap(b.data) > maxPooled {
		b.data = nil
	}
	bufferPool.Put(b)
}
