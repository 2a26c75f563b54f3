// Package ringbuffer implements a blocking, backpressure circular buffer
// for exactly one writer and one reader, closable to signal end-of-stream.
//
// It complements internal/samplering's lossy SampleRing rather than
// duplicating it: SampleRing is for an unbounded live producer where
// freshness beats completeness (a running SDR device has no "end"), while
// Ring here is for a finite source — a replay file — where every sample
// must survive and the reader needs a clean signal that the source is
// exhausted. cmd/sdrfm uses this for file ingestion and SampleRing for
// everything downstream of it.
package ringbuffer

import "sync"

// Ring is a concurrent-safe circular buffer of T with blocking, backpressure
// Write/Read and a Close that lets a drained reader detect end-of-stream.
type Ring[T any] struct {
	buf        []T
	size       int
	readIndex  int
	writeIndex int
	closed     bool
	mu         sync.Mutex
	cond       *sync.Cond
}

// New creates a new Ring of the given size.
func New[T any](size int) *Ring[T] {
	rb := &Ring[T]{
		buf:  make([]T, size),
		size: size,
	}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// AvailableWrite returns the number of samples that can be written to the buffer.
func (rb *Ring[T]) AvailableWrite() int {
	if rb.writeIndex >= rb.readIndex {
		return rb.size - (rb.writeIndex - rb.readIndex) - 1
	}
	return rb.readIndex - rb.writeIndex - 1
}

// AvailableRead returns the number of samples available for reading.
func (rb *Ring[T]) AvailableRead() int {
	if rb.writeIndex >= rb.readIndex {
		return rb.writeIndex - rb.readIndex
	}
	return rb.size - rb.readIndex + rb.writeIndex
}

// Close marks the buffer as closed, indicating no more writes will occur.
// It broadcasts to all waiting readers to wake them up.
func (rb *Ring[T]) Close() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.closed = true
	rb.cond.Broadcast() // Wake up any readers waiting for data.
}

// Write adds data to the buffer, blocking until space is available.
func (rb *Ring[T]) Write(data []T) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.closed {
		// Or return an error, but for this use case, panicking is acceptable
		// as it indicates a programming error.
		panic("write to closed ring buffer")
	}

	n := len(data)
	for i := 0; i < n; {
		// Wait for space to become available.
		for rb.AvailableWrite() == 0 {
			rb.cond.Wait()
		}

		// Copy in one or two chunks.
		if rb.writeIndex >= rb.readIndex {
			// Write up to the end of the buffer, stopping one slot short when
			// the reader is at index 0 so a full buffer never wraps to look empty.
			end := rb.size
			if rb.readIndex == 0 {
				end = rb.size - 1
			}
			written := copy(rb.buf[rb.writeIndex:end], data[i:])
			rb.writeIndex = (rb.writeIndex + written) % rb.size
			i += written
		} else {
			// Write up to the read index.
			written := copy(rb.buf[rb.writeIndex:rb.readIndex-1], data[i:])
			rb.writeIndex += written
			i += written
		}
		rb.cond.Broadcast() // Signal reader that data is available.
	}
}

// Read retrieves n samples from the buffer, blocking until they are available.
// If the buffer is closed and no more data is available, it returns nil.
func (rb *Ring[T]) Read(n int) []T {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	// Wait for data, but stop waiting if the buffer is closed.
	// The reader should wait as long as the buffer doesn't have enough data AND it's not closed.
	// Once closed, the reader should proceed to read whatever is left.
	for !rb.closed && rb.AvailableRead() < n {
		rb.cond.Wait()
	}

	// If the buffer is closed and empty, it's the end of the stream.
	if rb.closed && rb.AvailableRead() == 0 {
		return nil
	}

	// Read what's available, up to a maximum of n samples.
	readSize := n
	if rb.AvailableRead() < readSize {
		readSize = rb.AvailableRead()
	}

	if readSize == 0 {
		return nil
	}

	data := make([]T, readSize)
	if rb.readIndex+readSize <= rb.size {
		copy(data, rb.buf[rb.readIndex:rb.readIndex+readSize])
	} else {
		part1 := rb.size - rb.readIndex
		copy(data, rb.buf[rb.readIndex:])
		copy(data[part1:], rb.buf[0:readSize-part1])
	}
	rb.readIndex = (rb.readIndex + readSize) % rb.size
	rb.cond.Broadcast()
	return data
}
