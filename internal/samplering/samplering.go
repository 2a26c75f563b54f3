// Package samplering implements the SampleRing: a fixed-capacity circular
// sample buffer for exactly one producer and one consumer, with a lossy
// overflow policy that favors freshness over continuity, and a blocking
// consumer read with a bounded timeout.
//
// This generalizes the teacher's int16-only, overflow-blocking
// internal/ringbuffer.RingBuffer to any sample element type (complex64 for
// I/Q, float32 for audio) and to the spec's reset-and-write overflow rule
// instead of backpressure.
package samplering

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ErrTooLarge is returned when an operation's buffer is longer than the
// ring's capacity; such a request can never be satisfied.
var ErrTooLarge = errors.New("samplering: buffer longer than ring capacity")

// SampleRing is a circular buffer of T with a write cursor (head), a read
// cursor (tail), and an occupancy count in [0, capacity].
type SampleRing[T any] struct {
	mu            sync.Mutex
	cond          *sync.Cond
	buf           []T
	head          int // next write position
	tail          int // next read position
	occupancy     int
	allowOverflow bool
	logger        *log.Logger
}

// SetLogger attaches a logger the ring reports overflow resets through.
// Unset by default, in which case overflow is silent.
func (r *SampleRing[T]) SetLogger(l *log.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

// New allocates a SampleRing with the given capacity. When allowOverflow is
// true (the default posture described in spec §4.4), Append never fails due
// to a writer outpacing the reader: it instead resets and writes fresh
// data. When false, an over-large write is a hard precondition failure.
func New[T any](capacity int, allowOverflow bool) (*SampleRing[T], error) {
	if capacity <= 0 {
		return nil, errors.New("samplering: capacity must be > 0")
	}
	r := &SampleRing[T]{
		buf:           make([]T, capacity),
		allowOverflow: allowOverflow,
	}
	r.cond = sync.NewCond(&r.mu)
	return r, nil
}

// Capacity returns the ring's fixed backing size.
func (r *SampleRing[T]) Capacity() int { return len(r.buf) }

// Occupancy returns the number of samples currently buffered.
func (r *SampleRing[T]) Occupancy() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.occupancy
}

// Vacancy returns the number of samples that can be appended before the
// ring is full.
func (r *SampleRing[T]) Vacancy() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf) - r.occupancy
}

// Data exposes the raw backing array. Intended for tests and diagnostics;
// callers must not mutate it outside the ring's own methods.
func (r *SampleRing[T]) Data() []T { return r.buf }

// Reset empties the ring, discarding any buffered samples.
func (r *SampleRing[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head, r.tail, r.occupancy = 0, 0, 0
	r.cond.Broadcast()
}

// Append writes buf into the ring (producer side). It fails if buf is
// longer than the ring's capacity. If buf is longer than the current
// vacancy: when allowOverflow is true, the entire ring is reset
// (head=tail=0, occupancy=0) before the write, preferring freshness over
// continuity; when false, the append fails and the ring is left unchanged.
func (r *SampleRing[T]) Append(buf []T) error {
	if len(buf) > len(r.buf) {
		return ErrTooLarge
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(buf) > len(r.buf)-r.occupancy {
		if !r.allowOverflow {
			return errors.New("samplering: overflow with allowOverflow=false")
		}
		if r.logger != nil {
			r.logger.Warn("sample ring overflow, resetting", "capacity", len(r.buf), "incoming", len(buf))
		}
		r.head, r.tail, r.occupancy = 0, 0, 0
	}

	n := copy(r.buf[r.head:], buf)
	if n < len(buf) {
		copy(r.buf[0:], buf[n:])
	}
	r.head = (r.head + len(buf)) % len(r.buf)
	r.occupancy += len(buf)

	r.cond.Broadcast()
	return nil
}

// Popleft reads len(dst) samples into dst (consumer side), blocking until
// enough samples have accumulated or timeout elapses. It fails if dst is
// longer than the ring's capacity. On timeout it returns (false, nil) and
// leaves the ring unchanged ("no data" signal); on success it returns
// (true, nil) with dst filled, the read cursor advanced, and occupancy
// decremented by len(dst).
func (r *SampleRing[T]) Popleft(dst []T, timeout time.Duration) (bool, error) {
	if len(dst) > len(r.buf) {
		return false, ErrTooLarge
	}
	if len(dst) == 0 {
		return true, nil
	}

	deadline := time.Now().Add(timeout)

	r.mu.Lock()
	defer r.mu.Unlock()

	for r.occupancy < len(dst) {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}
		timer := time.AfterFunc(remaining, func() {
			r.mu.Lock()
			r.cond.Broadcast()
			r.mu.Unlock()
		})
		r.cond.Wait()
		timer.Stop()
	}

	n := copy(dst, r.buf[r.tail:])
	if n < len(dst) {
		copy(dst[n:], r.buf[0:])
	}
	r.tail = (r.tail + len(dst)) % len(r.buf)
	r.occupancy -= len(dst)

	r.cond.Broadcast()
	return true, nil
}
