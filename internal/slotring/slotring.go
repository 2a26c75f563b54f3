// Package slotring implements the Carrousel: a fixed-count rotation of
// pre-allocated buffer.Buffer slots with enqueue/dequeue handles and
// overflow accounting. It is built for exactly one producer and one
// consumer; it is not safe for concurrent enqueues or concurrent dequeues.
package slotring

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"go-audio-mini-project/internal/buffer"
)

// ErrEmpty is returned by Dequeue when there is nothing to read.
var ErrEmpty = errors.New("slotring: dequeue on empty ring")

// Slot is a scoped handle to a readable or writable slot. Release must be
// called exactly once; it unconditionally advances the ring's cursor and
// updates occupancy regardless of how the caller's scope was exited.
type Slot[T any] struct {
	View    []T
	release func()
}

// Release hands the slot back to the ring.
func (s *Slot[T]) Release() {
	s.release()
}

// SlotRing is a FIFO rotation of capacity pre-allocated Buffers of size
// slotSize. Overflow on Enqueue drops the oldest unread slot and is
// counted rather than blocking the producer.
type SlotRing[T any] struct {
	mu        sync.Mutex
	slots     []*buffer.Buffer[T]
	head      int // next slot to dequeue
	tail      int // next slot to enqueue into
	occupancy int
	overflows int
	logger    *log.Logger
}

// SetLogger attaches a logger the ring reports dropped slots through.
// Unset by default, in which case drops are silent (still counted).
func (r *SlotRing[T]) SetLogger(l *log.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

// New allocates capacity slots of slotSize elements each.
func New[T any](capacity, slotSize int) (*SlotRing[T], error) {
	if capacity <= 0 {
		return nil, errors.New("slotring: capacity must be > 0")
	}
	slots := make([]*buffer.Buffer[T], capacity)
	for i := range slots {
		b, err := buffer.New[T](slotSize, false)
		if err != nil {
			return nil, err
		}
		slots[i] = b
	}
	return &SlotRing[T]{slots: slots}, nil
}

// Capacity returns the fixed slot count.
func (r *SlotRing[T]) Capacity() int { return len(r.slots) }

// Occupancy returns the number of slots written but not yet read.
func (r *SlotRing[T]) Occupancy() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.occupancy
}

// Overflows returns the running count of dropped oldest-slots.
func (r *SlotRing[T]) Overflows() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overflows
}

// IsHealthy reports occupancy >= 1: there is at least one slot ready to
// read.
func (r *SlotRing[T]) IsHealthy() bool {
	return r.Occupancy() >= 1
}

// Reset empties the ring and clears the overflow counter.
func (r *SlotRing[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = 0
	r.tail = 0
	r.occupancy = 0
	r.overflows = 0
}

// Enqueue returns a writable handle to the next slot. If the ring is full,
// the oldest unread slot is dropped (head advances, occupancy decrements,
// overflows increments) before the write proceeds, so Enqueue never blocks
// the producer.
func (r *SlotRing[T]) Enqueue() *Slot[T] {
	r.mu.Lock()

	if r.occupancy == len(r.slots) {
		r.head = (r.head + 1) % len(r.slots)
		r.occupancy--
		r.overflows++
		if r.logger != nil {
			r.logger.Warn("slot ring full, dropping oldest slot", "capacity", len(r.slots), "overflows", r.overflows)
		}
	}

	slot := r.slots[r.tail]
	tail := r.tail
	view, _ := slot.Acquire()

	s := &Slot[T]{
		View: view,
		release: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.tail = (tail + 1) % len(r.slots)
			r.occupancy++
		},
	}
	r.mu.Unlock()
	return s
}

// Dequeue returns a readable handle to the oldest unread slot. It fails
// when the ring is empty.
func (r *SlotRing[T]) Dequeue() (*Slot[T], error) {
	r.mu.Lock()

	if r.occupancy == 0 {
		r.mu.Unlock()
		return nil, ErrEmpty
	}

	slot := r.slots[r.head]
	head := r.head
	view, _ := slot.Acquire()

	s := &Slot[T]{
		View: view,
		release: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.head = (head + 1) % len(r.slots)
			r.occupancy--
		},
	}
	r.mu.Unlock()
	return s, nil
}
