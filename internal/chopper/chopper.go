// Package chopper splits a fixed-length array into equal-size contiguous
// chunks by reference, with no copying.
package chopper

import "fmt"

// Chopper is an immutable (total, chunk) pair with total % chunk == 0.
type Chopper struct {
	total int
	chunk int
}

// New constructs a Chopper. It fails when total % chunk != 0.
func New(total, chunk int) (*Chopper, error) {
	if chunk <= 0 || total <= 0 {
		return nil, fmt.Errorf("chopper: total and chunk must be > 0, got total=%d chunk=%d", total, chunk)
	}
	if total%chunk != 0 {
		return nil, fmt.Errorf("chopper: total %d is not a multiple of chunk %d", total, chunk)
	}
	return &Chopper{total: total, chunk: chunk}, nil
}

// Count returns total/chunk, the number of chunks produced by Chop.
func (c *Chopper) Count() int { return c.total / c.chunk }

// Chunk returns the chunk length.
func (c *Chopper) Chunk() int { return c.chunk }

// Total returns the expected input length.
func (c *Chopper) Total() int { return c.total }

// Chop splits x, which must have length total, into total/chunk
// non-overlapping views into x. Writes through a returned view mutate x.
func Chop[T any](c *Chopper, x []T) ([][]T, error) {
	if len(x) != c.total {
		return nil, fmt.Errorf("chopper: expected input length %d, got %d", c.total, len(x))
	}
	out := make([][]T, c.Count())
	for i := range out {
		out[i] = x[i*c.chunk : (i+1)*c.chunk : (i+1)*c.chunk]
	}
	return out, nil
}
