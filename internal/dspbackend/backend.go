// Package dspbackend defines the numeric capability seam the Design Notes
// (spec.md §9, "Runtime module injection") call for: one Array/FFT/Window
// capability set, injected into each operator at construction rather than
// dynamically imported. This repository ships exactly one implementation,
// backed by gonum.org/v1/gonum/dsp/fourier and dsp/window (GPU acceleration
// is out of core scope per spec.md §1) but every consumer depends only on
// the Backend interface, so a second backend can be added without touching
// Tuner, PLL, or Bandpass.
package dspbackend

import (
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// FFT is a reusable forward/inverse complex discrete Fourier transform
// plan for a fixed length.
type FFT interface {
	// Len returns the transform length this plan was built for.
	Len() int
	// Coefficients computes the forward transform of src (time domain ->
	// frequency domain), writing into dst when it has enough capacity and
	// returning the result slice.
	Coefficients(dst, src []complex128) []complex128
	// Sequence computes the inverse transform (frequency domain -> time
	// domain), writing into dst when it has enough capacity and returning
	// the result slice.
	Sequence(dst, src []complex128) []complex128
}

// Backend is the capability set operators are constructed against.
type Backend interface {
	// FFT returns a transform plan for length n, allocating and caching it
	// on first use.
	FFT(n int) FFT
	// HannWindow returns a length-n Hann window, allocating and caching it
	// on first use. The returned slice must not be mutated by callers.
	HannWindow(n int) []float64
}

type gonumFFT struct {
	plan *fourier.CmplxFFT
}

func (g *gonumFFT) Len() int { return g.plan.Len() }

func (g *gonumFFT) Coefficients(dst, src []complex128) []complex128 {
	return g.plan.Coefficients(dst, src)
}

func (g *gonumFFT) Sequence(dst, src []complex128) []complex128 {
	return g.plan.Sequence(dst, src)
}

// Gonum is the CPU Backend implementation. Construct it with NewGonum; the
// zero value has no caches and is not usable. Plans and windows are
// allocated lazily and cached for the lifetime of the Backend, matching the "FFT buffer and window allocated on first use and
// reused" memory discipline in spec.md §5.
type Gonum struct {
	mu      sync.Mutex
	ffts    map[int]*gonumFFT
	windows map[int][]float64
}

// NewGonum constructs a ready-to-use Gonum backend.
func NewGonum() *Gonum {
	return &Gonum{
		ffts:    make(map[int]*gonumFFT),
		windows: make(map[int][]float64),
	}
}

// FFT implements Backend.
func (g *Gonum) FFT(n int) FFT {
	g.mu.Lock()
	defer g.mu.Unlock()
	if f, ok := g.ffts[n]; ok {
		return f
	}
	f := &gonumFFT{plan: fourier.NewCmplxFFT(n)}
	g.ffts[n] = f
	return f
}

// HannWindow implements Backend.
func (g *Gonum) HannWindow(n int) []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if w, ok := g.windows[n]; ok {
		return w
	}
	seq := make([]float64, n)
	for i := range seq {
		seq[i] = 1
	}
	w := window.Hann(seq)
	g.windows[n] = w
	return w
}

var defaultBackend = NewGonum()

// Default returns the process-wide default CPU backend. Operators accept
// an explicit Backend at construction; Default exists only so call sites
// that don't care about backend selection (tests, simple tools) don't need
// to construct their own.
func Default() Backend { return defaultBackend }
