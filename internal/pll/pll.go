// Package pll implements the Hilbert-transform-based phase-locked
// reference signal (spec §4.8), grounded on
// original_source/radiocore/analog/pll.py and its CPU/CUDA/Numba backend
// variants under original_source/radio/tools/pll/.
package pll

import (
	"errors"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"

	"go-audio-mini-project/internal/dspbackend"
)

// ErrNoStep is returned by Wave when it is called before any Step.
var ErrNoStep = errors.New("pll: wave called before step")

// PLL tracks the analytic signal of its most recent input via the Hilbert
// transform. It is memoryless across calls except for the analytic buffer
// captured by the last Step.
type PLL struct {
	backend  dspbackend.Backend
	analytic []complex128
}

// New constructs a PLL against the given numeric backend.
func New(backend dspbackend.Backend) *PLL {
	return &PLL{backend: backend}
}

// Step computes the analytic signal A = hilbert(x) and stores it, replacing
// whatever was captured by a previous Step. len(analytic) == len(x).
func (p *PLL) Step(x []float32) {
	n := len(x)
	fft := p.backend.FFT(n)

	src := make([]complex128, n)
	for i, v := range x {
		src[i] = complex(float64(v), 0)
	}

	spectrum := fft.Coefficients(nil, src)

	// Standard analytic-signal construction: zero the negative frequency
	// bins, double the positive ones, leave DC (and Nyquist, for even n)
	// alone, then inverse-transform.
	h := make([]complex128, n)
	h[0] = 1
	if n%2 == 0 {
		h[n/2] = 1
		for i := 1; i < n/2; i++ {
			h[i] = 2
		}
	} else {
		for i := 1; i < (n+1)/2; i++ {
			h[i] = 2
		}
	}
	cmplxs.MulTo(spectrum, spectrum, h)

	p.analytic = fft.Sequence(nil, spectrum)
}

// Wave returns the unit-magnitude real reference signal
// Re(A^mult) / |A^mult|. A call to Wave must be preceded by at least one
// Step on this instance.
func (p *PLL) Wave(mult int) ([]float32, error) {
	if p.analytic == nil {
		return nil, ErrNoStep
	}
	out := make([]float32, len(p.analytic))
	for i, a := range p.analytic {
		raised := cmplx.Pow(a, complex(float64(mult), 0))
		mag := cmplx.Abs(raised)
		if mag == 0 {
			out[i] = 0
			continue
		}
		out[i] = float32(real(raised) / mag)
	}
	return out, nil
}
