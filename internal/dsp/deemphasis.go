package dsp

import (
	"fmt"
	"math"
)

// deemphasisTaps is the number of taps the first-order de-emphasis pole is
// truncated to, per spec §4.7.
const deemphasisTaps = 51

// Deemphasis implements FM de-emphasis: a first-order IIR low-pass with
// pole x = exp(-1/(inputSize*tau)), converted to a 51-tap FIR impulse
// response for efficiency (spec §4.7). It reuses FIRFilter, the same
// streaming, stateful primitive Decimate and Resampler build on, so
// continuity (zi) is preserved across Run calls exactly the way those
// operators preserve it.
//
// This replaces the teacher's sample-at-a-time Deemphasis.Filter (a direct
// IIR recursion, mathematically equivalent but not block-shaped) with the
// spec's block-oriented, FIR-truncated design so MFM and WBFM can treat it
// like every other per-block operator.
type Deemphasis struct {
	inputSize int
	fir       *FIRFilter
}

// NewDeemphasis builds the de-emphasis filter. inputSize is both the block
// length Run expects and, per the block-is-one-second convention used
// throughout this package, the implied sample rate; tau is the time
// constant (50e-6 for Europe/rest of world, 75e-6 for the Americas/Korea).
func NewDeemphasis(inputSize int, tau float64) (*Deemphasis, error) {
	if inputSize <= 0 || tau <= 0 {
		return nil, fmt.Errorf("dsp: deemphasis requires positive inputSize and tau")
	}
	pole := math.Exp(-1.0 / (float64(inputSize) * tau))
	gain := 1 - pole

	// FIRFilter weights the last tap against the newest sample, so the
	// impulse response gain*pole^k is stored in reverse order.
	taps := make([]float64, deemphasisTaps)
	v := gain
	for i := range taps {
		taps[len(taps)-1-i] = v
		v *= pole
	}

	return &Deemphasis{
		inputSize: inputSize,
		fir:       NewFIRFilter(taps),
	}, nil
}

// Run streams x through the de-emphasis filter, advancing zi so continuity
// is preserved across blocks. It fails on length mismatch against the
// size Deemphasis was constructed with.
func (d *Deemphasis) Run(x []float32) ([]float32, error) {
	if len(x) != d.inputSize {
		return nil, fmt.Errorf("dsp: deemphasis expected input length %d, got %d", d.inputSize, len(x))
	}
	out := d.fir.Process(x, 1.0)
	if out == nil {
		// Ratio 1.0 always yields len(x) output samples once the filter has
		// accumulated its deemphasisTaps-1 history, which happens from the
		// very first call since FIRFilter primes state with zeros.
		out = make([]float32, len(x))
	}
	return out, nil
}
