// Package demod implements the generic FM discriminator and the mono and
// stereo broadcast demodulators built on it (spec §4.9–§4.11). It
// generalizes the teacher's internal/dsp.Demodulator (a bare
// conjugate-multiply polar discriminator) into the spec's explicit
// DC-removal / unwrap / diff / decimate pipeline, which the conjugate-
// multiply trick is the standard fast implementation of — but the spec's
// algorithm is followed literally here so the edge-sample and continuity
// behavior it requires (§3, §8) match exactly.
package demod

import (
	"fmt"
	"math"
	"math/cmplx"

	"go-audio-mini-project/internal/dsp"
)

// FM is the generic FM discriminator (spec §4.9). Channels() is always 1.
type FM struct {
	inputSize, outputSize int
	decimate              *dsp.Decimate

	dc           complexDCWindow
	lastPhase    float64
	hasLastPhase bool
}

// New constructs an FM demodulator decimating from inputSize to
// outputSize.
func New(inputSize, outputSize, decimateTaps int) (*FM, error) {
	if inputSize <= 0 || outputSize <= 0 {
		return nil, fmt.Errorf("demod: fm requires positive sizes")
	}
	dec, err := dsp.NewDecimate(inputSize, outputSize, false, decimateTaps)
	if err != nil {
		return nil, err
	}
	return &FM{inputSize: inputSize, outputSize: outputSize, decimate: dec}, nil
}

// Channels reports the number of audio channels FM produces.
func (f *FM) Channels() int { return 1 }

// Run demodulates one block of complex baseband, length inputSize, into
// outputSize audio samples.
func (f *FM) Run(x []complex64) ([]float32, error) {
	if len(x) != f.inputSize {
		return nil, fmt.Errorf("demod: fm expected input length %d, got %d", f.inputSize, len(x))
	}

	// 1. DC removal, smoothed over the bounded 32-block history (spec §3).
	var sum complex128
	for _, s := range x {
		sum += complex128(s)
	}
	blockMean := sum / complex(float64(len(x)), 0)
	f.dc.push(blockMean)
	dcEstimate := f.dc.mean()

	// 2. Instantaneous phase.
	phase := make([]float64, len(x))
	for i, s := range x {
		phase[i] = cmplx.Phase(complex128(s) - dcEstimate)
	}

	// 3. Unwrap to a monotone trajectory, bridged onto the previous
	// block's ending phase when one is available.
	unwrapped := unwrap(phase)
	bridge(unwrapped, f.lastPhase, f.hasLastPhase)
	f.lastPhase = unwrapped[len(unwrapped)-1]
	f.hasLastPhase = true

	// 4. First difference, with one trailing zero so the length stays
	// input_size (the one true derivative this can't compute — between
	// this block's last sample and the next block's first — is the "up to
	// the discrete-difference edge sample" exception in spec §8).
	dphi := make([]float32, len(x))
	for i := 0; i < len(x)-1; i++ {
		// 5. Normalize radians/sample into approximately [-1, 1].
		dphi[i] = float32((unwrapped[i+1] - unwrapped[i]) / math.Pi)
	}

	// 6. Decimate to outputSize.
	return f.decimate.Run(dphi)
}
