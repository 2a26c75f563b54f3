package dsp

import "fmt"

// Bandpass designs a pass_zero=false windowed-sinc FIR once at construction
// and applies it with zero-phase forward-and-reverse filtering on every
// call (spec §4.5). It carries no continuity state between calls: each
// Run is an independent pass over a fixed-size block.
type Bandpass struct {
	inputSize int
	taps      []float64
}

// NewBandpass designs a bandpass FIR over [startHz, stopHz], normalized to
// [0, 0.5*inputSize] the way spec §4.5 specifies (input_size plays the
// role of the block's implicit sample count per second).
func NewBandpass(inputSize int, startHz, stopHz float64, numTaps int) (*Bandpass, error) {
	if inputSize <= 0 || numTaps <= 0 {
		return nil, fmt.Errorf("dsp: bandpass requires positive inputSize and numTaps")
	}
	nyquist := 0.5 * float64(inputSize)
	normStart := startHz / nyquist
	normStop := stopHz / nyquist
	return &Bandpass{
		inputSize: inputSize,
		taps:      DesignFIRBandpass(numTaps, normStart, normStop),
	}, nil
}

// Run zero-phase filters x, which must have length inputSize.
func (b *Bandpass) Run(x []float32) ([]float32, error) {
	if len(x) != b.inputSize {
		return nil, fmt.Errorf("dsp: bandpass expected input length %d, got %d", b.inputSize, len(x))
	}
	return FiltFilt(b.taps, x), nil
}
