package dsp

import "fmt"

// Resampler reduces a block's sample rate by polyphase (stateful FIR)
// decimation by an integer factor R, then resamples the intermediate
// result to exactly outputSize samples with a windowed-sinc interpolator
// (spec §4.6's "Resample" operator; named Resampler here so the type
// doesn't collide with the package-level Resample function it's built
// from). The FIR decimation stage keeps continuity across calls; the
// final fixed-size resample stage is stateless per call by construction
// (it must hit an exact sample count every time).
type Resampler struct {
	inputSize, outputSize, rate int
	fir                         *FIRFilter
}

// NewResample constructs a Resampler between inputSize and outputSize.
func NewResample(inputSize, outputSize, numTaps int) (*Resampler, error) {
	if inputSize <= 0 || outputSize <= 0 {
		return nil, fmt.Errorf("dsp: resample requires positive sizes")
	}
	rate := inputSize / outputSize
	if rate < 1 {
		rate = 1
	}
	r := &Resampler{inputSize: inputSize, outputSize: outputSize, rate: rate}
	if rate > 1 {
		taps := DesignFIRLowPass(numTaps, 0.5/float64(rate))
		r.fir = NewFIRFilter(taps)
	}
	return r, nil
}

// Run resamples x (length inputSize) to exactly outputSize samples.
func (r *Resampler) Run(x []float32) ([]float32, error) {
	if len(x) != r.inputSize {
		return nil, fmt.Errorf("dsp: resample expected input length %d, got %d", r.inputSize, len(x))
	}

	intermediate := x
	if r.rate > 1 {
		decimated := r.fir.Process(x, 1.0/float64(r.rate))
		if len(decimated) == 0 {
			decimated = make([]float32, r.inputSize/r.rate)
		}
		intermediate = decimated
	}

	if len(intermediate) == r.outputSize {
		out := make([]float32, r.outputSize)
		copy(out, intermediate)
		return out, nil
	}

	ratio := float64(r.outputSize) / float64(len(intermediate))
	out := Resample(intermediate, ratio)
	if len(out) != r.outputSize {
		fixed := make([]float32, r.outputSize)
		copy(fixed, out)
		out = fixed
	}
	return out, nil
}
