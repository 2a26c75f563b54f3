// Package dsp implements the bandpass, decimate, resample, and deemphasis
// operators of spec §4.5–§4.7: stateless-per-call filter design paired with
// persistent per-instance filter memory where the operator's semantics
// allow continuity (Decimate's non-zero-phase path, Resample, Deemphasis),
// and genuinely stateless block processing where they don't (zero-phase
// filtering can only be computed over a whole block at a time).
package dsp

import "math"

// DesignFIRLowPass creates a low-pass FIR filter using the windowed-sinc
// method with a Hamming window, normalized to the Nyquist frequency. This
// is the teacher's original filter designer, kept verbatim as the building
// block bandpass design composes.
func DesignFIRLowPass(numTaps int, cutoff float64) []float64 {
	taps := make([]float64, numTaps)
	M := float64(numTaps - 1)
	// The cutoff frequency must be normalized to the Nyquist frequency (0.5 * sample_rate)
	fc := cutoff * 2
	for n := 0; n < numTaps; n++ {
		x := float64(n) - M/2
		if x == 0 {
			taps[n] = fc
		} else {
			taps[n] = fc * math.Sin(math.Pi*fc*x) / (math.Pi * fc * x)
		}
		// Apply Hamming window
		taps[n] *= 0.54 - 0.46*math.Cos(2*math.Pi*float64(n)/M)
	}
	// Normalize
	sum := 0.0
	for _, t := range taps {
		sum += t
	}
	for i := range taps {
		taps[i] /= sum
	}
	return taps
}

// DesignFIRBandpass designs a pass_zero=false bandpass FIR by differencing
// two windowed-sinc lowpass responses at the band edges (spec §4.5): a
// filter passing [0, stop] minus a filter passing [0, start] passes
// exactly [start, stop]. normStart and normStop are normalized to [0, 1]
// where 1 is Nyquist.
func DesignFIRBandpass(numTaps int, normStart, normStop float64) []float64 {
	lowStop := DesignFIRLowPass(numTaps, normStop/2)
	lowStart := DesignFIRLowPass(numTaps, normStart/2)
	taps := make([]float64, numTaps)
	for i := range taps {
		taps[i] = lowStop[i] - lowStart[i]
	}
	return taps
}

// applyFIR computes a single same-length convolution of x against taps,
// zero-padding at the edges. It carries no state between calls: each call
// is independent, which is what makes FiltFilt's forward+reverse pass
// well-defined.
func applyFIR(taps []float64, x []float32) []float32 {
	n := len(x)
	m := len(taps)
	half := m / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		var acc float64
		for j := 0; j < m; j++ {
			idx := i - half + j
			if idx < 0 || idx >= n {
				continue
			}
			acc += float64(x[idx]) * taps[j]
		}
		out[i] = float32(acc)
	}
	return out
}

// FiltFilt applies taps to x once forward and once in reverse, cancelling
// the filter's phase response (spec §4.5's "zero-phase forward-and-reverse
// filtering"). It is memoryless across calls: every call filters x as a
// complete, independent block.
func FiltFilt(taps []float64, x []float32) []float32 {
	y := applyFIR(taps, x)
	reverse(y)
	y = applyFIR(taps, y)
	reverse(y)
	return y
}

func reverse(x []float32) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

// Resample changes the sample rate of a signal using a windowed-sinc
// function, producing exactly len(input)*ratio output samples. Kept from
// the teacher verbatim; used as the Resample operator's final fixed-size
// stage after polyphase decimation (spec §4.6).
func Resample(input []float32, ratio float64) []float32 {
	const windowSize = 16 // Number of taps on each side of the sample.

	outputLen := int(float64(len(input)) * ratio)
	if outputLen == 0 {
		return nil
	}
	output := make([]float32, outputLen)
	invRatio := 1.0 / ratio

	for i := range output {
		inPos := float64(i) * invRatio
		centerIndex := int(math.Round(inPos))

		var acc, sumTaps float32
		for j := -windowSize; j < windowSize; j++ {
			inputIndex := centerIndex + j
			if inputIndex < 0 || inputIndex >= len(input) {
				continue
			}

			sincPos := inPos - float64(inputIndex)
			piSincPos := math.Pi * sincPos
			sinc := float32(1.0)
			if piSincPos != 0 {
				sinc = float32(math.Sin(piSincPos) / piSincPos)
			}

			window := 0.54 - 0.46*math.Cos(2*math.Pi*float64(j+windowSize)/float64(2*windowSize))
			tap := sinc * float32(window)

			acc += input[inputIndex] * tap
			sumTaps += tap
		}
		if sumTaps != 0 {
			output[i] = acc / sumTaps
		}
	}
	return output
}
