package tuner

import (
	"math"

	"go-audio-mini-project/internal/dspbackend"
)

// EstimateOffset returns the dominant frequency (in Hz) present in x,
// sampled at sampleRate. It supplements the bandwidth/channel machinery
// above with a frequency estimator, grounded on
// original_source/radio/tools/festimator (an FFT peak search refined by a
// parabolic fit through the log magnitudes of the peak bin and its two
// neighbors),
// useful for locating a channel's true offset before calling AddChannel.
func EstimateOffset(x []float32, sampleRate float64, backend dspbackend.Backend) float64 {
	if backend == nil {
		backend = dspbackend.Default()
	}
	n := len(x)
	if n < 3 {
		return 0
	}

	src := make([]complex128, n)
	for i, v := range x {
		src[i] = complex(float64(v), 0)
	}
	spectrum := backend.FFT(n).Coefficients(nil, src)

	half := n/2 + 1
	peak := 1
	peakMag := math.Log(cabs(spectrum[1]) + 1e-300)
	for i := 2; i < half; i++ {
		mag := math.Log(cabs(spectrum[i]) + 1e-300)
		if mag > peakMag {
			peak = i
			peakMag = mag
		}
	}
	if peak <= 0 || peak >= n-1 {
		return sampleRate * float64(peak) / float64(n)
	}

	trueIndex := parabolicPeak(
		math.Log(cabs(spectrum[peak-1])+1e-300),
		math.Log(cabs(spectrum[peak])+1e-300),
		math.Log(cabs(spectrum[peak+1])+1e-300),
		peak,
	)
	return sampleRate * trueIndex / float64(n)
}

// parabolicPeak fits a parabola through (x-1,left), (x,center), (x+1,right)
// and returns the interpolated peak location.
func parabolicPeak(left, center, right float64, x int) float64 {
	denom := left - 2*center + right
	if denom == 0 {
		return float64(x)
	}
	return float64(x) + 0.5*(left-right)/denom
}

func cabs(v complex128) float64 {
	return math.Hypot(real(v), imag(v))
}
