package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

const float32EqualityThreshold = 1e-6

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) <= float32EqualityThreshold
}

// TestDesignFIRLowPass checks the properties of the generated FIR filter.
func TestDesignFIRLowPass(t *testing.T) {
	const numTaps = 51
	const cutoff = 0.1

	taps := DesignFIRLowPass(numTaps, cutoff)

	if len(taps) != numTaps {
		t.Fatalf("Expected %d taps, but got %d", numTaps, len(taps))
	}

	// 1. Check for symmetry (property of linear-phase FIR filters)
	for i := 0; i < numTaps/2; i++ {
		if !almostEqual(float32(taps[i]), float32(taps[numTaps-1-i])) {
			t.Errorf("Filter is not symmetric. Tap %d (%f) != Tap %d (%f)", i, taps[i], numTaps-1-i, taps[numTaps-1-i])
		}
	}

	// 2. Check that the sum of taps is 1.0 (for DC gain of 1)
	var sum float64
	for _, tap := range taps {
		sum += tap
	}
	if !almostEqual(float32(sum), 1.0) {
		t.Errorf("Expected sum of taps to be 1.0, but got %f", sum)
	}
}

// TestFIRFilter_DecimationAndState checks the decimating filter.
func TestFIRFilter_DecimationAndState(t *testing.T) {
	taps := []float64{0.1, 0.2, 0.4, 0.2, 0.1}
	ratio := 0.5 // Decimate by 2

	input := make([]float32, 100)
	for i := range input {
		input[i] = float32(i)
	}

	// Process in one go
	fir1 := NewFIRFilter(taps)
	fullOutput := fir1.Process(input, ratio)

	// Process in chunks
	fir2 := NewFIRFilter(taps)
	chunk1 := fir2.Process(input[:50], ratio)
	chunk2 := fir2.Process(input[50:], ratio)
	chunkedOutput := append(chunk1, chunk2...)

	if len(fullOutput) != len(chunkedOutput) {
		t.Fatalf("Mismatched lengths: full=%d, chunked=%d", len(fullOutput), len(chunkedOutput))
	}

	for i := range fullOutput {
		if !almostEqual(fullOutput[i], chunkedOutput[i]) {
			t.Errorf("Mismatch at index %d: full=%f, chunked=%f", i, fullOutput[i], chunkedOutput[i])
		}
	}
}

// TestDeemphasis checks the de-emphasis filter's response to a step input,
// applied one block at a time the way MFM/WBFM drive it.
func TestDeemphasis(t *testing.T) {
	const blockSize = 480 // 10ms blocks at an implied 48kHz rate
	const blocks = 200    // 2s total
	const tau = 50e-6     // 50us

	deemph, err := NewDeemphasis(48000, tau)
	require.NoError(t, err)

	step := make([]float32, blockSize)
	for i := range step {
		step[i] = 1.0
	}

	var lastOutput float32
	var finalOutput float32
	for b := 0; b < blocks; b++ {
		out, err := deemph.Run(step)
		require.NoError(t, err)
		require.Len(t, out, blockSize)
		for _, v := range out {
			require.GreaterOrEqual(t, v, lastOutput-float32EqualityThreshold)
			require.LessOrEqual(t, v, float32(1.0)+float32EqualityThreshold)
			lastOutput = v
		}
		finalOutput = out[len(out)-1]
	}

	require.True(t, almostEqual(finalOutput, 1.0), "expected final output near 1.0, got %f", finalOutput)
}

func TestDeemphasisRejectsLengthMismatch(t *testing.T) {
	deemph, err := NewDeemphasis(48000, 50e-6)
	require.NoError(t, err)
	_, err = deemph.Run(make([]float32, 1))
	require.Error(t, err)
}

func TestBandpassZeroPhase(t *testing.T) {
	const n = 2000
	bp, err := NewBandpass(n, 100, 300, 101)
	require.NoError(t, err)

	x := make([]float32, n)
	for i := range x {
		x[i] = float32(math.Sin(2 * math.Pi * 200 * float64(i) / float64(n)))
	}
	out, err := bp.Run(x)
	require.NoError(t, err)
	require.Len(t, out, n)

	_, err = bp.Run(make([]float32, n-1))
	require.Error(t, err)
}

func TestDecimateIdentityWhenRateOne(t *testing.T) {
	d, err := NewDecimate(10, 10, false, 31)
	require.NoError(t, err)
	x := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	out, err := d.Run(x)
	require.NoError(t, err)
	require.Equal(t, x, out)
}

func TestDecimateRejectsNonDivisor(t *testing.T) {
	_, err := NewDecimate(10, 3, false, 31)
	require.Error(t, err)
}

func TestDecimateProducesExactOutputSize(t *testing.T) {
	d, err := NewDecimate(1000, 100, false, 63)
	require.NoError(t, err)
	x := make([]float32, 1000)
	out, err := d.Run(x)
	require.NoError(t, err)
	require.Len(t, out, 100)
}

func TestDecimateZeroPhaseProducesExactOutputSize(t *testing.T) {
	d, err := NewDecimate(1000, 100, true, 63)
	require.NoError(t, err)
	x := make([]float32, 1000)
	out, err := d.Run(x)
	require.NoError(t, err)
	require.Len(t, out, 100)
}

func TestResamplerProducesExactOutputSize(t *testing.T) {
	r, err := NewResample(1000, 77, 31)
	require.NoError(t, err)
	x := make([]float32, 1000)
	for i := range x {
		x[i] = float32(math.Sin(float64(i)))
	}
	out, err := r.Run(x)
	require.NoError(t, err)
	require.Len(t, out, 77)
}
