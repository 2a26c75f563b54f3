package tuner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"go-audio-mini-project/internal/dspbackend"
)

func TestEstimateOffsetLocatesKnownTone(t *testing.T) {
	const sampleRate = 48000.0
	const toneHz = 3000.0
	const n = 4096

	x := make([]float32, n)
	for i := range x {
		x[i] = float32(math.Sin(2 * math.Pi * toneHz * float64(i) / sampleRate))
	}

	got := EstimateOffset(x, sampleRate, dspbackend.NewGonum())
	require.InDelta(t, toneHz, got, sampleRate/float64(n)*2)
}
