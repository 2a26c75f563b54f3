package demod

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMFMChannelsIsOne(t *testing.T) {
	m, err := NewMFM(2048, 2048, 50e-6)
	require.NoError(t, err)
	require.Equal(t, 1, m.Channels())
}

func TestMFMOutputStaysWithinClipRange(t *testing.T) {
	const inputSize = 4096
	const inputRate = 200000.0
	const toneHz = 3000.0

	m, err := NewMFM(inputSize, inputSize, 50e-6)
	require.NoError(t, err)

	x := make([]complex64, inputSize)
	for i := range x {
		theta := 2 * math.Pi * toneHz * float64(i) / inputRate
		x[i] = complex64(complex(math.Cos(theta), math.Sin(theta)))
	}

	out, err := m.Run(x)
	require.NoError(t, err)
	require.Len(t, out, inputSize)
	for _, v := range out {
		require.LessOrEqual(t, v, float32(0.999))
		require.GreaterOrEqual(t, v, float32(-0.999))
	}
}
