package tuner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"go-audio-mini-project/internal/dspbackend"
)

func TestRunBeforeLoadFails(t *testing.T) {
	tu := New(dspbackend.NewGonum())
	_, err := tu.AddChannel(100, 50)
	require.NoError(t, err)
	_, err = tu.Run(0)
	require.ErrorIs(t, err, ErrNotLoaded)
}

func TestLoadBeforeAnyChannelFails(t *testing.T) {
	tu := New(dspbackend.NewGonum())
	err := tu.Load(make([]complex64, 10))
	require.ErrorIs(t, err, ErrNoChannels)
}

func TestRequestBandwidthRejectsBelowCurrent(t *testing.T) {
	tu := New(dspbackend.NewGonum())
	_, err := tu.AddChannel(1000, 100)
	require.NoError(t, err)
	before := tu.InputBandwidth()

	err = tu.RequestBandwidth(before - 1)
	require.ErrorIs(t, err, ErrBandwidthTooLow)
	require.Equal(t, before, tu.InputBandwidth())

	err = tu.RequestBandwidth(before + 500)
	require.NoError(t, err)
	require.Equal(t, before+500, tu.InputBandwidth())
}

func TestAddChannelLockedAfterLoad(t *testing.T) {
	tu := New(dspbackend.NewGonum())
	_, err := tu.AddChannel(1000, 100)
	require.NoError(t, err)
	require.NoError(t, tu.Load(make([]complex64, int(tu.InputBandwidth()))))

	_, err = tu.AddChannel(2000, 100)
	require.ErrorIs(t, err, ErrChannelsLocked)
}

// TestSingleChannelRecoversToneOffset is spec §8 scenario 5: a single
// channel spanning the whole input band, loaded with a pure tone offset
// from the channel center, should come back with its dominant energy at
// the same offset.
func TestSingleChannelRecoversToneOffset(t *testing.T) {
	const centerHz = 96900000.0
	const channelBW = 250000.0
	const toneOffsetHz = 10000.0

	tu := New(dspbackend.NewGonum())
	_, err := tu.AddChannel(centerHz, channelBW)
	require.NoError(t, err)

	n := int(tu.InputBandwidth())
	x := make([]complex64, n)
	for i := range x {
		theta := 2 * math.Pi * toneOffsetHz * float64(i) / channelBW
		x[i] = complex64(complex(math.Cos(theta), math.Sin(theta)))
	}
	require.NoError(t, tu.Load(x))

	out, err := tu.Run(0)
	require.NoError(t, err)
	require.Len(t, out, int(channelBW))

	offset := EstimateOffset(realPart(out), channelBW, dspbackend.NewGonum())
	require.InDelta(t, toneOffsetHz, offset, channelBW*0.05)
}

func realPart(x []complex64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = real(v)
	}
	return out
}
