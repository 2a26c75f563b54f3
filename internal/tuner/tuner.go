// Package tuner implements the FFT-based channelizer (spec §4.12),
// grounded on original_source/radiocore/tools/tuner.py: one FFT amortized
// across every registered channel per one-second window, each channel
// extracted by a circular shift (to bring it to DC) followed by a
// band-limited frequency-domain resample.
package tuner

import (
	"errors"
	"fmt"
	"math"

	"go-audio-mini-project/internal/dspbackend"
)

type state int

const (
	stateEmpty state = iota
	stateConfigured
	stateLoaded
)

var (
	// ErrNoChannels is returned by load when no channel has been added yet.
	ErrNoChannels = errors.New("tuner: no channels registered")
	// ErrNotLoaded is returned by run before load has been called.
	ErrNotLoaded = errors.New("tuner: run called before load")
	// ErrChannelsLocked is returned by add_channel once capture has begun.
	ErrChannelsLocked = errors.New("tuner: cannot add channels after load")
	// ErrBandwidthTooLow is returned by request_bandwidth below the current value.
	ErrBandwidthTooLow = errors.New("tuner: requested bandwidth is below the current value")
)

// Tuner channelizes a wide capture band into narrow channels off a single
// FFT per window (spec §4.12, §5 "multiple independent channels off one
// FFT").
type Tuner struct {
	backend dspbackend.Backend

	state    state
	channels []Channel

	inputFrequency float64
	inputBandwidth float64

	buffer []complex128 // B = FFT(x), valid only once state == stateLoaded
}

// New constructs an empty Tuner against the given numeric backend.
func New(backend dspbackend.Backend) *Tuner {
	if backend == nil {
		backend = dspbackend.Default()
	}
	return &Tuner{backend: backend}
}

// InputFrequency returns the center frequency of the derived input band.
func (t *Tuner) InputFrequency() float64 { return t.inputFrequency }

// InputBandwidth returns the derived (and possibly padded/overridden)
// input bandwidth.
func (t *Tuner) InputBandwidth() float64 { return t.inputBandwidth }

// Channels returns the registered channels in insertion order.
func (t *Tuner) Channels() []Channel {
	out := make([]Channel, len(t.channels))
	copy(out, t.channels)
	return out
}

// AddChannel registers a new output channel. Only legal before load.
// Recalculates input_frequency and input_bandwidth.
func (t *Tuner) AddChannel(frequency, bandwidth float64) (int, error) {
	if t.state == stateLoaded {
		return 0, ErrChannelsLocked
	}
	if bandwidth <= 0 {
		return 0, fmt.Errorf("tuner: channel bandwidth must be positive, got %v", bandwidth)
	}
	ch := Channel{
		Index:     len(t.channels),
		Frequency: frequency,
		Bandwidth: bandwidth,
		Lower:     frequency - bandwidth/2,
		Upper:     frequency + bandwidth/2,
	}
	t.channels = append(t.channels, ch)
	t.recalculate()
	t.state = stateConfigured
	return ch.Index, nil
}

// RequestBandwidth raises input_bandwidth to b. Fails when b is below the
// current value; the next AddChannel call overrides this again.
func (t *Tuner) RequestBandwidth(b float64) error {
	if b < t.inputBandwidth {
		return ErrBandwidthTooLow
	}
	t.inputBandwidth = b
	return nil
}

// Reset clears all registered channels and derived state.
func (t *Tuner) Reset() {
	t.channels = nil
	t.inputFrequency = 0
	t.inputBandwidth = 0
	t.buffer = nil
	t.state = stateEmpty
}

// Load pre-processes one second's worth of input samples, storing their
// spectrum for subsequent Run calls. x's length should equal
// InputBandwidth(); other lengths are rejected rather than left undefined
// (a deliberate tightening of the source's "behavior with other lengths
// is undefined").
func (t *Tuner) Load(x []complex64) error {
	if t.state == stateEmpty {
		return ErrNoChannels
	}
	want := int(t.inputBandwidth)
	if len(x) != want {
		return fmt.Errorf("tuner: load expected %d samples, got %d", want, len(x))
	}

	src := make([]complex128, len(x))
	for i, v := range x {
		src[i] = complex128(v)
	}
	t.buffer = t.backend.FFT(len(src)).Coefficients(nil, src)
	t.state = stateLoaded
	return nil
}

// Run returns the time-domain baseband of channel i: the loaded spectrum
// circularly shifted so the channel centers at DC, resampled in the
// frequency domain to exactly channel.Bandwidth bins through a
// precomputed, FFT-shifted Hann window, then inverse-transformed.
func (t *Tuner) Run(i int) ([]complex64, error) {
	if t.state != stateLoaded {
		return nil, ErrNotLoaded
	}
	if i < 0 || i >= len(t.channels) {
		return nil, fmt.Errorf("tuner: channel index %d out of range [0,%d)", i, len(t.channels))
	}
	ch := t.channels[i]

	n := len(t.buffer)
	roll := int(math.Floor(t.inputFrequency - ch.Frequency))
	shifted := rollComplex(t.buffer, roll)

	win := fftShift(t.backend.HannWindow(n))
	windowed := make([]complex128, n)
	for idx, v := range shifted {
		windowed[idx] = v * complex(win[idx], 0)
	}

	m := int(ch.Bandwidth)
	if m <= 0 {
		return nil, fmt.Errorf("tuner: channel %d has non-positive bandwidth", i)
	}
	y := make([]complex128, m)
	ncopy := m
	if n < ncopy {
		ncopy = n
	}
	lo := (ncopy + 1) / 2
	copy(y[:lo], windowed[:lo])
	hi := (ncopy - 1) / 2
	if hi > 0 {
		copy(y[m-hi:], windowed[n-hi:])
	}

	seq := t.backend.FFT(m).Sequence(nil, y)
	scale := complex(float64(m)/float64(n), 0)
	out := make([]complex64, m)
	for idx, v := range seq {
		out[idx] = complex64(v * scale)
	}
	return out, nil
}

// recalculate re-derives input_frequency and input_bandwidth from the
// registered channels, padding input_bandwidth upward so it is an integer
// multiple of the (integer-division) mean channel bandwidth, matching the
// source's convention exactly (spec §4.12, Open Questions).
func (t *Tuner) recalculate() {
	lower := t.channels[0].Lower
	upper := t.channels[0].Upper
	var bandwidthSum int64
	for _, ch := range t.channels {
		if ch.Lower < lower {
			lower = ch.Lower
		}
		if ch.Upper > upper {
			upper = ch.Upper
		}
		bandwidthSum += int64(ch.Bandwidth)
	}
	t.inputFrequency = (lower + upper) / 2
	bandwidth := upper - lower

	meanBandwidth := bandwidthSum / int64(len(t.channels))
	if meanBandwidth > 0 {
		ib := int64(bandwidth)
		pad := pythonMod(-ib, meanBandwidth)
		bandwidth += float64(pad)
	}
	t.inputBandwidth = bandwidth
}

// rollComplex reproduces numpy.roll: result[i] = x[(i-shift) mod len(x)].
func rollComplex(x []complex128, shift int) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	r := ((shift % n) + n) % n
	copy(out[r:], x[:n-r])
	copy(out[:r], x[n-r:])
	return out
}

// fftShift swaps the two halves of w, matching numpy.fft.fftshift.
func fftShift(w []float64) []float64 {
	n := len(w)
	out := make([]float64, n)
	mid := n / 2
	copy(out[:n-mid], w[mid:])
	copy(out[n-mid:], w[:mid])
	return out
}

// pythonMod computes a mod b with Python's sign convention (result always
// has the sign of b, here always non-negative since b > 0), matching the
// source's `(bandwidth * -1) % mean_bandwidth` padding arithmetic.
func pythonMod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
