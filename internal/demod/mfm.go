package demod

import (
	"fmt"

	"go-audio-mini-project/internal/dsp"
)

// MFM is the mono broadcast demodulator (spec §4.10): FM discrimination
// followed by de-emphasis, DC removal, and clipping into audio range.
type MFM struct {
	outputSize int
	fm         *FM
	deemph     *dsp.Deemphasis
	dc         realDCWindow
}

// NewMFM constructs an MFM demodulator. deemphasisTau is the de-emphasis
// time constant in seconds (50e-6 or 75e-6).
func NewMFM(inputSize, outputSize int, deemphasisTau float64) (*MFM, error) {
	fm, err := New(inputSize, outputSize, 63)
	if err != nil {
		return nil, err
	}
	deemph, err := dsp.NewDeemphasis(outputSize, deemphasisTau)
	if err != nil {
		return nil, err
	}
	return &MFM{outputSize: outputSize, fm: fm, deemph: deemph}, nil
}

// Channels reports the number of audio channels MFM produces.
func (m *MFM) Channels() int { return 1 }

// Run demodulates one block of complex baseband into a single-column
// audio block of length outputSize.
func (m *MFM) Run(x []complex64) ([]float32, error) {
	audio, err := m.fm.Run(x)
	if err != nil {
		return nil, err
	}
	audio, err = m.deemph.Run(audio)
	if err != nil {
		return nil, err
	}
	if len(audio) != m.outputSize {
		return nil, fmt.Errorf("demod: mfm produced %d samples, expected %d", len(audio), m.outputSize)
	}

	var sum float64
	for _, v := range audio {
		sum += float64(v)
	}
	m.dc.push(sum / float64(len(audio)))
	mean := float32(m.dc.mean())

	out := make([]float32, len(audio))
	for i, v := range audio {
		out[i] = clip(v-mean, -0.999, 0.999)
	}
	return out, nil
}

func clip(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
