package demod

import (
	"fmt"

	"go-audio-mini-project/internal/dsp"
	"go-audio-mini-project/internal/dspbackend"
	"go-audio-mini-project/internal/pll"
)

// lmrScale is the fixed gain applied to the recovered L−R subcarrier
// before it is mixed back to baseband (spec §4.11).
const lmrScale = 1.0175

// WBFM is the stereo broadcast demodulator (spec §4.11): FM discrimination
// of the composite baseband, pilot-tracked recovery of the L−R subcarrier
// via a PLL, and per-channel de-emphasis/DC-removal/clipping.
type WBFM struct {
	inputSize, outputSize int

	fm      *FM
	pilotBP *dsp.Bandpass
	lmrBP   *dsp.Bandpass
	pll     *pll.PLL
	dec     *dsp.Decimate
	deempL  *dsp.Deemphasis
	deempR  *dsp.Deemphasis

	dcL realDCWindow
	dcR realDCWindow
}

// NewWBFM constructs a WBFM demodulator over the given backend.
func NewWBFM(inputSize, outputSize int, deemphasisTau float64, backend dspbackend.Backend) (*WBFM, error) {
	fm, err := New(inputSize, inputSize, 63)
	if err != nil {
		return nil, err
	}
	pilotBP, err := dsp.NewBandpass(inputSize, 18900, 19100, 127)
	if err != nil {
		return nil, err
	}
	lmrBP, err := dsp.NewBandpass(inputSize, 23000, 53000, 127)
	if err != nil {
		return nil, err
	}
	dec, err := dsp.NewDecimate(inputSize, outputSize, true, 63)
	if err != nil {
		return nil, err
	}
	deempL, err := dsp.NewDeemphasis(outputSize, deemphasisTau)
	if err != nil {
		return nil, err
	}
	deempR, err := dsp.NewDeemphasis(outputSize, deemphasisTau)
	if err != nil {
		return nil, err
	}
	if backend == nil {
		backend = dspbackend.Default()
	}
	return &WBFM{
		inputSize:  inputSize,
		outputSize: outputSize,
		fm:         fm,
		pilotBP:    pilotBP,
		lmrBP:      lmrBP,
		pll:        pll.New(backend),
		dec:        dec,
		deempL:     deempL,
		deempR:     deempR,
	}, nil
}

// Channels reports the number of audio channels WBFM produces.
func (w *WBFM) Channels() int { return 2 }

// Run demodulates one block of complex baseband into separate L and R
// audio slices, each of length outputSize.
func (w *WBFM) Run(x []complex64) (left, right []float32, err error) {
	// 1. Composite baseband.
	m, err := w.fm.Run(x)
	if err != nil {
		return nil, nil, err
	}

	// 2. Pilot tracking.
	p, err := w.pilotBP.Run(m)
	if err != nil {
		return nil, nil, err
	}
	w.pll.Step(p)

	// 3. L−R subcarrier, mixed to baseband via the coherent 38kHz reference.
	s, err := w.lmrBP.Run(m)
	if err != nil {
		return nil, nil, err
	}
	wave, err := w.pll.Wave(2)
	if err != nil {
		return nil, nil, err
	}
	lmr := make([]float32, len(s))
	for i := range s {
		lmr[i] = s[i] * wave[i] * lmrScale
	}

	// 4. Matrix back to L and R.
	sumCh := make([]float32, len(m))
	diffCh := make([]float32, len(m))
	for i := range m {
		sumCh[i] = m[i] + lmr[i]
		diffCh[i] = m[i] - lmr[i]
	}

	l, err := w.dec.Run(sumCh)
	if err != nil {
		return nil, nil, err
	}
	r, err := w.dec.Run(diffCh)
	if err != nil {
		return nil, nil, err
	}

	// 5. Per-channel de-emphasis, DC removal, clipping.
	l, err = w.deempL.Run(l)
	if err != nil {
		return nil, nil, err
	}
	r, err = w.deempR.Run(r)
	if err != nil {
		return nil, nil, err
	}
	if len(l) != w.outputSize || len(r) != w.outputSize {
		return nil, nil, fmt.Errorf("demod: wbfm produced L=%d R=%d samples, expected %d", len(l), len(r), w.outputSize)
	}

	left = removeDCAndClip(&w.dcL, l)
	right = removeDCAndClip(&w.dcR, r)
	return left, right, nil
}

func removeDCAndClip(dc *realDCWindow, in []float32) []float32 {
	var sum float64
	for _, v := range in {
		sum += float64(v)
	}
	dc.push(sum / float64(len(in)))
	mean := float32(dc.mean())

	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = clip(v-mean, -0.999, 0.999)
	}
	return out
}
