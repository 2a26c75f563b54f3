// Command sdrfm wires a file-based IQ/WAV front-end, the ring-buffer/demod
// core, and an oto audio sink into a runnable demodulator, generalizing
// the teacher's single-channel mono pipeline (cmd/go-audio-mini-project)
// to the FM/MFM/WBFM family and to YAML-configured engines. This glue
// layer is explicitly out-of-core (spec §1 L4) but exists so the core
// packages are exercised end to end.
package main

import (
	"encoding/binary"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/pflag"

	"go-audio-mini-project/internal/chopper"
	"go-audio-mini-project/internal/config"
	"go-audio-mini-project/internal/demod"
	"go-audio-mini-project/internal/dsp"
	"go-audio-mini-project/internal/dspbackend"
	"go-audio-mini-project/internal/ringbuffer"
	"go-audio-mini-project/internal/samplering"
	"go-audio-mini-project/internal/slotring"
)

func main() {
	var configPath, inputPath string
	var logLevel string
	pflag.StringVar(&configPath, "config", "", "path to a YAML engine configuration")
	pflag.StringVar(&inputPath, "input", "sample2.iq", "path to a WAV or raw interleaved-int16 IQ file")
	pflag.StringVar(&logLevel, "log-level", "", "override the configured log level")
	pflag.Parse()

	cfg := config.New()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			panic(err)
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger := log.New(os.Stderr)
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	logger.Info("opening input", "path", inputPath)
	file, err := os.Open(inputPath)
	if err != nil {
		logger.Fatal("failed to open input", "err", err)
	}
	defer file.Close()

	// The file is finite, so the ingestion stage uses the backpressure,
	// closable Ring (every sample survives, EOF is observable) rather than
	// SampleRing's lossy, infinite-stream model.
	iqRing := ringbuffer.New[complex64](cfg.RingBufferSize)

	decoder := wav.NewDecoder(file)

	backend := dspbackend.NewGonum()

	logger.Info("setting up audio", "rate", cfg.OutputSampleRate)
	channels := 1
	if cfg.Demodulator == config.DemodulatorWBFM {
		channels = 2
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.OutputSampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		logger.Fatal("failed to set up audio context", "err", err)
	}
	<-ready

	reader, writer := io.Pipe()
	player := ctx.NewPlayer(reader)
	defer player.Close()

	go readFileIntoRing(file, decoder, iqRing, cfg, logger)
	go player.Play()

	// Audio output is buffered through a Carrousel rather than written
	// straight to the pipe: a slow player falls behind by losing the oldest
	// unplayed block (and counting it) rather than backpressuring the demod
	// loop, which must keep pace with the sample-rate clock.
	maxAudioBytes := 2 * channels * (cfg.SampleBlockSize * cfg.OutputSampleRate / cfg.IntermediateRate)
	audioRing, err := slotring.New[byte](cfg.BufferMultiplier, maxAudioBytes)
	if err != nil {
		logger.Fatal("failed to build audio output ring", "err", err)
	}
	audioRing.SetLogger(logger)

	var wg sync.WaitGroup
	wg.Add(1)
	done := make(chan struct{})
	go func() {
		defer wg.Done()
		drainAudioRing(audioRing, writer, done, logger)
	}()

	logger.Info("starting processing", "demodulator", cfg.Demodulator)
	processIQ(iqRing, audioRing, cfg, backend, logger)
	close(done)
	wg.Wait()
	writer.Close()
}

// drainAudioRing dequeues PCM16 byte slots as they become available and
// writes them to the player pipe, backing off briefly when the ring is
// empty. It returns once done is closed and the ring has been drained.
func drainAudioRing(ring *slotring.SlotRing[byte], w io.Writer, done <-chan struct{}, logger *log.Logger) {
	for {
		slot, err := ring.Dequeue()
		if err != nil {
			select {
			case <-done:
				if ring.Occupancy() == 0 {
					return
				}
			default:
			}
			time.Sleep(2 * time.Millisecond)
			continue
		}
		if _, err := w.Write(slot.View); err != nil {
			logger.Warn("audio pipe write failed", "err", err)
		}
		slot.Release()
	}
}

// readFileIntoRing decodes the input (WAV if valid, else raw interleaved
// int16 I/Q) into normalized complex64 samples and writes them to ring,
// closing it once the file is exhausted so the processing loop can stop
// cleanly. Transient short reads are tolerated by writing only what was
// returned, per spec §4.13.
func readFileIntoRing(file *os.File, decoder *wav.Decoder, ring *ringbuffer.Ring[complex64], cfg *config.Config, logger *log.Logger) {
	defer ring.Close()

	if !decoder.IsValidFile() {
		logger.Info("not a WAV file, reading raw interleaved int16 IQ")
		raw := make([]byte, cfg.ChunkSize*4)
		// Device/file reads don't respect the 4-byte I/Q sample boundary, so
		// short reads are staged through a ByteRing until a whole number of
		// samples has accumulated, rather than dropping the trailing bytes.
		staging, err := samplering.NewByteRing(2*cfg.ChunkSize*4, true)
		if err != nil {
			logger.Fatal("failed to build raw IQ staging ring", "err", err)
		}
		for {
			n, err := file.Read(raw)
			if n > 0 {
				if appendErr := staging.Append(raw[:n]); appendErr != nil {
					logger.Warn("raw IQ staging append failed", "err", appendErr)
				} else if usable := staging.Occupancy() - staging.Occupancy()%4; usable > 0 {
					chunk := make([]byte, usable)
					if ok, _ := staging.Popleft(chunk, 0); ok {
						writeRawIQ(ring, chunk)
					}
				}
			}
			if err == io.EOF {
				break
			} else if err != nil {
				logger.Error("file read error", "err", err)
				break
			}
		}
		return
	}

	logger.Info("reading IQ from WAV container")
	if err := decoder.FwdToPCM(); err != nil {
		logger.Fatal("failed to seek to PCM data", "err", err)
	}
	logger.Info("detected WAV format", "bit_depth", decoder.BitDepth, "sample_rate", decoder.SampleRate, "channels", decoder.NumChans)
	if decoder.BitDepth != 16 {
		logger.Fatal("expected 16-bit PCM", "got", decoder.BitDepth)
	}

	buf := &audio.IntBuffer{
		Format: decoder.Format(),
		Data:   make([]int, cfg.ChunkSize*2),
	}
	pairChopper, err := chopper.New(cfg.ChunkSize*2, 2)
	if err != nil {
		logger.Fatal("failed to build IQ pair chopper", "err", err)
	}
	for {
		n, err := decoder.PCMBuffer(buf)
		if err == io.EOF || n == 0 {
			logger.Info("end of WAV file reached")
			return
		}
		c := pairChopper
		if n != cfg.ChunkSize*2 {
			// Final, short read: build a one-off chopper sized to what PCMBuffer
			// actually returned rather than reusing the steady-state one.
			if n%2 != 0 {
				logger.Warn("dropping trailing odd sample", "n", n)
				n--
			}
			c, err = chopper.New(n, 2)
			if err != nil {
				continue
			}
		}
		pairs, err := chopper.Chop(c, buf.Data[:n])
		if err != nil {
			logger.Warn("failed to chop IQ pairs", "err", err)
			continue
		}
		samples := make([]complex64, len(pairs))
		for i, pair := range pairs {
			iVal := int16(pair[0])
			qVal := int16(pair[1])
			samples[i] = complex(float32(iVal)/32768.0, float32(qVal)/32768.0)
		}
		ring.Write(samples)
	}
}

func writeRawIQ(ring *ringbuffer.Ring[complex64], raw []byte) {
	n := len(raw) / 4 // 2 bytes I + 2 bytes Q per complex sample
	samples := make([]complex64, n)
	for i := 0; i < n; i++ {
		iVal := int16(binary.LittleEndian.Uint16(raw[4*i : 4*i+2]))
		qVal := int16(binary.LittleEndian.Uint16(raw[4*i+2 : 4*i+4]))
		samples[i] = complex(float32(iVal)/32768.0, float32(qVal)/32768.0)
	}
	ring.Write(samples)
}

// processIQ runs the two-stage pipeline: a streaming channel-select
// decimation (IQSampleRate -> IntermediateRate) feeding a fixed-size
// intermediate SampleRing, then a block demodulator reading fixed-size
// blocks off that ring and enqueueing PCM16 audio into audioRing.
func processIQ(iqRing *ringbuffer.Ring[complex64], audioRing *slotring.SlotRing[byte], cfg *config.Config, backend dspbackend.Backend, logger *log.Logger) {
	filterI := dsp.NewFIRFilter(dsp.DesignFIRLowPass(cfg.FilterTaps, cfg.ChannelFilterCutoff))
	filterQ := dsp.NewFIRFilter(dsp.DesignFIRLowPass(cfg.FilterTaps, cfg.ChannelFilterCutoff))
	stage1Ratio := float64(cfg.IntermediateRate) / float64(cfg.IQSampleRate)

	intermediateRing, err := samplering.New[complex64](cfg.SampleBlockSize*8, true)
	if err != nil {
		logger.Fatal("failed to build intermediate ring", "err", err)
	}
	intermediateRing.SetLogger(logger)

	outputBlock := cfg.SampleBlockSize * cfg.OutputSampleRate / cfg.IntermediateRate

	p := &pipeline{
		iqRing:           iqRing,
		intermediateRing: intermediateRing,
		filterI:          filterI,
		filterQ:          filterQ,
		stage1Ratio:      stage1Ratio,
		cfg:              cfg,
		outputBlock:      outputBlock,
		audioRing:        audioRing,
		logger:           logger,
	}

	switch cfg.Demodulator {
	case config.DemodulatorFM:
		p.runFM()
	case config.DemodulatorWBFM:
		p.runWBFM(backend)
	default:
		p.runMFM()
	}
}

const popTimeout = 200 * time.Millisecond
const readBlock = 4096

type pipeline struct {
	iqRing           *ringbuffer.Ring[complex64]
	intermediateRing *samplering.SampleRing[complex64]
	filterI, filterQ *dsp.FIRFilter
	stage1Ratio      float64
	cfg              *config.Config
	outputBlock      int
	audioRing        *slotring.SlotRing[byte]
	logger           *log.Logger
}

// fillIntermediate drains one block from the file-ingestion ring, decimates
// it, and appends the result to the intermediate ring. It reports whether
// the source is exhausted (true) so callers can stop their demod loop.
func (p *pipeline) fillIntermediate() (eof bool) {
	raw := p.iqRing.Read(readBlock)
	if raw == nil {
		return true
	}
	i := make([]float32, len(raw))
	q := make([]float32, len(raw))
	for idx, v := range raw {
		i[idx] = real(v)
		q[idx] = imag(v)
	}
	decI := p.filterI.Process(i, p.stage1Ratio)
	decQ := p.filterQ.Process(q, p.stage1Ratio)
	if decI == nil || decQ == nil {
		return false
	}
	n := len(decI)
	if len(decQ) < n {
		n = len(decQ)
	}
	out := make([]complex64, n)
	for idx := 0; idx < n; idx++ {
		out[idx] = complex(decI[idx], decQ[idx])
	}
	_ = p.intermediateRing.Append(out)
	return false
}

func (p *pipeline) runMFM() {
	mfm, err := demod.NewMFM(p.cfg.SampleBlockSize, p.outputBlock, p.cfg.DeemphTau)
	if err != nil {
		p.logger.Fatal("failed to build MFM demodulator", "err", err)
	}
	block := make([]complex64, p.cfg.SampleBlockSize)
	for {
		if p.fillIntermediate() {
			return
		}
		ok, err := p.intermediateRing.Popleft(block, popTimeout)
		if err != nil || !ok {
			continue
		}
		out, err := mfm.Run(block)
		if err != nil {
			p.logger.Warn("mfm run failed", "err", err)
			continue
		}
		writePCM16(p.audioRing, out)
	}
}

func (p *pipeline) runFM() {
	fm, err := demod.New(p.cfg.SampleBlockSize, p.outputBlock, p.cfg.FilterTaps)
	if err != nil {
		p.logger.Fatal("failed to build FM demodulator", "err", err)
	}
	block := make([]complex64, p.cfg.SampleBlockSize)
	for {
		if p.fillIntermediate() {
			return
		}
		ok, err := p.intermediateRing.Popleft(block, popTimeout)
		if err != nil || !ok {
			continue
		}
		out, err := fm.Run(block)
		if err != nil {
			p.logger.Warn("fm run failed", "err", err)
			continue
		}
		writePCM16(p.audioRing, out)
	}
}

func (p *pipeline) runWBFM(backend dspbackend.Backend) {
	wbfm, err := demod.NewWBFM(p.cfg.SampleBlockSize, p.outputBlock, p.cfg.DeemphTau, backend)
	if err != nil {
		p.logger.Fatal("failed to build WBFM demodulator", "err", err)
	}
	block := make([]complex64, p.cfg.SampleBlockSize)
	for {
		if p.fillIntermediate() {
			return
		}
		ok, err := p.intermediateRing.Popleft(block, popTimeout)
		if err != nil || !ok {
			continue
		}
		left, right, err := wbfm.Run(block)
		if err != nil {
			p.logger.Warn("wbfm run failed", "err", err)
			continue
		}
		interleaved := make([]float32, 2*len(left))
		for i := range left {
			interleaved[2*i] = left[i]
			interleaved[2*i+1] = right[i]
		}
		writePCM16(p.audioRing, interleaved)
	}
}

// writePCM16 converts samples to little-endian PCM16 bytes and enqueues them
// into ring as one Carrousel slot. main sizes ring's slots to exactly one
// output block at the configured channel count, so every block fills its
// slot completely and drainAudioRing can write whole slots.
func writePCM16(ring *slotring.SlotRing[byte], samples []float32) {
	n := 2 * len(samples)
	slot := ring.Enqueue()
	defer slot.Release()
	buf := slot.View[:n]
	for i, s := range samples {
		v := s * 32767.0
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(int16(v)))
	}
}
