// Package iface defines the external-interface seams named in spec §6:
// a radio front-end source, an audio sink, and an optional pub/sub
// transport. Nothing in internal/dsp, internal/demod, or internal/tuner
// depends on this package. UDPPublisher is the only concrete implementation
// here; cmd/sdrfm does not use these interfaces and reads its input file and
// drives oto directly.
package iface

import "time"

// ReadResult describes one completed front-end Read.
type ReadResult struct {
	// N is the number of samples actually written into the caller's view.
	N int
	// Flags carries front-end-specific status bits (e.g. overflow, end of
	// burst); zero when nothing noteworthy happened.
	Flags int
	// TimeNS is the front-end's hardware timestamp for the first sample,
	// in nanoseconds, when the front-end supports it.
	TimeNS int64
}

// RadioFrontend is a streaming complex-sample source: SDR hardware, a
// network IQ feed, or a file replay. Its lifecycle is
// SetupStream -> Activate -> Read* -> Deactivate -> Close, matching
// spec §6's consumed front-end contract.
type RadioFrontend interface {
	// SetupStream prepares the stream; must be called before Activate.
	SetupStream() error
	// SetSampleRate sets the device sample rate in Hz. Only legal before
	// Activate.
	SetSampleRate(hz float64) error
	// SetCenterFrequency tunes the front-end. Only legal before Activate.
	SetCenterFrequency(hz float64) error
	// SetGainMode selects a gain mode (e.g. "auto", "manual:20").  Only
	// legal before Activate.
	SetGainMode(mode string) error
	// Activate begins streaming.
	Activate() error
	// Read fills dst with up to len(dst) samples, blocking up to timeout.
	// Short reads (ret < len(dst)) are valid and must be tolerated by the
	// caller, per spec §4.13's "tolerate transient short reads".
	Read(dst []complex64, timeout time.Duration) (ReadResult, error)
	// Deactivate stops streaming; Read must not be called afterward.
	Deactivate() error
	// Close releases the stream. Only legal after Deactivate.
	Close() error
}

// AudioBlock is a writable (blockSize x channels) view handed to an
// AudioSink's callback on every cycle.
type AudioBlock [][]float32

// AudioSink is a streaming audio output: a sound device, a WAV writer, or
// an oto player. OpenStream's callback must not block — it is called
// from the sink's own real-time thread.
type AudioSink interface {
	// OpenStream opens an output stream at sampleRateHz with channelCount
	// output channels, delivering blockSize-sample blocks to fill via
	// callback.
	OpenStream(blockSize, sampleRateHz, channelCount int, callback func(AudioBlock)) error
	// Close stops and releases the stream.
	Close() error
}

// Publisher is the optional pub/sub transport (spec §6): frames are
// published as (address, payload), address being the channel's center
// frequency in Hz and payload the raw (possibly interleaved) audio
// samples, so subscribers can filter by address prefix.
type Publisher interface {
	// Publish sends one frame for the channel centered at centerHz.
	Publish(centerHz uint32, payload []float32) error
	// Close releases the publisher's socket.
	Close() error
}
