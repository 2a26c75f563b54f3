// Package config holds the engine's tunable parameters as a plain struct,
// defaulted by a constructor and loadable from YAML, the way the teacher's
// internal/config did for its narrower mono-only pipeline.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DemodulatorKind selects which demodulator a channel runs.
type DemodulatorKind string

const (
	DemodulatorFM   DemodulatorKind = "fm"
	DemodulatorMFM  DemodulatorKind = "mfm"
	DemodulatorWBFM DemodulatorKind = "wbfm"
)

// ChannelConfig describes one Tuner channel to configure at startup.
type ChannelConfig struct {
	FrequencyHz float64         `yaml:"frequency_hz"`
	BandwidthHz float64         `yaml:"bandwidth_hz"`
	Demodulator DemodulatorKind `yaml:"demodulator"`
}

// Config holds all the configuration parameters for the application.
type Config struct {
	IQSampleRate        int             `yaml:"iq_sample_rate"`
	IntermediateRate    int             `yaml:"intermediate_rate"`
	OutputSampleRate    int             `yaml:"output_sample_rate"`
	SampleBlockSize     int             `yaml:"sample_block_size"`
	FilterTaps          int             `yaml:"filter_taps"`
	RingBufferSize      int             `yaml:"ring_buffer_size"`
	ChunkSize           int             `yaml:"chunk_size"`
	ChannelFilterCutoff float64         `yaml:"channel_filter_cutoff"`
	AudioFilterCutoff   float64         `yaml:"audio_filter_cutoff"`
	DeemphTau           float64         `yaml:"deemph_tau"`
	DeviceBuffer        int             `yaml:"device_buffer"`
	BufferMultiplier    int             `yaml:"buffer_multiplier"`
	EnableCUDA          bool            `yaml:"enable_cuda"`
	Demodulator         DemodulatorKind `yaml:"demodulator"`
	Channels            []ChannelConfig `yaml:"channels"`
	LogLevel            string          `yaml:"log_level"`
}

// New returns a new Config with default values: a single-channel mono FM
// broadcast pipeline at the teacher's original rates.
func New() *Config {
	return &Config{
		IQSampleRate:        2_000_000,
		IntermediateRate:    240_000,
		OutputSampleRate:    48_000,
		SampleBlockSize:     4800, // multiple of IntermediateRate/OutputSampleRate so decimation lands on an exact block
		FilterTaps:          251,
		RingBufferSize:      2 * 2_000_000 * 2, // 4s of complex64 IQ at IQSampleRate
		ChunkSize:           8192,
		ChannelFilterCutoff: 100000.0 / float64(2_000_000),
		AudioFilterCutoff:   15000.0 / float64(240_000),
		DeemphTau:           50e-6, // 50us for Europe
		DeviceBuffer:        8192,
		BufferMultiplier:    4,
		EnableCUDA:          false,
		Demodulator:         DemodulatorMFM,
		LogLevel:            "info",
	}
}

// Load reads a YAML configuration file, starting from New()'s defaults so
// the file only needs to set the fields it overrides.
func Load(path string) (*Config, error) {
	cfg := New()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
