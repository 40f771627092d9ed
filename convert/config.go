package convert

import (
	"fmt"
	"time"
)

// Config holds converter settings.
type Config struct {
	// FFmpegPath is the ffmpeg binary path or name (resolved via PATH).
	FFmpegPath string `yaml:"ffmpeg_path,omitempty" mapstructure:"ffmpeg_path"`
	// SampleRate is the output sample rate in Hz.
	SampleRate int `yaml:"sample_rate,omitempty" mapstructure:"sample_rate"`
	// Channels is the output channel count.
	Channels int `yaml:"channels,omitempty" mapstructure:"channels"`
	// Timeout bounds a single conversion.
	Timeout time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
	// MaxConcurrent caps simultaneous ffmpeg processes.
	MaxConcurrent int `yaml:"max_concurrent,omitempty" mapstructure:"max_concurrent"`
	// TempDir is where scratch files are written. Empty means os.TempDir.
	TempDir string `yaml:"temp_dir,omitempty" mapstructure:"temp_dir"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.Channels == 0 {
		c.Channels = 1
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 4
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.SampleRate < 0 {
		return errInvalid("sample_rate")
	}
	if c.Channels < 0 {
		return errInvalid("channels")
	}
	if c.MaxConcurrent < 0 {
		return errInvalid("max_concurrent")
	}
	return nil
}

func errInvalid(field string) error {
	return fmt.Errorf("convert: %s must not be negative", field)
}
