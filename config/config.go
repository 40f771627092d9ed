// Package config loads and validates the service configuration from a
// YAML file, a .env file, and environment variables, in that order of
// increasing precedence.
package config

import (
	"fmt"

	"github.com/voxlab/scribe/convert"
	"github.com/voxlab/scribe/logger"
	"github.com/voxlab/scribe/server"
	"github.com/voxlab/scribe/transcription/openai"
	"github.com/voxlab/scribe/transcription/whisper"
	"github.com/voxlab/scribe/validation"
)

// Config is the root configuration for the scribe service.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment" validate:"omitempty,oneof=development staging production"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Server        server.Config       `yaml:"server" mapstructure:"server"`
	Convert       convert.Config      `yaml:"convert" mapstructure:"convert"`
	Transcription TranscriptionConfig `yaml:"transcription" mapstructure:"transcription"`
	History       HistoryConfig       `yaml:"history" mapstructure:"history"`
	Telemetry     TelemetryConfig     `yaml:"telemetry" mapstructure:"telemetry"`
}

// TranscriptionConfig selects and configures the speech-to-text backend.
type TranscriptionConfig struct {
	// Provider is the default backend ("openai" or "whisper").
	Provider string         `yaml:"provider" mapstructure:"provider" validate:"omitempty,oneof=openai whisper"`
	OpenAI   openai.Config  `yaml:"openai" mapstructure:"openai"`
	Whisper  whisper.Config `yaml:"whisper" mapstructure:"whisper"`
}

// HistoryConfig configures optional transcript persistence.
type HistoryConfig struct {
	// Driver is "memory", "mysql", or empty to disable history.
	Driver string `yaml:"driver" mapstructure:"driver" validate:"omitempty,oneof=memory mysql"`
	// DSN is the MySQL connection string when Driver is "mysql".
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// ApplyDefaults fills in defaults across all sections.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "scribe"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Transcription.Provider == "" {
		c.Transcription.Provider = "openai"
	}
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
		c.Telemetry.Insecure = true
	}
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1.0
	}
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Convert.ApplyDefaults()
}

// Validate checks the whole configuration tree.
func (c *Config) Validate() error {
	if appErr := validation.Validate(c); appErr != nil {
		return appErr
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Convert.Validate(); err != nil {
		return err
	}
	if c.History.Driver == "mysql" && c.History.DSN == "" {
		return fmt.Errorf("history.dsn is required when history.driver is mysql")
	}
	return nil
}
