package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderOption customizes Load.
type LoaderOption func(*loaderConfig)

type loaderConfig struct {
	configFile string
	envFile    string
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.configFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.envFile = path }
}

// Load reads the configuration: YAML file first, then a .env file, then
// SCRIBE_-prefixed environment variables (highest precedence). The
// result is defaulted and validated.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc loaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	configFile := lc.configFile
	if configFile == "" {
		configFile = findFirst(
			"./config.yml",
			"./config/config.yml",
			"./cmd/scribed/config.yml",
		)
	}
	envFile := lc.envFile
	if envFile == "" {
		envFile = findFirst("./.env")
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "[config] warning: failed to load %s: %v\n", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("SCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	// Bind the keys that commonly arrive via environment so AutomaticEnv
	// sees them even without a config file entry.
	for _, key := range []string{
		"server.port",
		"server.host",
		"logging.level",
		"transcription.provider",
		"transcription.openai.api_key",
		"transcription.openai.model",
		"transcription.whisper.url",
		"convert.ffmpeg_path",
		"history.driver",
		"history.dsn",
		"telemetry.enabled",
		"telemetry.endpoint",
	} {
		_ = v.BindEnv(key)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findFirst(paths ...string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
