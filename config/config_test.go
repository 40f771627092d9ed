package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/voxlab/scribe/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(config.WithConfigFile(""), config.WithEnvFile(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Name != "scribe" {
		t.Fatalf("expected default name 'scribe', got %q", cfg.Name)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxBodySize != "50MB" {
		t.Fatalf("expected 50MB body limit, got %q", cfg.Server.MaxBodySize)
	}
	if cfg.Convert.SampleRate != 16000 || cfg.Convert.Channels != 1 {
		t.Fatalf("unexpected convert defaults: %+v", cfg.Convert)
	}
	if cfg.Transcription.Provider != "openai" {
		t.Fatalf("expected default provider openai, got %q", cfg.Transcription.Provider)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
name: scribe
environment: production
server:
  port: 9090
  max_body_size: 10MB
convert:
  max_concurrent: 2
transcription:
  provider: whisper
  whisper:
    url: http://whisper:8387
history:
  driver: memory
`)

	cfg, err := config.Load(config.WithConfigFile(path), config.WithEnvFile(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxBodySize != "10MB" {
		t.Fatalf("expected 10MB, got %q", cfg.Server.MaxBodySize)
	}
	if cfg.Convert.MaxConcurrent != 2 {
		t.Fatalf("expected max_concurrent 2, got %d", cfg.Convert.MaxConcurrent)
	}
	if cfg.Transcription.Provider != "whisper" {
		t.Fatalf("expected provider whisper, got %q", cfg.Transcription.Provider)
	}
	if cfg.Transcription.Whisper.URL != "http://whisper:8387" {
		t.Fatalf("unexpected whisper url: %q", cfg.Transcription.Whisper.URL)
	}
	if cfg.History.Driver != "memory" {
		t.Fatalf("expected history driver memory, got %q", cfg.History.Driver)
	}
}

func TestLoadInvalidEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "environment: flippant\n")

	if _, err := config.Load(config.WithConfigFile(path), config.WithEnvFile("")); err == nil {
		t.Fatal("expected validation error for bad environment")
	}
}

func TestLoadMySQLRequiresDSN(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "history:\n  driver: mysql\n")

	if _, err := config.Load(config.WithConfigFile(path), config.WithEnvFile("")); err == nil {
		t.Fatal("expected error for mysql driver without dsn")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SCRIBE_SERVER_PORT", "7070")

	cfg, err := config.Load(config.WithConfigFile(""), config.WithEnvFile(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("expected env override port 7070, got %d", cfg.Server.Port)
	}
}
