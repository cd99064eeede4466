package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
services:
  identifier:
    base_url: "http://localhost:9000/json/"
    max_attempts: 5
    retry_delay: "250ms"
  structure:
    timeout: "5s"

vocabulary:
  source: "./vocab.tsv"
  strict: true
  refresh_schedule: "*/15 * * * *"

pipeline:
  concurrency: 4

telemetry:
  logging:
    level: "debug"
    format: "text"
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Services.Identifier.BaseURL != "http://localhost:9000/json/" {
		t.Errorf("expected identifier base URL from file, got %q", cfg.Services.Identifier.BaseURL)
	}
	if cfg.Services.Identifier.MaxAttempts != 5 {
		t.Errorf("expected 5 attempts, got %d", cfg.Services.Identifier.MaxAttempts)
	}
	if cfg.Services.Identifier.RetryDelay != 250*time.Millisecond {
		t.Errorf("expected retry delay 250ms, got %v", cfg.Services.Identifier.RetryDelay)
	}
	if cfg.Services.Structure.BaseURL != DefaultStructureBaseURL {
		t.Errorf("expected default structure URL, got %q", cfg.Services.Structure.BaseURL)
	}
	if cfg.Services.Structure.Timeout != 5*time.Second {
		t.Errorf("expected structure timeout 5s, got %v", cfg.Services.Structure.Timeout)
	}
	if cfg.Services.Structure.MaxAttempts != DefaultStructureAttempts {
		t.Errorf("expected structure attempts %d, got %d", DefaultStructureAttempts, cfg.Services.Structure.MaxAttempts)
	}
	if !cfg.Vocabulary.Strict || cfg.Vocabulary.Source != "./vocab.tsv" {
		t.Errorf("unexpected vocabulary config: %+v", cfg.Vocabulary)
	}
	if cfg.Pipeline.Concurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", cfg.Pipeline.Concurrency)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("expected metrics to be disabled")
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "services: [unclosed")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
services:
  identifier:
    base_url: "ftp://example.org"
pipeline:
  concurrency: -1
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d: %v", len(verr.Errors), verr.Errors)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
vocabulary:
  source: "./from-file.tsv"
telemetry:
  logging:
    level: "info"
`)

	t.Setenv("CMMC_VOCABULARY_SOURCE", "https://example.org/vocab.tsv")
	t.Setenv("CMMC_SERVICES_IDENTIFIER_MAX_ATTEMPTS", "7")
	t.Setenv("CMMC_SERVICES_STRUCTURE_RATE_LIMIT", "2.5")
	t.Setenv("CMMC_PIPELINE_CONCURRENCY", "32")
	t.Setenv("CMMC_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("CMMC_TELEMETRY_METRICS_ENABLED", "false")
	t.Setenv("CMMC_SERVER_READ_TIMEOUT", "not-a-duration")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Vocabulary.Source != "https://example.org/vocab.tsv" {
		t.Errorf("expected env source, got %q", cfg.Vocabulary.Source)
	}
	if cfg.Services.Identifier.MaxAttempts != 7 {
		t.Errorf("expected 7 attempts, got %d", cfg.Services.Identifier.MaxAttempts)
	}
	if cfg.Services.Structure.RateLimit != 2.5 {
		t.Errorf("expected rate limit 2.5, got %v", cfg.Services.Structure.RateLimit)
	}
	if cfg.Pipeline.Concurrency != 32 {
		t.Errorf("expected concurrency 32, got %d", cfg.Pipeline.Concurrency)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected level warn, got %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("expected metrics disabled by env")
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("unparseable override should keep %v, got %v", DefaultReadTimeout, cfg.Server.ReadTimeout)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("CMMC_VOCABULARY_SOURCE", "/data/vocab.tsv")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if cfg.Vocabulary.Source != "/data/vocab.tsv" {
		t.Errorf("expected env source, got %q", cfg.Vocabulary.Source)
	}
	if cfg.Services.Identifier.BaseURL != DefaultIdentifierBaseURL {
		t.Errorf("expected default identifier URL, got %q", cfg.Services.Identifier.BaseURL)
	}
}

func TestLoadConfigWithEnvOverrides_OverrideInvalidates(t *testing.T) {
	t.Setenv("CMMC_SERVICES_STRUCTURE_BASE_URL", "not a url")

	_, err := LoadConfigWithEnvOverrides("")
	if err == nil {
		t.Fatal("expected validation error after override")
	}
	if !strings.Contains(err.Error(), "services.structure.base_url") {
		t.Errorf("expected error to name the field, got %v", err)
	}
}

func TestLoadConfig_ExampleFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "examples", "config.yaml"))
	if err != nil {
		t.Fatalf("example config does not load: %v", err)
	}

	defaults := NewDefaultConfig()
	if cfg.Services.Identifier.BaseURL != defaults.Services.Identifier.BaseURL {
		t.Errorf("identifier base_url = %q, want %q", cfg.Services.Identifier.BaseURL, defaults.Services.Identifier.BaseURL)
	}
	if cfg.Services.Structure.MaxAttempts != DefaultStructureAttempts {
		t.Errorf("structure max_attempts = %d, want %d", cfg.Services.Structure.MaxAttempts, DefaultStructureAttempts)
	}
	if cfg.Server.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Errorf("server max_upload_bytes = %d, want %d", cfg.Server.MaxUploadBytes, DefaultMaxUploadBytes)
	}
	if !cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("metrics should be enabled in the example")
	}
}
