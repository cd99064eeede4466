package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "CMMC_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides named CMMC_SECTION_FIELD
// (e.g. CMMC_VOCABULARY_SOURCE). An empty path starts from the defaults.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = NewDefaultConfig()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if cfg, err = parse(data); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Values that fail to parse are ignored and the file value is kept.
func applyEnvOverrides(cfg *Config) {
	applyServiceEnvOverrides(&cfg.Services.Identifier, "IDENTIFIER")
	applyServiceEnvOverrides(&cfg.Services.Structure, "STRUCTURE")
	envString("SERVICES_USER_AGENT", &cfg.Services.UserAgent)

	// Vocabulary overrides
	envString("VOCABULARY_SOURCE", &cfg.Vocabulary.Source)
	envBool("VOCABULARY_STRICT", &cfg.Vocabulary.Strict)
	envBool("VOCABULARY_WATCH", &cfg.Vocabulary.Watch)
	envString("VOCABULARY_REFRESH_SCHEDULE", &cfg.Vocabulary.RefreshSchedule)
	envDuration("VOCABULARY_TIMEOUT", &cfg.Vocabulary.Timeout)

	envInt("PIPELINE_CONCURRENCY", &cfg.Pipeline.Concurrency)

	// Server overrides
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	if val := lookupEnv("SERVER_MAX_UPLOAD_BYTES"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Server.MaxUploadBytes = n
		}
	}

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	if val := lookupEnv("TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = &b
		}
	}
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
}

// applyServiceEnvOverrides applies CMMC_SERVICES_<NAME>_* overrides.
func applyServiceEnvOverrides(svc *ServiceConfig, name string) {
	prefix := "SERVICES_" + strings.ToUpper(name) + "_"

	envString(prefix+"BASE_URL", &svc.BaseURL)
	envDuration(prefix+"TIMEOUT", &svc.Timeout)
	envInt(prefix+"MAX_ATTEMPTS", &svc.MaxAttempts)
	envDuration(prefix+"RETRY_DELAY", &svc.RetryDelay)
	envInt(prefix+"MAX_IN_FLIGHT", &svc.MaxInFlight)
	envInt(prefix+"CACHE_SIZE", &svc.CacheSize)
	envDuration(prefix+"HEALTH_CHECK_INTERVAL", &svc.HealthCheckInterval)
	if val := lookupEnv(prefix + "RATE_LIMIT"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			svc.RateLimit = f
		}
	}
}

func lookupEnv(name string) string {
	return os.Getenv(EnvPrefix + name)
}

func envString(name string, dst *string) {
	if val := lookupEnv(name); val != "" {
		*dst = val
	}
}

func envInt(name string, dst *int) {
	if val := lookupEnv(name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envBool(name string, dst *bool) {
	if val := lookupEnv(name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := lookupEnv(name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
