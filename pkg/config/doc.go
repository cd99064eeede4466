// Package config provides configuration management for the validator.
//
// Configuration is read from an optional YAML file, completed with defaults,
// overridden from the environment and validated:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("cmmc.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention CMMC_SECTION_FIELD.
// For example:
//
//   - CMMC_VOCABULARY_SOURCE overrides vocabulary.source
//   - CMMC_SERVICES_IDENTIFIER_BASE_URL overrides services.identifier.base_url
//   - CMMC_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Validation
//
// Every rule is checked and all failures are reported together:
//
//	configuration validation failed with 2 errors:
//	  - services.identifier.max_attempts: must be at least 1, got 0
//	  - vocabulary.refresh_schedule: invalid cron expression "often": ...
//
// # Example Configuration
//
//	services:
//	  identifier:
//	    base_url: "https://metabolomics-usi.gnps2.org/json/"
//	    max_attempts: 3
//	    retry_delay: "1s"
//	  structure:
//	    base_url: "https://structure.gnps2.org/convert"
//
//	vocabulary:
//	  source: "./vocabulary.tsv"
//	  watch: true
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
