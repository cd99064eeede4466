package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"cmmc/validator/pkg/cli"
	"cmmc/validator/pkg/config"
	"cmmc/validator/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cmmc-validator",
	Short: "Validate CMMC deposition tables",
	Long: `cmmc-validator checks metabolomics deposition tables before they are
submitted to the Collaborative Microbial Metabolite Center.

For each row it verifies:
  - spectrum identifiers (USIs) with the USI resolver
  - chemical structures (SMILES) with the structure conversion service
  - molecule origin, confirmation level and source against a vocabulary

The annotated table gets one verdict column per checked column.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code of the failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hint := cli.Hint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and CMMC_* environment variables when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the configuration for a command and makes it the
// process-wide configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("config", err.Error())
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	config.SetConfig(cfg)
	return cfg, nil
}

// newLogger builds the command logger and installs it as the slog default.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Writer:    os.Stderr,
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())
	return logger, nil
}
