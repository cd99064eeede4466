package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cmmc/validator/pkg/cli"
	"cmmc/validator/pkg/records"
	"cmmc/validator/pkg/validation"
)

var validateFlags struct {
	input         string
	vocabulary    string
	output        string
	format        string
	failOnInvalid bool
	progress      bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a deposition table",
	Long: `Validate every row of a tab-separated deposition table.

The table must carry every column of the vocabulary header plus the
validated source columns. Missing columns stop the run before any
lookup is made.

The annotated table is written to --output (by default
validated_usis_smiles_metadata.tsv next to the input) and a summary of
the failures is printed.

Exit codes:
  0  validation finished
  1  the run could not be completed (missing columns, unreadable input)
  2  at least one row failed and --fail-on-invalid was given

Examples:
  # Validate with the configured vocabulary
  cmmc-validator validate --input deposition.tsv

  # Use another vocabulary and print the report as JSON
  cmmc-validator validate --input deposition.tsv --vocabulary ref.tsv --format json

  # Fail CI when a row is invalid
  cmmc-validator validate --input deposition.tsv --fail-on-invalid`,
	RunE: validateTable,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.input, "input", "i", "", "deposition table to validate (required)")
	validateCmd.Flags().StringVar(&validateFlags.vocabulary, "vocabulary", "", "vocabulary file or URL (overrides vocabulary.source)")
	validateCmd.Flags().StringVarP(&validateFlags.output, "output", "o", "", "annotated table path")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "report format: text, json")
	validateCmd.Flags().BoolVar(&validateFlags.failOnInvalid, "fail-on-invalid", false, "exit with code 2 when a row fails")
	validateCmd.Flags().BoolVar(&validateFlags.progress, "progress", false, "show progress on stderr")
}

func validateTable(cmd *cobra.Command, args []string) error {
	if validateFlags.input == "" {
		return cli.NewConfigError("input", "--input must be specified")
	}
	format, err := cli.ParseOutputFormat(validateFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	table, err := records.ReadTSVFile(validateFlags.input)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	var progress cli.ProgressReporter
	opts := componentOptions{source: validateFlags.vocabulary}
	if validateFlags.progress {
		progress = cli.NewProgressReporter(os.Stderr)
		opts.progress = cli.Callback(progress)
	}

	comps, err := buildComponents(cfg, opts, logger)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}
	defer comps.Close()

	ctx := cli.SetupSignalHandler()

	if err := comps.store.Reload(ctx); err != nil {
		return cli.NewCommandError("validate", fmt.Errorf("failed to load vocabulary: %w", err))
	}
	vocab, err := comps.store.Get()
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	result, err := comps.pipeline.Run(ctx, vocab, table)
	if err != nil {
		if progress != nil {
			progress.Error(err)
		}
		return cli.NewCommandError("validate", err)
	}
	if progress != nil {
		progress.Finish()
	}

	output := validateFlags.output
	if output == "" {
		output = filepath.Join(filepath.Dir(validateFlags.input), validation.OutputFileName)
	}
	if err := writeResult(output, result); err != nil {
		return cli.NewCommandError("validate", err)
	}

	report := cli.NewReport(result, validateFlags.input, output)
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report); err != nil {
		return cli.NewCommandError("validate", err)
	}

	if validateFlags.failOnInvalid && !result.AllPassed() {
		return cli.ErrRowsFailed
	}
	return nil
}

func writeResult(path string, result *validation.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := result.WriteTSV(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	return f.Close()
}
