package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cmmc/validator/pkg/cli"
	"cmmc/validator/pkg/vocabulary"
)

var vocabularyFlags struct {
	source string
	format string
}

var vocabularyCmd = &cobra.Command{
	Use:   "vocabulary",
	Short: "Show the vocabulary and the required columns",
	Long: `Load the vocabulary and print the columns a deposition table must carry
together with the allowed values of each controlled field.

Examples:
  # Inspect the configured vocabulary
  cmmc-validator vocabulary

  # Inspect a remote vocabulary as JSON
  cmmc-validator vocabulary --source https://example.org/vocabulary.tsv --format json`,
	RunE: showVocabulary,
}

func init() {
	rootCmd.AddCommand(vocabularyCmd)

	vocabularyCmd.Flags().StringVar(&vocabularyFlags.source, "source", "", "vocabulary file or URL (overrides vocabulary.source)")
	vocabularyCmd.Flags().StringVar(&vocabularyFlags.format, "format", "text", "output format: text, json")
}

// vocabularyReport describes a loaded vocabulary.
type vocabularyReport struct {
	Source          string              `json:"source"`
	RequiredColumns []string            `json:"required_columns"`
	Fields          map[string][]string `json:"fields"`
}

// RenderText prints the required columns and one line per controlled field.
func (r vocabularyReport) RenderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Source:\t%s\n", r.Source)
	fmt.Fprintf(tw, "Required columns:\t%s\n", strings.Join(r.RequiredColumns, ", "))
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "FIELD\tVALUES\tALLOWED")
	for _, field := range vocabulary.ControlledFields {
		values, ok := r.Fields[field]
		if !ok {
			fmt.Fprintf(tw, "%s\t-\t(column missing)\n", field)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", field, len(values), strings.Join(values, "; "))
	}
	return tw.Flush()
}

func showVocabulary(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(vocabularyFlags.format)
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

	comps, err := buildComponents(cfg, componentOptions{source: vocabularyFlags.source}, logger)
	if err != nil {
		return cli.NewCommandError("vocabulary", err)
	}
	defer comps.Close()

	if err := comps.store.Reload(cli.SetupSignalHandler()); err != nil {
		return cli.NewCommandError("vocabulary", err)
	}
	set, err := comps.store.Get()
	if err != nil {
		return cli.NewCommandError("vocabulary", err)
	}

	report := vocabularyReport{
		Source:          set.Source(),
		RequiredColumns: comps.pipeline.RequiredColumns(set),
		Fields:          make(map[string][]string),
	}
	for _, field := range vocabulary.ControlledFields {
		if set.Has(field) {
			report.Fields[field] = set.Allowed(field).Sorted()
		}
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report)
}
