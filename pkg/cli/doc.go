/*
Package cli provides command-line helpers for the cmmc-validator command.

Reports:

A validation result is turned into a Report and written in text or JSON:

	report := cli.NewReport(result, inputPath, outputPath)
	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

The text layout lists every failed cell next to its source value.

Progress Reporting:

The pipeline progress hook drives a terminal progress bar:

	progress := cli.NewProgressReporter(os.Stderr)
	cfg.Progress = cli.Callback(progress)
	result, err := pipeline.Run(ctx, vocab, set)
	progress.Finish()

Exit Codes:

ExitCode maps command errors to process exit codes: 1 for errors,
including missing columns, and 2 for ErrRowsFailed.
*/
package cli
