package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"cmmc/validator/pkg/validation"
)

// Failure is one failed cell in a Report.
type Failure struct {
	// Row is the zero-based data row index.
	Row     int                `json:"row"`
	Value   string             `json:"value"`
	Verdict validation.Verdict `json:"verdict"`
}

// Report is the printable outcome of a validation run.
type Report struct {
	RunID      string               `json:"run_id"`
	Input      string               `json:"input,omitempty"`
	Output     string               `json:"output,omitempty"`
	Duration   string               `json:"duration"`
	Summary    validation.Summary   `json:"summary"`
	Failures   map[string][]Failure `json:"failures"`
	failureOrd []string
}

// NewReport builds a report from a result. Failures are keyed by output
// column and listed in row order, each next to its source value.
func NewReport(result *validation.Result, input, output string) Report {
	report := Report{
		RunID:    result.RunID,
		Input:    input,
		Output:   output,
		Duration: result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond).String(),
		Summary:  result.Summary(),
		Failures: make(map[string][]Failure),
	}

	set := result.Records()
	for _, col := range result.Columns() {
		rows := result.Failures(col.Output)
		if len(rows) == 0 {
			continue
		}
		report.failureOrd = append(report.failureOrd, col.Output)
		for _, i := range rows {
			verdict, _ := result.Verdict(i, col.Output)
			value := ""
			if v := set.Record(i).Value(col.Source); v != nil {
				value = *v
			}
			report.Failures[col.Output] = append(report.Failures[col.Output], Failure{
				Row:     i,
				Value:   value,
				Verdict: verdict,
			})
		}
	}

	return report
}

// RenderText writes the summary table followed by the failure listing.
// Rows are shown one-based so they match a spreadsheet view of the file.
func (r Report) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "Run %s: %d rows, %d failed (%s)\n",
		r.RunID, r.Summary.Rows, r.Summary.FailedRows, r.Duration)
	if r.Output != "" {
		fmt.Fprintf(w, "Annotated file: %s\n", r.Output)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tSOURCE\tPASSED\tFAILED")
	for _, col := range r.Summary.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", col.Column, col.Source, col.Passed, col.Failed)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, column := range r.failureOrd {
		fmt.Fprintf(w, "\n%s:\n", column)
		for _, f := range r.Failures[column] {
			value := f.Value
			if value == "" {
				value = "(empty)"
			}
			fmt.Fprintf(w, "  row %d  %s  %s\n", f.Row+1, value, f.Verdict)
		}
	}

	_, err := fmt.Fprintln(w)
	return err
}
