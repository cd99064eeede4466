package validation

import (
	"io"
	"time"

	"cmmc/validator/pkg/records"
)

// Result holds the verdicts of one run alongside the validated records.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	records  *records.RecordSet
	columns  []Column
	verdicts [][]Verdict
}

// ColumnSummary counts verdicts for one validated column.
type ColumnSummary struct {
	Column string         `json:"column"`
	Source string         `json:"source"`
	Passed int            `json:"passed"`
	Failed int            `json:"failed"`
	Kinds  map[string]int `json:"kinds"`
}

// Summary aggregates a Result.
type Summary struct {
	Rows       int             `json:"rows"`
	FailedRows int             `json:"failed_rows"`
	Columns    []ColumnSummary `json:"columns"`
}

// Records returns the validated record set.
func (r *Result) Records() *records.RecordSet {
	return r.records
}

// Columns returns the validated columns in output order.
func (r *Result) Columns() []Column {
	return append([]Column(nil), r.columns...)
}

// Len returns the number of records.
func (r *Result) Len() int {
	return len(r.verdicts)
}

// Row returns the verdicts of record i in column order.
func (r *Result) Row(i int) []Verdict {
	return append([]Verdict(nil), r.verdicts[i]...)
}

// Verdict returns the verdict of record i for an output column.
func (r *Result) Verdict(i int, output string) (Verdict, bool) {
	j := r.columnIndex(output)
	if j < 0 || i < 0 || i >= len(r.verdicts) {
		return Verdict{}, false
	}
	return r.verdicts[i][j], true
}

func (r *Result) columnIndex(output string) int {
	for j, col := range r.columns {
		if col.Output == output {
			return j
		}
	}
	return -1
}

// Failures returns the indexes of records whose verdict for output failed,
// in original order.
func (r *Result) Failures(output string) []int {
	return r.partition(output, true)
}

// Passed returns the indexes of records whose verdict for output did not
// fail, in original order.
func (r *Result) Passed(output string) []int {
	return r.partition(output, false)
}

func (r *Result) partition(output string, failed bool) []int {
	j := r.columnIndex(output)
	if j < 0 {
		return nil
	}
	out := []int{}
	for i, row := range r.verdicts {
		if row[j].Failed() == failed {
			out = append(out, i)
		}
	}
	return out
}

// Summary counts verdicts per column and rows with at least one failure.
func (r *Result) Summary() Summary {
	s := Summary{Rows: len(r.verdicts)}
	for _, col := range r.columns {
		s.Columns = append(s.Columns, ColumnSummary{
			Column: col.Output,
			Source: col.Source,
			Kinds:  make(map[string]int),
		})
	}

	for _, row := range r.verdicts {
		rowFailed := false
		for j, v := range row {
			cs := &s.Columns[j]
			cs.Kinds[v.Kind.String()]++
			if v.Failed() {
				cs.Failed++
				rowFailed = true
			} else {
				cs.Passed++
			}
		}
		if rowFailed {
			s.FailedRows++
		}
	}
	return s
}

// AllPassed reports whether no verdict failed.
func (r *Result) AllPassed() bool {
	return r.Summary().FailedRows == 0
}

// Header returns the source header followed by the output columns. Source
// columns named like an output column are replaced, so an annotated table can
// be validated again.
func (r *Result) Header() []string {
	source := r.records.Columns()
	var header []string
	for _, k := range r.sourceIndexes() {
		header = append(header, source[k])
	}
	for _, col := range r.columns {
		header = append(header, col.Output)
	}
	return header
}

// Rows returns the annotated rows: source cells followed by rendered
// verdicts.
func (r *Result) Rows() [][]string {
	keep := r.sourceIndexes()
	rows := make([][]string, len(r.verdicts))
	for i, verdicts := range r.verdicts {
		cells := r.records.Record(i).Cells()
		row := make([]string, 0, len(keep)+len(verdicts))
		for _, k := range keep {
			row = append(row, cells[k])
		}
		for _, v := range verdicts {
			row = append(row, v.String())
		}
		rows[i] = row
	}
	return rows
}

func (r *Result) sourceIndexes() []int {
	outputs := make(map[string]bool, len(r.columns))
	for _, col := range r.columns {
		outputs[col.Output] = true
	}
	var keep []int
	for k, name := range r.records.Columns() {
		if !outputs[name] {
			keep = append(keep, k)
		}
	}
	return keep
}

// WriteTSV writes the annotated table.
func (r *Result) WriteTSV(w io.Writer) error {
	return records.WriteTSV(w, r.Header(), r.Rows())
}
