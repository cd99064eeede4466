package records

import (
	"errors"
	"fmt"
)

// ErrNoHeader is returned when a table has no header row.
var ErrNoHeader = errors.New("table has no header row")

// DuplicateColumnError is returned when a header names the same column twice.
type DuplicateColumnError struct {
	Column string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("duplicate column %q in header", e.Column)
}

// Record is one row of a RecordSet.
type Record struct {
	set   *RecordSet
	index int
	cells []string
}

// Index returns the zero-based position of the record in its set.
func (r Record) Index() int {
	return r.index
}

// Value returns the cell for column, or nil when the column does not exist
// or the cell is empty.
func (r Record) Value(column string) *string {
	i, ok := r.set.index[column]
	if !ok || i >= len(r.cells) || r.cells[i] == "" {
		return nil
	}
	v := r.cells[i]
	return &v
}

// Cells returns a copy of the record's cells in header order. Rows shorter
// than the header are padded with empty strings.
func (r Record) Cells() []string {
	out := make([]string, len(r.set.columns))
	copy(out, r.cells)
	return out
}

// RecordSet is an ordered collection of records sharing one header.
type RecordSet struct {
	columns []string
	index   map[string]int
	records []Record
}

// New builds a RecordSet from a header and its rows. Rows longer than the
// header are rejected; shorter rows are padded with absent values.
func New(columns []string, rows [][]string) (*RecordSet, error) {
	if len(columns) == 0 {
		return nil, ErrNoHeader
	}

	set := &RecordSet{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
		records: make([]Record, 0, len(rows)),
	}
	for i, col := range set.columns {
		if _, dup := set.index[col]; dup {
			return nil, &DuplicateColumnError{Column: col}
		}
		set.index[col] = i
	}

	for i, row := range rows {
		if len(row) > len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, header has %d columns", i+1, len(row), len(columns))
		}
		set.records = append(set.records, Record{
			set:   set,
			index: i,
			cells: append([]string(nil), row...),
		})
	}

	return set, nil
}

// Columns returns a copy of the header.
func (s *RecordSet) Columns() []string {
	return append([]string(nil), s.columns...)
}

// HasColumn reports whether the header contains column.
func (s *RecordSet) HasColumn(column string) bool {
	_, ok := s.index[column]
	return ok
}

// Len returns the number of records.
func (s *RecordSet) Len() int {
	return len(s.records)
}

// Record returns the i-th record.
func (s *RecordSet) Record(i int) Record {
	return s.records[i]
}

// Records returns the records in their original order.
func (s *RecordSet) Records() []Record {
	return append([]Record(nil), s.records...)
}
