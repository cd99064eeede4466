package vocabulary

import (
	"io"
	"sort"
	"strings"
	"time"

	"cmmc/validator/pkg/records"
)

// Controlled fields checked against the vocabulary.
const (
	FieldConfirmation   = "input_confirmation"
	FieldMoleculeOrigin = "input_molecule_origin"
	FieldSource         = "input_source"
)

// ControlledFields lists the controlled fields in validation order.
var ControlledFields = []string{FieldMoleculeOrigin, FieldConfirmation, FieldSource}

// Values is a set of normalised accepted values.
type Values map[string]struct{}

// Contains reports whether v, once normalised, is accepted.
func (v Values) Contains(value string) bool {
	_, ok := v[Normalize(value)]
	return ok
}

// Sorted returns the values in lexical order.
func (v Values) Sorted() []string {
	out := make([]string, 0, len(v))
	for value := range v {
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

// Normalize trims and upper-cases a value for comparison.
func Normalize(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// Set is an immutable vocabulary built from a reference table.
type Set struct {
	columns  []string
	allowed  map[string]Values
	source   string
	loadedAt time.Time
}

// New builds a Set from a reference table header and rows.
func New(header []string, rows [][]string) (*Set, error) {
	table, err := records.New(header, rows)
	if err != nil {
		return nil, err
	}
	return FromRecords(table), nil
}

// FromRecords builds a Set from a parsed reference table.
func FromRecords(table *records.RecordSet) *Set {
	s := &Set{
		columns:  table.Columns(),
		allowed:  make(map[string]Values, len(table.Columns())),
		loadedAt: time.Now(),
	}
	for _, col := range s.columns {
		values := make(Values)
		for _, rec := range table.Records() {
			v := rec.Value(col)
			if v == nil {
				continue
			}
			if n := Normalize(*v); n != "" {
				values[n] = struct{}{}
			}
		}
		s.allowed[col] = values
	}
	return s
}

// Load parses a reference table from r.
func Load(r io.Reader) (*Set, error) {
	table, err := records.ReadTSV(r)
	if err != nil {
		return nil, err
	}
	return FromRecords(table), nil
}

// RequiredColumns returns the reference table header in order.
func (s *Set) RequiredColumns() []string {
	return append([]string(nil), s.columns...)
}

// Has reports whether the reference table has a column named field.
func (s *Set) Has(field string) bool {
	_, ok := s.allowed[field]
	return ok
}

// Allowed returns the accepted values for field. Unknown fields yield an
// empty set, which rejects every value.
func (s *Set) Allowed(field string) Values {
	if v, ok := s.allowed[field]; ok {
		return v
	}
	return Values{}
}

// Missing returns the fields absent from the reference table, in order.
func (s *Set) Missing(fields []string) []string {
	var missing []string
	for _, f := range fields {
		if !s.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Sizes returns the number of accepted values per field.
func (s *Set) Sizes(fields []string) map[string]int {
	out := make(map[string]int, len(fields))
	for _, f := range fields {
		out[f] = len(s.Allowed(f))
	}
	return out
}

// Source returns where the Set was loaded from, if known.
func (s *Set) Source() string {
	return s.source
}

// LoadedAt returns when the Set was built.
func (s *Set) LoadedAt() time.Time {
	return s.loadedAt
}
