package validation

import "cmmc/validator/pkg/vocabulary"

// Input columns checked by network validators.
const (
	ColumnIdentifier = "input_usi"
	ColumnStructure  = "input_structure"
)

// OutputFileName is the conventional name of the annotated table.
const OutputFileName = "validated_usis_smiles_metadata.tsv"

// Check selects the validator applied to a column.
type Check int

const (
	CheckIdentifier Check = iota
	CheckStructure
	CheckField
)

func (c Check) String() string {
	switch c {
	case CheckIdentifier:
		return "identifier"
	case CheckStructure:
		return "structure"
	case CheckField:
		return "field"
	}
	return "unknown"
}

// Column describes one validated input column and the output column its
// verdicts are written to.
type Column struct {
	Source     string `json:"source"`
	Output     string `json:"output"`
	Check      Check  `json:"-"`
	MultiValue bool   `json:"multi_value,omitempty"`
}

// DefaultColumns returns the validated columns in output order.
func DefaultColumns() []Column {
	return []Column{
		{Source: ColumnIdentifier, Output: "usi_validation_details", Check: CheckIdentifier},
		{Source: ColumnStructure, Output: "smiles_validation", Check: CheckStructure},
		{Source: vocabulary.FieldMoleculeOrigin, Output: "molecule_origin_validation", Check: CheckField, MultiValue: true},
		{Source: vocabulary.FieldConfirmation, Output: "confirmation_validation", Check: CheckField},
		{Source: vocabulary.FieldSource, Output: "source_validation", Check: CheckField},
	}
}
