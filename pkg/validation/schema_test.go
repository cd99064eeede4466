package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSchema(t *testing.T) {
	required := []string{"input_usi", "input_structure", "input_source", "input_confirmation"}

	tests := []struct {
		name    string
		actual  []string
		missing []string
	}{
		{
			name:   "all present with extras",
			actual: []string{"extra", "input_confirmation", "input_source", "input_structure", "input_usi"},
		},
		{
			name:    "missing reported in required order",
			actual:  []string{"input_structure", "input_usi"},
			missing: []string{"input_source", "input_confirmation"},
		},
		{
			name:    "case matters",
			actual:  []string{"Input_USI", "input_structure", "input_source", "input_confirmation"},
			missing: []string{"input_usi"},
		},
		{
			name:    "empty header",
			missing: required,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSchema(tt.actual, required)
			if tt.missing == nil {
				assert.NoError(t, err)
				return
			}
			var missingErr *MissingColumnsError
			require.ErrorAs(t, err, &missingErr)
			assert.Equal(t, tt.missing, missingErr.Columns)
			assert.NotEmpty(t, missingErr.Hint())
		})
	}
}
