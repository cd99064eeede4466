package validation

import (
	"strings"

	"cmmc/validator/pkg/vocabulary"
)

// FieldValidator checks a controlled field against its vocabulary.
type FieldValidator struct {
	Column     string
	Allowed    vocabulary.Values
	MultiValue bool
}

// Validate checks one cell. An absent or blank value is Missing.
func (v FieldValidator) Validate(raw *string) Verdict {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return Missing()
	}

	if !v.MultiValue {
		value := vocabulary.Normalize(*raw)
		if !v.Allowed.Contains(value) {
			return Invalid("Invalid value - " + value)
		}
		return OK()
	}

	var rejected []string
	for _, part := range strings.Split(*raw, ";") {
		value := vocabulary.Normalize(part)
		if value == "" {
			rejected = append(rejected, "(empty)")
			continue
		}
		if !v.Allowed.Contains(value) {
			rejected = append(rejected, value)
		}
	}
	if len(rejected) > 0 {
		return Invalid("Invalid value(s) - " + strings.Join(rejected, ", "))
	}
	return OK()
}
