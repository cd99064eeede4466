package validation

import (
	"context"
	"net/http"

	"cmmc/validator/pkg/resolver"
	"cmmc/validator/pkg/retry"
)

// StructureNoData labels an absent structure.
const StructureNoData = "No SMILES"

// StructureValidator checks chemical structure cells with the structure
// conversion service.
type StructureValidator struct {
	resolver resolver.Resolver
	policy   retry.Policy
	memo     *memo
}

// NewStructureValidator creates a validator. Without a Retryable classifier
// only 5xx answers are retried; the default single attempt never retries.
func NewStructureValidator(r resolver.Resolver, policy retry.Policy, cacheSize int) *StructureValidator {
	if policy.Retryable == nil {
		policy.Retryable = func(err error) bool {
			code, ok := resolver.StatusCode(err)
			return ok && code >= http.StatusInternalServerError
		}
	}
	return &StructureValidator{
		resolver: r,
		policy:   policy,
		memo:     newMemo(cacheSize),
	}
}

// Validate checks one cell. A non-200 answer means the structure is invalid.
func (v *StructureValidator) Validate(ctx context.Context, raw *string) Verdict {
	if raw == nil || *raw == "" {
		return NoData(StructureNoData)
	}
	smiles := *raw

	if cached, ok := v.memo.get(smiles); ok {
		return cached
	}

	_, err := v.policy.Do(ctx, func(ctx context.Context, _ int) error {
		return v.resolver.Lookup(ctx, smiles)
	})

	verdict := lookupFailure(err)
	if verdict.Kind == KindNetworkFailure && verdict.StatusCode != 0 {
		verdict = Rejected(verdict.StatusCode)
	}
	v.memo.put(smiles, verdict)
	return verdict
}
