package validation

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"cmmc/validator/pkg/resolver"
	"cmmc/validator/pkg/retry"
)

// IdentifierNoData labels an absent spectrum identifier.
const IdentifierNoData = "No USI"

// usiPattern matches mzspec:COLLECTION:RUN:INDEX_TYPE:INDEX with an optional
// trailing interpretation segment that may be empty.
var usiPattern = regexp.MustCompile(`^mzspec:[A-Za-z0-9\-_/. ]+:[A-Za-z0-9\-_/. ]+:[A-Za-z0-9\-_/. ]+(:[A-Za-z0-9\-_/. ]*)?$`)

// ValidIdentifierSyntax reports whether id is a well-formed Universal
// Spectrum Identifier.
func ValidIdentifierSyntax(id string) bool {
	return usiPattern.MatchString(id)
}

// IdentifierValidator checks spectrum identifier cells. A cell may hold
// several identifiers separated by ';'.
type IdentifierValidator struct {
	resolver resolver.Resolver
	policy   retry.Policy
	memo     *memo
}

// NewIdentifierValidator creates a validator that resolves identifiers with
// r under policy. Without a Retryable classifier every status error is
// retried and transport errors are not. cacheSize bounds the per-validator
// memo of settled identifiers; zero disables it.
func NewIdentifierValidator(r resolver.Resolver, policy retry.Policy, cacheSize int) *IdentifierValidator {
	if policy.Retryable == nil {
		policy.Retryable = resolver.IsRetryable
	}
	return &IdentifierValidator{
		resolver: r,
		policy:   policy,
		memo:     newMemo(cacheSize),
	}
}

// Validate checks one cell.
func (v *IdentifierValidator) Validate(ctx context.Context, raw *string) Verdict {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return Verdict{
			Kind:   KindNoData,
			Reason: IdentifierNoData,
			Items:  []Item{{Value: IdentifierNoData, Verdict: OK()}},
		}
	}

	var (
		items   []Item
		seen    = make(map[string]bool)
		failing []string
		invalid bool
	)
	for _, part := range strings.Split(*raw, ";") {
		id := strings.TrimSpace(part)
		if seen[id] {
			continue
		}
		seen[id] = true

		verdict := v.check(ctx, id)
		items = append(items, Item{Value: id, Verdict: verdict})
		if verdict.Failed() {
			failing = append(failing, id)
			invalid = invalid || verdict.Kind == KindInvalid
		}
	}

	switch {
	case len(failing) == 0:
		return Verdict{Kind: KindOK, Items: items}
	case invalid:
		return Verdict{Kind: KindInvalid, Reason: "Failing identifiers - " + strings.Join(failing, ", "), Items: items}
	default:
		return Verdict{Kind: KindNetworkFailure, Reason: "Failing identifiers - " + strings.Join(failing, ", "), Items: items}
	}
}

func (v *IdentifierValidator) check(ctx context.Context, id string) Verdict {
	if !ValidIdentifierSyntax(id) {
		return Invalid("Invalid USI")
	}
	if cached, ok := v.memo.get(id); ok {
		return cached
	}

	verdict := v.resolve(ctx, id)
	v.memo.put(id, verdict)
	return verdict
}

func (v *IdentifierValidator) resolve(ctx context.Context, id string) Verdict {
	_, err := v.policy.Do(ctx, func(ctx context.Context, _ int) error {
		return v.resolver.Lookup(ctx, id)
	})
	return lookupFailure(err)
}

// lookupFailure maps the outcome of a retried lookup to a verdict: a status
// means the service answered, anything else means it could not be reached.
func lookupFailure(err error) Verdict {
	if err == nil {
		return OK()
	}
	if code, ok := resolver.StatusCode(err); ok {
		return Unreachable(code)
	}
	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		err = exhausted.Last
	}
	return TransportFailure(err)
}
