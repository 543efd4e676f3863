// Package oracle defines the narrow Tier-2 reasoning interface the decision
// engine consults when no rule fires with sufficient confidence. Concrete
// implementations (e.g. internal/oracle/anthropic) live outside this
// package so their client types never leak into the core.
package oracle

import (
	"context"

	"github.com/geofix-project/geofix-core/internal/model"
)

// Recommendation is a Tier-2 fix recommendation. A fix kind outside the
// closed set is equivalent to "no match" and is rejected by the caller.
type Recommendation struct {
	FixKind    model.FixKind
	Confidence float64
	Rationale  string
	Parameters map[string]any
}

// Oracle reasons about a detected error and optionally recommends a fix.
// Returning (nil, nil) means "no recommendation." A non-nil error means the
// call failed (network, timeout, parse failure) and is always non-fatal to
// the caller: the decision engine falls through to human review.
type Oracle interface {
	Reason(ctx context.Context, err *model.DetectedError, meta map[string]model.FeatureMetadata, ruleAttempt *model.FixStrategy) (*Recommendation, error)
}

// Null is a no-op Oracle used when no reasoning tier is configured (the
// fix command picks it under --rules-only or when ANTHROPIC_API_KEY is
// unset). It always returns "no recommendation."
type Null struct{}

func (Null) Reason(context.Context, *model.DetectedError, map[string]model.FeatureMetadata, *model.FixStrategy) (*Recommendation, error) {
	return nil, nil
}
