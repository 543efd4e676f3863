package decision

import (
	"context"
	"log/slog"

	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/geofix-project/geofix-core/internal/oracle"
)

// Thresholds carries the two confidence cutoffs that gate Tier 1 and
// Tier 2 from §6's configuration keys.
type Thresholds struct {
	AutoFixMin float64
	LLMFixMin  float64
}

// Engine is the three-tier decision system: Rules → Oracle → Human review.
type Engine struct {
	rules      *RuleSet
	oracle     oracle.Oracle
	thresholds Thresholds
	logger     *slog.Logger
}

// Options configures a new Engine. A nil RuleSet falls back to
// BuildDefaultRuleSet; a nil Oracle falls back to oracle.Null{}.
type Options struct {
	Rules      *RuleSet
	Oracle     oracle.Oracle
	Thresholds Thresholds
	Logger     *slog.Logger
}

// New builds an Engine from the given options.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rules := opts.Rules
	if rules == nil {
		rules = BuildDefaultRuleSet(logger)
	}
	o := opts.Oracle
	if o == nil {
		o = oracle.Null{}
	}
	return &Engine{rules: rules, oracle: o, thresholds: opts.Thresholds, logger: logger}
}

// Decide routes a single error through the three tiers. It always returns
// a non-nil strategy. If rulesOnly is true, Tier 2 (oracle) is skipped.
func (e *Engine) Decide(ctx context.Context, err *model.DetectedError, meta map[string]model.FeatureMetadata, rulesOnly bool) *model.FixStrategy {
	ruleStrategy := e.rules.Evaluate(err, meta)
	if ruleStrategy != nil && ruleStrategy.Confidence >= e.thresholds.AutoFixMin {
		e.logger.Info("tier1 auto-fix", "fix_kind", ruleStrategy.Kind, "error_id", err.ID, "confidence", ruleStrategy.Confidence)
		return ruleStrategy
	}

	var oracleStrategy *model.FixStrategy
	if !rulesOnly {
		rec, oerr := e.oracle.Reason(ctx, err, meta, ruleStrategy)
		if oerr != nil {
			e.logger.Warn("tier2 oracle reasoning failed", "error_id", err.ID, "err", oerr)
		} else if rec != nil {
			candidate := recommendationToStrategy(err, rec)
			if candidate != nil && candidate.Confidence >= e.thresholds.LLMFixMin {
				e.logger.Info("tier2 oracle fix", "fix_kind", candidate.Kind, "error_id", err.ID, "confidence", candidate.Confidence)
				oracleStrategy = candidate
				return oracleStrategy
			}
		}
	}

	best := ruleStrategy
	if best == nil {
		best = oracleStrategy
	}
	confidence := 0.0
	rationale := "no rule or oracle recommendation available"
	if best != nil {
		confidence = best.Confidence
		rationale = best.Rationale + " — confidence too low for auto-fix"
	}
	e.logger.Info("tier3 human review", "error_id", err.ID, "best_confidence", confidence)
	return &model.FixStrategy{
		Error:      err,
		Kind:       model.FixHumanReview,
		Tier:       model.TierHuman,
		Confidence: confidence,
		Rationale:  rationale,
	}
}

// DecideBatch maps Decide over an ordered error list, preserving order.
func (e *Engine) DecideBatch(ctx context.Context, errs []*model.DetectedError, meta map[string]model.FeatureMetadata) []*model.FixStrategy {
	out := make([]*model.FixStrategy, len(errs))
	for i, err := range errs {
		out[i] = e.Decide(ctx, err, meta, false)
	}
	return out
}

func recommendationToStrategy(err *model.DetectedError, rec *oracle.Recommendation) *model.FixStrategy {
	if rec == nil || !model.ValidFixKind(rec.FixKind) {
		return nil
	}
	return &model.FixStrategy{
		Error:      err,
		Kind:       rec.FixKind,
		Tier:       model.TierOracle,
		Confidence: rec.Confidence,
		Parameters: rec.Parameters,
		Rationale:  rec.Rationale,
	}
}
