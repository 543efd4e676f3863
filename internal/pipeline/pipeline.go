// Package pipeline wires the detector, decision engine, fix registry,
// validator, and audit log into the single entry point spec.md §5
// describes: a pure function of (feature set, configuration, oracle
// endpoint, audit log handle) to (updated feature set, list of fix
// results).
//
// It is structurally grounded on the teacher's
// internal/pipeline.Generator/internal/worker.Pool: an options struct
// with a *slog.Logger field defaulting to slog.Default(), and bounded
// worker fan-out — here errgroup.Group replaces the teacher's hand-rolled
// channel pool for the decide-call fan-out; fixes are applied serially.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geofix-project/geofix-core/internal/audit"
	"github.com/geofix-project/geofix-core/internal/config"
	"github.com/geofix-project/geofix-core/internal/decision"
	"github.com/geofix-project/geofix-core/internal/detect"
	"github.com/geofix-project/geofix-core/internal/fixes"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/geofix-project/geofix-core/internal/oracle"
	"github.com/geofix-project/geofix-core/internal/validate"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
)

// Options configures a Pipeline. Any nil field falls back to the same
// default its owning package would pick on its own (BuildDefaultRuleSet,
// BuildDefaultRegistry, oracle.Null{}, slog.Default()).
type Options struct {
	Config      config.Config
	Rules       *decision.RuleSet
	Oracle      oracle.Oracle
	Registry    *fixes.Registry
	Audit       *audit.Logger
	Logger      *slog.Logger
	RulesOnly   bool // skip Tier 2 (oracle) entirely, for offline/dry-run use
	Concurrency int  // bounded fan-out for Tier-2 decide calls; <=0 defaults to 4
}

// Pipeline is the composed detect -> decide -> fix -> validate -> audit
// orchestrator. One Pipeline can run many invocations; it holds no
// per-invocation state.
type Pipeline struct {
	detector    *detect.Detector
	engine      *decision.Engine
	registry    *fixes.Registry
	validator   *validate.Validator
	auditLogger *audit.Logger
	logger      *slog.Logger
	rulesOnly   bool
	concurrency int
}

// New builds a Pipeline from Options.
func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = fixes.BuildDefaultRegistry(logger)
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Pipeline{
		detector: detect.New(opts.Config.Geometry),
		engine: decision.New(decision.Options{
			Rules:  opts.Rules,
			Oracle: opts.Oracle,
			Thresholds: decision.Thresholds{
				AutoFixMin: opts.Config.Decision.AutoFixMin,
				LLMFixMin:  opts.Config.Decision.LLMFixMin,
			},
			Logger: logger,
		}),
		registry: registry,
		validator: validate.New(validate.Thresholds{
			MinAreaM2:          opts.Config.Validator.MinAreaM2,
			MaxAreaRatioChange: opts.Config.Validator.MaxAreaRatioChange,
		}),
		auditLogger: opts.Audit,
		logger:      logger,
		rulesOnly:   opts.RulesOnly,
		concurrency: concurrency,
	}
}

// FixOutcome records what happened for one decided strategy: the strategy
// itself, the fix result (nil for human_review, which never runs an
// Operation), the audit action recorded, and which feature it was applied
// against.
type FixOutcome struct {
	Strategy  *model.FixStrategy
	Result    *model.FixResult
	Action    model.AuditAction
	FeatureID string
}

// Result is a pipeline invocation's output: the updated feature set (with
// deleted features removed and fixed features carrying their new
// geometry), the full ordered error list the detector found, and one
// FixOutcome per error in the same order.
type Result struct {
	Features   []model.Feature
	Errors     []model.DetectedError
	FixResults []FixOutcome
}

// Run executes one full pipeline invocation. Detection runs once over the
// input feature set; every detected error is then decided, and each is
// fixed where possible in the detector's emission order. Per §5, callers
// may cancel between any two errors (checked once per loop iteration,
// before applying the next error) but never between a fix's apply and its audit
// write — applyOne does both without an intervening ctx check.
func (p *Pipeline) Run(ctx context.Context, features []model.Feature, roads []orb.Geometry, boundary orb.Geometry) (Result, error) {
	meta := make(map[string]model.FeatureMetadata, len(features))
	byID := make(map[string]model.Feature, len(features))
	order := make([]string, 0, len(features))
	for _, f := range features {
		meta[f.ID] = f.Metadata
		byID[f.ID] = f
		order = append(order, f.ID)
	}

	detected, err := p.detector.Detect(detect.Input{Features: features, Roads: roads, Boundary: boundary})
	if err != nil {
		return Result{}, fmt.Errorf("detect: %w", err)
	}

	strategies, err := p.decideAll(ctx, detected, meta)
	if err != nil {
		return Result{}, fmt.Errorf("decide: %w", err)
	}

	outcomes := make([]FixOutcome, 0, len(strategies))
	for i, strategy := range strategies {
		if cErr := ctx.Err(); cErr != nil {
			return Result{
				Features:   snapshotFeatures(byID, order),
				Errors:     detected[:i],
				FixResults: outcomes,
			}, fmt.Errorf("pipeline cancelled after %d of %d errors: %w", i, len(strategies), cErr)
		}
		outcome, err := p.applyOne(strategy, byID, boundary)
		outcomes = append(outcomes, outcome)
		if err != nil {
			// §7 AuditError: a durable write failure is fatal to the whole
			// invocation. byID/outcomes already reflect this fix's applied
			// mutation, so the caller must not be handed a clean result —
			// surface it instead of letting an unaudited fix look committed.
			return Result{
				Features:   snapshotFeatures(byID, order),
				Errors:     detected[:i+1],
				FixResults: outcomes,
			}, fmt.Errorf("audit write failed for feature %q after %d of %d errors: %w", outcome.FeatureID, i, len(strategies), err)
		}
	}

	return Result{
		Features:   snapshotFeatures(byID, order),
		Errors:     detected,
		FixResults: outcomes,
	}, nil
}

// decideAll runs Decide for every error, fanned out across a bounded
// errgroup so Tier-2 oracle network calls overlap. Results are collected
// into a slice indexed by the detector's emission order, so the order in
// which strategies are later applied and audited always matches that
// emission order regardless of which decide call happens to finish first
// — only the decision work itself, not its observable ordering, runs
// concurrently.
func (p *Pipeline) decideAll(ctx context.Context, detected []model.DetectedError, meta map[string]model.FeatureMetadata) ([]*model.FixStrategy, error) {
	strategies := make([]*model.FixStrategy, len(detected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range detected {
		i := i
		g.Go(func() error {
			strategies[i] = p.engine.Decide(gctx, &detected[i], meta, p.rulesOnly)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return strategies, nil
}

// applyOne resolves a strategy's parameters, runs its fix operation (if
// any), updates the in-memory feature set, and writes the audit record —
// all before returning, so a cancellation observed by the caller can never
// land between the apply and the audit write. A non-nil error means the
// audit write itself failed (§7 AuditError): the returned FixOutcome still
// reflects whatever mutation was already made to byID, and the caller
// (Run) must treat that error as fatal rather than let the mutation stand
// unaudited.
func (p *Pipeline) applyOne(strategy *model.FixStrategy, byID map[string]model.Feature, boundary orb.Geometry) (FixOutcome, error) {
	featureID := targetFeatureID(strategy)

	op, registered := p.registry.Get(strategy.Kind)
	if !registered {
		// human_review (never registered) and any unrecognized kind are
		// recorded as pending review: no geometry change, no rollback.
		err := p.logAudit(&model.FixResult{Strategy: strategy, Success: false, Timestamp: time.Now().UTC()}, featureID, model.ActionPendingReview)
		return FixOutcome{Strategy: strategy, Action: model.ActionPendingReview, FeatureID: featureID}, err
	}

	target, exists := byID[featureID]
	if !exists {
		err := p.logAudit(&model.FixResult{Strategy: strategy, Success: false, Timestamp: time.Now().UTC()}, featureID, model.ActionSkipped)
		return FixOutcome{Strategy: strategy, Action: model.ActionSkipped, FeatureID: featureID}, err
	}

	resolvedParams := resolveParameters(strategy, byID, boundary)
	applied := *strategy
	errCopy := *strategy.Error
	errCopy.Geometry = target.Geometry
	applied.Error = &errCopy
	applied.Parameters = resolvedParams

	result := fixes.Apply(op, &applied)
	result.Strategy = strategy // report the caller's strategy, not the per-feature clone

	var action model.AuditAction
	switch {
	case result.Success && strategy.Kind == model.FixDelete:
		delete(byID, featureID)
		action = model.ActionApplied
	case result.Success:
		updated := target
		updated.Geometry = result.FixedGeometry
		validation := p.validator.ValidateFix(result.OriginalGeometry, result.FixedGeometry, strategy.Kind == model.FixDelete)
		if !validation.Passed {
			action = model.ActionRolledBack
			result.Success = false
			result.ValidationPassed = false
		} else {
			byID[featureID] = updated
			action = model.ActionApplied
		}
	default:
		action = model.ActionRolledBack
	}

	err := p.logAudit(result, featureID, action)
	return FixOutcome{Strategy: strategy, Result: result, Action: action, FeatureID: featureID}, err
}

// logAudit writes one audit record. A failure here is durable-storage
// failure (§7 AuditError), not a warning: the caller already mutated the
// in-memory feature set for this fix, so an unrecorded write would let an
// applied fix go unaudited. Returning the error lets Run abort the
// invocation instead of swallowing it.
func (p *Pipeline) logAudit(result *model.FixResult, featureID string, action model.AuditAction) error {
	if p.auditLogger == nil {
		return nil
	}
	if featureID == "" {
		featureID = "unknown"
	}
	if _, err := p.auditLogger.LogFix(result, featureID, action); err != nil {
		return fmt.Errorf("write audit record (feature %q, action %s): %w", featureID, action, err)
	}
	return nil
}

func snapshotFeatures(byID map[string]model.Feature, order []string) []model.Feature {
	out := make([]model.Feature, 0, len(order))
	for _, id := range order {
		if f, ok := byID[id]; ok {
			out = append(out, f)
		}
	}
	return out
}
