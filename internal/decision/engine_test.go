package decision

import (
	"context"
	"testing"

	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/geofix-project/geofix-core/internal/oracle"
)

func TestEngineDecideAutoFixTier(t *testing.T) {
	e := New(Options{Thresholds: Thresholds{AutoFixMin: 0.80, LLMFixMin: 0.60}})
	err := &model.DetectedError{ID: "e1", Kind: model.ErrorInvalidGeometry}
	s := e.Decide(context.Background(), err, nil, false)
	if s.Tier != model.TierRule || s.Kind != model.FixMakeValid {
		t.Fatalf("expected rule-tier make_valid, got %+v", s)
	}
}

type stubOracle struct {
	rec *oracle.Recommendation
	err error
}

func (s stubOracle) Reason(context.Context, *model.DetectedError, map[string]model.FeatureMetadata, *model.FixStrategy) (*oracle.Recommendation, error) {
	return s.rec, s.err
}

func TestEngineDecideFallsToOracle(t *testing.T) {
	e := New(Options{
		Thresholds: Thresholds{AutoFixMin: 0.80, LLMFixMin: 0.60},
		Oracle: stubOracle{rec: &oracle.Recommendation{
			FixKind:    model.FixMerge,
			Confidence: 0.7,
			Rationale:  "oracle says merge",
		}},
	})
	err := &model.DetectedError{ID: "e1", Kind: model.ErrorLowCompactness, Properties: map[string]float64{"compactness": 0.5}}
	s := e.Decide(context.Background(), err, nil, false)
	if s.Tier != model.TierOracle || s.Kind != model.FixMerge {
		t.Fatalf("expected oracle-tier merge, got %+v", s)
	}
}

func TestEngineDecideFallsToHumanReview(t *testing.T) {
	e := New(Options{Thresholds: Thresholds{AutoFixMin: 0.80, LLMFixMin: 0.60}})
	err := &model.DetectedError{ID: "e1", Kind: model.ErrorLowCompactness, Properties: map[string]float64{"compactness": 0.5}}
	s := e.Decide(context.Background(), err, nil, false)
	if s.Tier != model.TierHuman || s.Kind != model.FixHumanReview {
		t.Fatalf("expected human review fallback, got %+v", s)
	}
}

type countingOracle struct {
	calls int
	rec   *oracle.Recommendation
}

func (c *countingOracle) Reason(context.Context, *model.DetectedError, map[string]model.FeatureMetadata, *model.FixStrategy) (*oracle.Recommendation, error) {
	c.calls++
	return c.rec, nil
}

func TestEngineDecideRulesOnlySkipsOracle(t *testing.T) {
	co := &countingOracle{rec: &oracle.Recommendation{FixKind: model.FixMerge, Confidence: 0.9}}
	e := New(Options{
		Thresholds: Thresholds{AutoFixMin: 0.80, LLMFixMin: 0.60},
		Oracle:     co,
	})
	err := &model.DetectedError{ID: "e1", Kind: model.ErrorLowCompactness, Properties: map[string]float64{"compactness": 0.5}}
	s := e.Decide(context.Background(), err, nil, true)
	if co.calls != 0 {
		t.Fatal("oracle should not be consulted when rules_only is true")
	}
	if s.Tier != model.TierHuman {
		t.Fatalf("expected human review when rules_only skips the oracle, got %+v", s)
	}
}

func TestEngineDecideBatchPreservesOrder(t *testing.T) {
	e := New(Options{Thresholds: Thresholds{AutoFixMin: 0.80, LLMFixMin: 0.60}})
	errs := []*model.DetectedError{
		{ID: "e1", Kind: model.ErrorInvalidGeometry},
		{ID: "e2", Kind: model.ErrorEmptyGeometry},
	}
	out := e.DecideBatch(context.Background(), errs, nil)
	if len(out) != 2 || out[0].Error.ID != "e1" || out[1].Error.ID != "e2" {
		t.Fatalf("expected order preserved, got %+v", out)
	}
}
