package decision

import (
	"testing"

	"github.com/geofix-project/geofix-core/internal/model"
)

func TestExactDuplicateRule(t *testing.T) {
	err := &model.DetectedError{
		Kind:             model.ErrorDuplicateGeometry,
		AffectedFeatures: []string{"a", "b"},
	}
	s := ruleExactDuplicate(err, nil)
	if s == nil || s.Kind != model.FixDelete || s.Confidence != 0.95 {
		t.Fatalf("unexpected strategy: %+v", s)
	}
	if s.Parameters["delete_feature"] != "b" {
		t.Fatalf("expected delete_feature=b, got %v", s.Parameters["delete_feature"])
	}
}

func TestDuplicateSameSourceDeletesLowerConfidence(t *testing.T) {
	err := &model.DetectedError{
		Kind:             model.ErrorBuildingOverlap,
		AffectedFeatures: []string{"a", "b"},
		Properties:       map[string]float64{"overlap_ratio": 0.99},
	}
	meta := map[string]model.FeatureMetadata{
		"a": {Source: "osm", Confidence: 0.9},
		"b": {Source: "osm", Confidence: 0.5},
	}
	s := ruleDuplicateSameSource(err, meta)
	if s == nil || s.Parameters["delete_feature"] != "b" {
		t.Fatalf("expected delete_feature=b, got %+v", s)
	}
}

func TestPartialOverlapAccuracyEscalatesBelowGap(t *testing.T) {
	err := &model.DetectedError{
		Kind:             model.ErrorBuildingOverlap,
		AffectedFeatures: []string{"a", "b"},
		Properties:       map[string]float64{"overlap_ratio": 0.5},
	}
	meta := map[string]model.FeatureMetadata{
		"a": {AccuracyM: 2},
		"b": {AccuracyM: 4},
	}
	if s := rulePartialOverlapAccuracy(err, meta); s != nil {
		t.Fatalf("expected no strategy for small accuracy gap, got %+v", s)
	}
}

func TestPartialOverlapAccuracyFiresAboveGap(t *testing.T) {
	err := &model.DetectedError{
		Kind:             model.ErrorBuildingOverlap,
		AffectedFeatures: []string{"a", "b"},
		Properties:       map[string]float64{"overlap_ratio": 0.5},
	}
	meta := map[string]model.FeatureMetadata{
		"a": {AccuracyM: 2},
		"b": {AccuracyM: 12},
	}
	s := rulePartialOverlapAccuracy(err, meta)
	if s == nil || s.Kind != model.FixSnap {
		t.Fatalf("expected snap strategy, got %+v", s)
	}
	if s.Parameters["snap_feature"] != "b" {
		t.Fatalf("expected to snap the less accurate feature b, got %v", s.Parameters["snap_feature"])
	}
}

func TestRuleSetEvaluatePicksHighestPriority(t *testing.T) {
	rs := NewRuleSet(nil)
	rs.Add("always_b", 100, func(*model.DetectedError, map[string]model.FeatureMetadata) *model.FixStrategy {
		return &model.FixStrategy{Kind: model.FixFlag, Rationale: "b"}
	})
	rs.Add("always_a", 10, func(*model.DetectedError, map[string]model.FeatureMetadata) *model.FixStrategy {
		return &model.FixStrategy{Kind: model.FixDelete, Rationale: "a"}
	})
	s := rs.Evaluate(&model.DetectedError{}, nil)
	if s == nil || s.Rationale != "a" {
		t.Fatalf("expected rule 'always_a' (priority 10) to win, got %+v", s)
	}
}

func TestRuleSetRecoversFromPanic(t *testing.T) {
	rs := NewRuleSet(nil)
	rs.Add("panics", 10, func(*model.DetectedError, map[string]model.FeatureMetadata) *model.FixStrategy {
		panic("boom")
	})
	rs.Add("fallback", 20, func(*model.DetectedError, map[string]model.FeatureMetadata) *model.FixStrategy {
		return &model.FixStrategy{Kind: model.FixFlag, Rationale: "fallback"}
	})
	s := rs.Evaluate(&model.DetectedError{}, nil)
	if s == nil || s.Rationale != "fallback" {
		t.Fatalf("expected panic recovery to fall through to next rule, got %+v", s)
	}
}
