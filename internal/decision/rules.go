package decision

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/geofix-project/geofix-core/internal/model"
)

// RuleFunc is a pure function from an error plus feature metadata to an
// optional strategy. Rules must never panic; RuleSet.Evaluate recovers any
// panic and treats it as "no match."
type RuleFunc func(err *model.DetectedError, meta map[string]model.FeatureMetadata) *model.FixStrategy

// Rule is a named, prioritized rule. Lower priority values run first.
type Rule struct {
	Name     string
	Priority int
	Func     RuleFunc
}

// RuleSet is an ordered collection of rules, always kept sorted by
// ascending priority.
type RuleSet struct {
	rules  []Rule
	logger *slog.Logger
}

// NewRuleSet returns an empty rule set. If logger is nil, slog.Default()
// is used.
func NewRuleSet(logger *slog.Logger) *RuleSet {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleSet{logger: logger}
}

// Add registers a rule and re-sorts the set by priority.
func (rs *RuleSet) Add(name string, priority int, fn RuleFunc) {
	rs.rules = append(rs.rules, Rule{Name: name, Priority: priority, Func: fn})
	sort.SliceStable(rs.rules, func(i, j int) bool { return rs.rules[i].Priority < rs.rules[j].Priority })
}

// Evaluate tries each rule in priority order and returns the first
// non-nil strategy produced. A panicking rule is logged and treated as
// "no match," per the RuleError recovery contract.
func (rs *RuleSet) Evaluate(err *model.DetectedError, meta map[string]model.FeatureMetadata) (strategy *model.FixStrategy) {
	for _, r := range rs.rules {
		s := rs.tryRule(r, err, meta)
		if s != nil {
			rs.logger.Info("rule fired", "rule", r.Name, "error_id", err.ID, "fix_kind", s.Kind, "confidence", s.Confidence)
			return s
		}
	}
	return nil
}

func (rs *RuleSet) tryRule(r Rule, err *model.DetectedError, meta map[string]model.FeatureMetadata) (result *model.FixStrategy) {
	defer func() {
		if rec := recover(); rec != nil {
			rs.logger.Warn("rule panicked", "rule", r.Name, "error_id", err.ID, "panic", rec)
			result = nil
		}
	}()
	return r.Func(err, meta)
}

func getMeta(meta map[string]model.FeatureMetadata, fid string) model.FeatureMetadata {
	if m, ok := meta[fid]; ok {
		return m
	}
	return model.DefaultFeatureMetadata(fid)
}

// BuildDefaultRuleSet returns the fourteen built-in rules at their
// specified priorities.
func BuildDefaultRuleSet(logger *slog.Logger) *RuleSet {
	rs := NewRuleSet(logger)
	rs.Add("exact_duplicate", 10, ruleExactDuplicate)
	rs.Add("duplicate_same_source", 20, ruleDuplicateSameSource)
	rs.Add("duplicate_diff_source", 30, ruleDuplicateDiffSource)
	rs.Add("invalid_geometry", 40, ruleInvalidGeometry)
	rs.Add("sliver_overlap", 50, ruleSliverOverlap)
	rs.Add("partial_overlap_accuracy", 60, rulePartialOverlapAccuracy)
	rs.Add("small_road_conflict", 70, ruleSmallRoadConflict)
	rs.Add("tiny_building", 80, ruleTinyBuilding)
	rs.Add("low_compactness", 90, ruleLowCompactness)
	rs.Add("boundary_clip", 100, ruleBoundaryClip)
	rs.Add("overlap_by_class", 200, ruleOverlapByClass)
	rs.Add("road_conflict_fallback", 210, ruleRoadConflictFallback)
	rs.Add("outside_boundary", 220, ruleOutsideBoundary)
	rs.Add("boundary_overlap_fallback", 230, ruleBoundaryOverlapFallback)
	return rs
}

// ─── Built-in rules ──────────────────────────────────────────────────────

func ruleExactDuplicate(err *model.DetectedError, meta map[string]model.FeatureMetadata) *model.FixStrategy {
	if err.Kind != model.ErrorDuplicateGeometry {
		return nil
	}
	if len(err.AffectedFeatures) < 2 {
		return nil
	}
	return &model.FixStrategy{
		Error:      err,
		Kind:       model.FixDelete,
		Tier:       model.TierRule,
		Confidence: 0.95,
		Parameters: map[string]any{"delete_feature": err.AffectedFeatures[1]},
		Rationale:  "exact duplicate geometry (WKT match) — deleting duplicate",
	}
}

func ruleDuplicateSameSource(err *model.DetectedError, meta map[string]model.FeatureMetadata) *model.FixStrategy {
	if err.Kind != model.ErrorBuildingOverlap && err.Kind != model.ErrorDuplicateGeometry {
		return nil
	}
	ratio := err.Prop("overlap_ratio")
	if ratio < 0.98 || len(err.AffectedFeatures) < 2 {
		return nil
	}
	a, b := err.AffectedFeatures[0], err.AffectedFeatures[1]
	ma, mb := getMeta(meta, a), getMeta(meta, b)
	if ma.Source != mb.Source {
		return nil
	}
	deleteID := b
	if ma.Confidence < mb.Confidence {
		deleteID = a
	}
	return &model.FixStrategy{
		Error:      err,
		Kind:       model.FixDelete,
		Tier:       model.TierRule,
		Confidence: 0.95,
		Parameters: map[string]any{"delete_feature": deleteID},
		Rationale:  fmt.Sprintf("duplicate (ratio=%.2f) from same source %q", ratio, ma.Source),
	}
}

func ruleDuplicateDiffSource(err *model.DetectedError, meta map[string]model.FeatureMetadata) *model.FixStrategy {
	if err.Kind != model.ErrorBuildingOverlap && err.Kind != model.ErrorDuplicateGeometry {
		return nil
	}
	ratio := err.Prop("overlap_ratio")
	if ratio < 0.98 || len(err.AffectedFeatures) < 2 {
		return nil
	}
	a, b := err.AffectedFeatures[0], err.AffectedFeatures[1]
	ma, mb := getMeta(meta, a), getMeta(meta, b)
	if ma.Source == mb.Source {
		return nil
	}
	keep, del := a, b
	if ma.AccuracyM > mb.AccuracyM {
		keep, del = b, a
	}
	minAcc := ma.AccuracyM
	if mb.AccuracyM < minAcc {
		minAcc = mb.AccuracyM
	}
	return &model.FixStrategy{
		Error:      err,
		Kind:       model.FixDelete,
		Tier:       model.TierRule,
		Confidence: 0.85,
		Parameters: map[string]any{"delete_feature": del, "keep_feature": keep},
		Rationale: fmt.Sprintf(
			"duplicate from different sources (%q vs %q), keeping higher accuracy (%.1fm)",
			ma.Source, mb.Source, minAcc,
		),
	}
}

func rulePartialOverlapAccuracy(err *model.DetectedError, meta map[string]model.FeatureMetadata) *model.FixStrategy {
	if err.Kind != model.ErrorBuildingOverlap {
		return nil
	}
	ratio := err.Prop("overlap_ratio")
	if ratio >= 0.98 || ratio < 0.30 || len(err.AffectedFeatures) < 2 {
		return nil
	}
	a, b := err.AffectedFeatures[0], err.AffectedFeatures[1]
	ma, mb := getMeta(meta, a), getMeta(meta, b)
	gap := AccuracyDifference(ma, mb)
	if gap <= 5.0 {
		return nil
	}
	conf := CombinedConfidence(ConfidenceFromOverlapRatio(ratio), ConfidenceFromAccuracyGap(gap))
	snapFeature, reference := a, b
	if ma.AccuracyM <= mb.AccuracyM {
		snapFeature, reference = b, a
	}
	return &model.FixStrategy{
		Error:      err,
		Kind:       model.FixSnap,
		Tier:       model.TierRule,
		Confidence: conf,
		Parameters: map[string]any{"snap_feature": snapFeature, "reference_feature": reference},
		Rationale: fmt.Sprintf(
			"partial overlap (ratio=%.2f) with accuracy gap %.1fm — snapping less accurate feature",
			ratio, gap,
		),
	}
}

func ruleSliverOverlap(err *model.DetectedError, meta map[string]model.FeatureMetadata) *model.FixStrategy {
	if err.Kind != model.ErrorBuildingOverlap {
		return nil
	}
	if err.Tag("overlap_class") != "sliver" {
		return nil
	}
	area := err.Prop("inter_area_m2")
	if area >= 1.0 {
		return nil
	}
	return &model.FixStrategy{
		Error:      err,
		Kind:       model.FixTrim,
		Tier:       model.TierRule,
		Confidence: 0.90,
		Rationale:  fmt.Sprintf("sliver overlap (%.2f m²) — auto-trimming", area),
	}
}

func ruleSmallRoadConflict(err *model.DetectedError, meta map[string]model.FeatureMetadata) *model.FixStrategy {
	if err.Kind != model.ErrorBuildingOnRoad {
		return nil
	}
	area := err.Prop("inter_area_m2")
	if area >= 2.0 {
		return nil
	}
	return &model.FixStrategy{
		Error:      err,
		Kind:       model.FixNudge,
		Tier:       model.TierRule,
		Confidence: 0.85,
		Parameters: map[string]any{"min_distance_m": 3.0},
		Rationale:  fmt.Sprintf("small road conflict (%.2f m²) — nudging building off road", area),
	}
}

func ruleInvalidGeometry(err *model.DetectedError, meta map[string]model.FeatureMetadata) *model.FixStrategy {
	if err.Kind != model.ErrorInvalidGeometry {
		return nil
	}
	return &model.FixStrategy{
		Error:      err,
		Kind:       model.FixMakeValid,
		Tier:       model.TierRule,
		Confidence: 0.95,
		Rationale:  "self-intersecting / invalid geometry — applying make_valid",
	}
}

func ruleTinyBuilding(err *model.DetectedError, meta map[string]model.FeatureMetadata) *model.FixStrategy {
	if err.Kind != model.ErrorUnreasonableArea {
		return nil
	}
	area := err.Prop("area_m2")
	if area >= 1.0 {
		return nil
	}
	return &model.FixStrategy{
		Error:      err,
		Kind:       model.FixDelete,
		Tier:       model.TierRule,
		Confidence: 0.70,
		Rationale:  fmt.Sprintf("unreasonably small building (%.2f m²) — flagged for deletion", area),
	}
}

func ruleLowCompactness(err *model.DetectedError, meta map[string]model.FeatureMetadata) *model.FixStrategy {
	if err.Kind != model.ErrorLowCompactness {
		return nil
	}
	compactness, hasProp := err.Properties["compactness"]
	if !hasProp {
		compactness = 1.0
	}
	if compactness >= 0.05 {
		return nil
	}
	return &model.FixStrategy{
		Error:      err,
		Kind:       model.FixSimplify,
		Tier:       model.TierRule,
		Confidence: 0.75,
		Parameters: map[string]any{"tolerance": 0.5, "preserve_topology": true},
		Rationale:  fmt.Sprintf("extremely low compactness (%.3f) — simplifying", compactness),
	}
}

func ruleBoundaryClip(err *model.DetectedError, meta map[string]model.FeatureMetadata) *model.FixStrategy {
	if err.Kind != model.ErrorBuildingBoundaryOverlap {
		return nil
	}
	return &model.FixStrategy{
		Error:      err,
		Kind:       model.FixClip,
		Tier:       model.TierRule,
		Confidence: 0.85,
		Rationale:  "building extends beyond boundary — clipping to boundary",
	}
}

// ─── Fallback rules, keyed on overlap_class, for error rows that arrive
// already classified by an upstream detector (detect.FromExternal) without
// full pairwise metadata. ──────────────────────────────────────────────

func ruleOverlapByClass(err *model.DetectedError, meta map[string]model.FeatureMetadata) *model.FixStrategy {
	if err.Kind != model.ErrorBuildingOverlap {
		return nil
	}
	class := err.Tag("overlap_class")
	switch class {
	case "duplicate":
		del := "unknown"
		if len(err.AffectedFeatures) > 0 {
			del = err.AffectedFeatures[0]
		}
		return &model.FixStrategy{
			Error:      err,
			Kind:       model.FixDelete,
			Tier:       model.TierRule,
			Confidence: 0.80,
			Parameters: map[string]any{"delete_feature": del},
			Rationale:  "duplicate building (overlap_class=duplicate) — flagged for deletion",
		}
	case "sliver":
		return &model.FixStrategy{
			Error:      err,
			Kind:       model.FixTrim,
			Tier:       model.TierRule,
			Confidence: 0.85,
			Rationale:  "sliver overlap (overlap_class=sliver) — auto-trimming overlap area",
		}
	case "partial":
		return &model.FixStrategy{
			Error:      err,
			Kind:       model.FixSnap,
			Tier:       model.TierRule,
			Confidence: 0.80,
			Rationale:  "partial overlap (overlap_class=partial) — snapping to reduce overlap",
		}
	default:
		return nil
	}
}

func ruleRoadConflictFallback(err *model.DetectedError, meta map[string]model.FeatureMetadata) *model.FixStrategy {
	if err.Kind != model.ErrorBuildingOnRoad {
		return nil
	}
	return &model.FixStrategy{
		Error:      err,
		Kind:       model.FixNudge,
		Tier:       model.TierRule,
		Confidence: 0.75,
		Parameters: map[string]any{"min_distance_m": 3.0},
		Rationale:  "building conflicts with road — nudging off road buffer",
	}
}

func ruleOutsideBoundary(err *model.DetectedError, meta map[string]model.FeatureMetadata) *model.FixStrategy {
	if err.Kind != model.ErrorOutsideBoundary {
		return nil
	}
	return &model.FixStrategy{
		Error:      err,
		Kind:       model.FixFlag,
		Tier:       model.TierRule,
		Confidence: 0.80,
		Rationale:  "building is outside the study area boundary — flagged for review",
	}
}

func ruleBoundaryOverlapFallback(err *model.DetectedError, meta map[string]model.FeatureMetadata) *model.FixStrategy {
	if err.Kind != model.ErrorBuildingBoundaryOverlap {
		return nil
	}
	return &model.FixStrategy{
		Error:      err,
		Kind:       model.FixClip,
		Tier:       model.TierRule,
		Confidence: 0.80,
		Rationale:  "building extends beyond boundary — clipping to boundary",
	}
}
