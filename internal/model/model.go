// Package model defines the data structures that flow through the GeoFix
// pipeline: Feature -> DetectedError -> FixStrategy -> FixResult -> AuditEntry.
package model

import (
	"time"

	"github.com/paulmach/orb"
)

// ErrorKind is a closed enumeration of the topological/semantic defects the
// detector can emit. New kinds are never added dynamically — see §9 of the
// spec on closed-set dispatch.
type ErrorKind string

const (
	ErrorInvalidGeometry        ErrorKind = "invalid_geometry"
	ErrorEmptyGeometry          ErrorKind = "empty_geometry"
	ErrorDuplicateGeometry      ErrorKind = "duplicate_geometry"
	ErrorBuildingOverlap        ErrorKind = "building_overlap"
	ErrorBuildingOnRoad         ErrorKind = "building_on_road"
	ErrorBuildingBoundaryOverlap ErrorKind = "building_boundary_overlap"
	ErrorOutsideBoundary        ErrorKind = "outside_boundary"
	ErrorUnreasonableArea       ErrorKind = "unreasonable_area"
	ErrorLowCompactness         ErrorKind = "low_compactness"
	ErrorRoadSetback            ErrorKind = "road_setback"
)

// errorKindOrder fixes the detector's emission order: grouped by kind in
// catalog order, ascending lexicographic feature-ID tuple within a group.
var errorKindOrder = map[ErrorKind]int{
	ErrorInvalidGeometry:         0,
	ErrorEmptyGeometry:           1,
	ErrorDuplicateGeometry:       2,
	ErrorBuildingOverlap:         3,
	ErrorBuildingOnRoad:          4,
	ErrorBuildingBoundaryOverlap: 5,
	ErrorOutsideBoundary:         6,
	ErrorUnreasonableArea:        7,
	ErrorLowCompactness:          8,
	ErrorRoadSetback:             9,
}

// KindOrder returns the catalog position of an error kind, or -1 for an
// unknown (non-closed-set) kind.
func KindOrder(k ErrorKind) int {
	if v, ok := errorKindOrder[k]; ok {
		return v
	}
	return -1
}

// Severity is a closed enumeration of error urgency.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// FixKind is a closed enumeration of repair operations (§4.3).
type FixKind string

const (
	FixMakeValid    FixKind = "make_valid"
	FixSimplify     FixKind = "simplify"
	FixDelete       FixKind = "delete"
	FixTrim         FixKind = "trim"
	FixMerge        FixKind = "merge"
	FixSnap         FixKind = "snap"
	FixClip         FixKind = "clip"
	FixNudge        FixKind = "nudge"
	FixFlag         FixKind = "flag"
	FixHumanReview  FixKind = "human_review"
)

// Tier records which decision layer produced a FixStrategy.
type Tier string

const (
	TierRule   Tier = "rule"
	TierOracle Tier = "oracle"
	TierHuman  Tier = "human"
)

// AuditAction is the outcome recorded for a fix attempt.
type AuditAction string

const (
	ActionApplied        AuditAction = "applied"
	ActionRolledBack      AuditAction = "rolled_back"
	ActionSkipped         AuditAction = "skipped"
	ActionPendingReview   AuditAction = "pending_review"
)

// allErrorKinds and allFixKinds back ValidErrorKind/ValidFixKind, the parse
// boundary that rejects unknown tags before they enter the core (§9).
var allErrorKinds = map[ErrorKind]struct{}{
	ErrorInvalidGeometry: {}, ErrorEmptyGeometry: {}, ErrorDuplicateGeometry: {},
	ErrorBuildingOverlap: {}, ErrorBuildingOnRoad: {}, ErrorBuildingBoundaryOverlap: {},
	ErrorOutsideBoundary: {}, ErrorUnreasonableArea: {}, ErrorLowCompactness: {},
	ErrorRoadSetback: {},
}

var allFixKinds = map[FixKind]struct{}{
	FixMakeValid: {}, FixSimplify: {}, FixDelete: {}, FixTrim: {}, FixMerge: {},
	FixSnap: {}, FixClip: {}, FixNudge: {}, FixFlag: {}, FixHumanReview: {},
}

// ValidErrorKind reports whether k belongs to the closed error catalog.
func ValidErrorKind(k ErrorKind) bool {
	_, ok := allErrorKinds[k]
	return ok
}

// ValidFixKind reports whether k belongs to the closed fix-kind set.
func ValidFixKind(k FixKind) bool {
	_, ok := allFixKinds[k]
	return ok
}

// FeatureMetadata carries the trust signals the decision engine compares
// across affected features. DefaultFeatureMetadata supplies the defaults
// for a feature whose metadata is absent; zero fields of a supplied
// FeatureMetadata are used as they are.
type FeatureMetadata struct {
	Source     string
	SourceDate *time.Time
	AccuracyM  float64
	Confidence float64
	Tags       map[string]string
}

// DefaultFeatureMetadata returns the §6 defaults for a feature with no
// supplied metadata: source "unknown", accuracy_m 10.0, confidence 0.5.
func DefaultFeatureMetadata(featureID string) FeatureMetadata {
	return FeatureMetadata{
		Source:     "unknown",
		AccuracyM:  10.0,
		Confidence: 0.5,
	}
}

// Feature is a single geospatial footprint borrowed by the pipeline for the
// duration of detection and owned by the caller otherwise.
type Feature struct {
	ID       string
	Geometry orb.Geometry
	Metadata FeatureMetadata
}

// DetectedError is an immutable record produced once by the detector and
// consumed once by the decision engine.
type DetectedError struct {
	ID               string
	Kind             ErrorKind
	Severity         Severity
	Geometry         orb.Geometry
	AffectedFeatures []string
	Properties       map[string]float64
	PropertyTags     map[string]string
	Provenance       string
}

// Prop returns a numeric property, defaulting to 0 when absent.
func (e *DetectedError) Prop(key string) float64 {
	if e.Properties == nil {
		return 0
	}
	return e.Properties[key]
}

// Tag returns a string property, defaulting to "" when absent.
func (e *DetectedError) Tag(key string) string {
	if e.PropertyTags == nil {
		return ""
	}
	return e.PropertyTags[key]
}

// FixStrategy is what the decision engine recommends doing about an error.
// A FixStrategy with Kind == FixHumanReview is always producible and is the
// Tier-3 fallback (§4.2 — decide never fails).
type FixStrategy struct {
	Error      *DetectedError
	Kind       FixKind
	Tier       Tier
	Confidence float64
	Parameters map[string]any
	Rationale  string
}

// Param fetches a named parameter, returning (nil, false) when absent.
func (s *FixStrategy) Param(key string) (any, bool) {
	if s.Parameters == nil {
		return nil, false
	}
	v, ok := s.Parameters[key]
	return v, ok
}

// FixResult is the immutable outcome of executing a FixStrategy.
type FixResult struct {
	Strategy         *FixStrategy
	Success          bool
	OriginalGeometry orb.Geometry
	FixedGeometry    orb.Geometry // nil for delete, or on failure
	ValidationPassed bool
	NewErrorsCount   int
	Timestamp        time.Time
}

// AuditEntry is the append-only record written for every fix attempt.
type AuditEntry struct {
	Timestamp    time.Time
	SessionID    string
	FeatureID    string
	ErrorKind    ErrorKind
	ErrorID      string
	FixKind      FixKind
	Tier         Tier
	Confidence   float64
	Rationale    string
	BeforeWKT    string
	AfterWKT     string
	Action       AuditAction
	ValidationOK bool
	NewErrors    int
}
