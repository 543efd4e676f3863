// Package decision implements the three-tier decision engine: a
// priority-ordered rule set (Tier 1), an optional reasoning oracle
// (Tier 2), and a human-review fallback (Tier 3).
package decision

import (
	"math"

	"github.com/geofix-project/geofix-core/internal/model"
)

// AccuracyDifference returns the absolute difference in positional
// accuracy, in meters, between two features' metadata.
func AccuracyDifference(a, b model.FeatureMetadata) float64 {
	return math.Abs(a.AccuracyM - b.AccuracyM)
}

// ConfidenceFromAccuracyGap maps an accuracy gap (meters) to a confidence
// score in [0.55, 0.95]: a bigger gap makes it clearer which feature to
// keep.
func ConfidenceFromAccuracyGap(gap float64) float64 {
	switch {
	case gap >= 10.0:
		return 0.95
	case gap >= 5.0:
		return 0.85
	case gap >= 2.0:
		return 0.75
	case gap >= 1.0:
		return 0.65
	default:
		return 0.55
	}
}

// ConfidenceFromOverlapRatio maps an overlap ratio to a confidence score in
// [0.55, 0.95]: a bigger ratio makes the fix type clearer.
func ConfidenceFromOverlapRatio(ratio float64) float64 {
	switch {
	case ratio >= 0.98:
		return 0.95
	case ratio >= 0.80:
		return 0.85
	case ratio >= 0.60:
		return 0.75
	case ratio >= 0.40:
		return 0.65
	default:
		return 0.55
	}
}

// CombinedConfidence returns the geometric mean of the given scores, each
// floored at 0.01 to prevent one weak score from collapsing the whole
// product to zero.
func CombinedConfidence(scores ...float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	product := 1.0
	for _, s := range scores {
		if s < 0.01 {
			s = 0.01
		}
		product *= s
	}
	return math.Pow(product, 1.0/float64(len(scores)))
}
