// Package validate implements post-fix validation: the five ordered
// checks that determine whether a proposed geometry is accepted or the
// fix must be rolled back.
package validate

import (
	"fmt"

	"github.com/geofix-project/geofix-core/internal/geomops"
	"github.com/paulmach/orb"
)

// Result is the outcome of validating one fix.
type Result struct {
	Passed    bool
	ChecksRun []string
	Failures  []string
}

// Thresholds carries the two validator-specific configuration values.
type Thresholds struct {
	MinAreaM2          float64
	MaxAreaRatioChange float64
}

// Validator runs the ordered validation checks against a given set of
// thresholds.
type Validator struct {
	thresholds Thresholds
}

// New builds a Validator with the given thresholds.
func New(t Thresholds) *Validator {
	return &Validator{thresholds: t}
}

// ValidateFix runs all five checks, in order: null, validity,
// area-nonzero, area-ratio, minimum-area. allowDeletion lets a nil/empty
// fixed geometry pass (used for the delete fix kind).
func (v *Validator) ValidateFix(original, fixed orb.Geometry, allowDeletion bool) Result {
	result := Result{Passed: true}

	result.ChecksRun = append(result.ChecksRun, "null_check")
	if fixed == nil || geomops.IsEmpty(fixed) {
		if allowDeletion {
			return result
		}
		result.Passed = false
		result.Failures = append(result.Failures, "fix produced null/empty geometry")
		return result
	}

	result.ChecksRun = append(result.ChecksRun, "validity_check")
	if !geomops.IsValid(fixed) {
		result.Passed = false
		result.Failures = append(result.Failures, "fixed geometry is invalid")
	}

	origArea := geomops.Area(original)
	fixedArea := geomops.Area(fixed)

	result.ChecksRun = append(result.ChecksRun, "area_check")
	if fixedArea <= 0 && origArea > 0 {
		result.Passed = false
		result.Failures = append(result.Failures, "fixed geometry has zero area")
	}

	result.ChecksRun = append(result.ChecksRun, "area_ratio_check")
	if origArea > 0 && fixedArea > 0 {
		ratio := fixedArea / origArea
		if ratio > v.thresholds.MaxAreaRatioChange {
			result.Passed = false
			result.Failures = append(result.Failures, fmt.Sprintf(
				"area increased %.1fx (max %.1fx)", ratio, v.thresholds.MaxAreaRatioChange))
		}
		minRatio := 1.0 / v.thresholds.MaxAreaRatioChange
		if ratio < minRatio {
			result.Passed = false
			result.Failures = append(result.Failures, fmt.Sprintf(
				"area decreased to %.3fx (min %.3fx)", ratio, minRatio))
		}
	}

	result.ChecksRun = append(result.ChecksRun, "min_area_check")
	if fixedArea > 0 && fixedArea < v.thresholds.MinAreaM2 {
		result.Passed = false
		result.Failures = append(result.Failures, fmt.Sprintf(
			"fixed geometry area (%.2f m²) below minimum (%.1f m²)", fixedArea, v.thresholds.MinAreaM2))
	}

	return result
}
