// Package fixes implements the registry of repair operations: each fix
// kind's execute/validate pair, composed by a shared lifecycle
// (execute → validate → package FixResult) that never lets a panicking
// operation escape to the caller.
package fixes

import (
	"time"

	"github.com/geofix-project/geofix-core/internal/geomops"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/paulmach/orb"
)

// Operation is a single fix kind's geometric transform plus its
// fix-specific post-condition.
type Operation interface {
	Kind() model.FixKind
	Execute(geometry orb.Geometry, params map[string]any) (orb.Geometry, error)
	Validate(original, fixed orb.Geometry) bool
}

// baseValidate is the validation every operation runs in addition to its
// own checks: reject nil/empty results, invalid geometry, or a collapse
// from non-trivial area down to zero.
func baseValidate(original, fixed orb.Geometry) bool {
	if fixed == nil || geomops.IsEmpty(fixed) {
		return false
	}
	if !geomops.IsValid(fixed) {
		return false
	}
	if geomops.Area(original) > 1.0 && geomops.Area(fixed) <= 0 {
		return false
	}
	return true
}

// Apply runs the full fix lifecycle for a strategy: execute, validate,
// package the result. A panicking Execute is recovered and reported as an
// unsuccessful fix, matching the FixError recovery contract — the fix is
// marked unsuccessful and the caller rolls back, but the invocation
// continues.
func Apply(op Operation, strategy *model.FixStrategy) (result *model.FixResult) {
	original := strategy.Error.Geometry
	defer func() {
		if r := recover(); r != nil {
			result = &model.FixResult{
				Strategy:         strategy,
				Success:          false,
				OriginalGeometry: original,
				FixedGeometry:    nil,
				ValidationPassed: false,
				Timestamp:        time.Now().UTC(),
			}
		}
	}()

	fixed, err := op.Execute(original, strategy.Parameters)
	if err != nil {
		return &model.FixResult{
			Strategy:         strategy,
			Success:          false,
			OriginalGeometry: original,
			FixedGeometry:    nil,
			ValidationPassed: false,
			Timestamp:        time.Now().UTC(),
		}
	}

	passed := op.Validate(original, fixed)
	var packagedFixed orb.Geometry
	if passed {
		packagedFixed = fixed
	}
	return &model.FixResult{
		Strategy:         strategy,
		Success:          passed,
		OriginalGeometry: original,
		FixedGeometry:    packagedFixed,
		ValidationPassed: passed,
		Timestamp:        time.Now().UTC(),
	}
}
