package fixes

import (
	"github.com/geofix-project/geofix-core/internal/geomops"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/paulmach/orb"
)

// MakeValidFix repairs self-intersecting or otherwise invalid geometry via
// the OGC make-valid transform; it is a no-op on already-valid input.
type MakeValidFix struct{}

func (MakeValidFix) Kind() model.FixKind { return model.FixMakeValid }

func (MakeValidFix) Execute(geometry orb.Geometry, params map[string]any) (orb.Geometry, error) {
	if geometry == nil {
		return nil, nil
	}
	return geomops.MakeValid(geometry), nil
}

func (MakeValidFix) Validate(original, fixed orb.Geometry) bool {
	if !baseValidate(original, fixed) {
		return false
	}
	return geomops.IsValid(fixed)
}

// SimplifyFix applies Douglas-Peucker simplification at the given
// tolerance. preserve_topology is accepted as a parameter for parity with
// the closed fix-kind contract but orb/simplify's Douglas-Peucker pass
// already preserves ring closure, so it has no further effect here.
type SimplifyFix struct{}

func (SimplifyFix) Kind() model.FixKind { return model.FixSimplify }

func (SimplifyFix) Execute(geometry orb.Geometry, params map[string]any) (orb.Geometry, error) {
	if geometry == nil {
		return nil, nil
	}
	tolerance := 0.5
	if v, ok := params["tolerance"].(float64); ok {
		tolerance = v
	}
	return geomops.Simplify(geometry, tolerance), nil
}

func (SimplifyFix) Validate(original, fixed orb.Geometry) bool {
	if !baseValidate(original, fixed) {
		return false
	}
	origArea := geomops.Area(original)
	if origArea > 0 {
		ratio := geomops.Area(fixed) / origArea
		if ratio < 0.5 {
			return false
		}
	}
	return true
}
