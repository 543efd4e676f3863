package fixes

import (
	"github.com/geofix-project/geofix-core/internal/geomops"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/paulmach/orb"
)

// DeleteFix marks a feature for deletion by returning nil geometry; the
// caller removes the feature from the set. Which feature to delete is
// decided upstream (the decision engine names it via the delete_feature
// parameter) — this operation only needs to signal removal of whichever
// feature it's applied to.
type DeleteFix struct{}

func (DeleteFix) Kind() model.FixKind { return model.FixDelete }

func (DeleteFix) Execute(geometry orb.Geometry, params map[string]any) (orb.Geometry, error) {
	return nil, nil
}

// Validate always passes: nil geometry is the intended outcome of delete.
func (DeleteFix) Validate(original, fixed orb.Geometry) bool { return true }

// TrimFix subtracts the overlap region from the input, keeping the
// largest remaining part.
type TrimFix struct{}

func (TrimFix) Kind() model.FixKind { return model.FixTrim }

func (TrimFix) Execute(geometry orb.Geometry, params map[string]any) (orb.Geometry, error) {
	overlap, _ := params["overlap_geometry"].(orb.Geometry)
	if overlap == nil {
		return geometry, nil
	}
	return geomops.Difference(geometry, overlap), nil
}

func (TrimFix) Validate(original, fixed orb.Geometry) bool {
	if !baseValidate(original, fixed) {
		return false
	}
	origArea := geomops.Area(original)
	if origArea > 0 {
		ratio := geomops.Area(fixed) / origArea
		if ratio < 0.3 {
			return false
		}
	}
	return true
}

// MergeFix unions the input with another geometry, keeping the largest
// resulting polygon.
type MergeFix struct{}

func (MergeFix) Kind() model.FixKind { return model.FixMerge }

func (MergeFix) Execute(geometry orb.Geometry, params map[string]any) (orb.Geometry, error) {
	other, _ := params["other_geometry"].(orb.Geometry)
	if other == nil {
		return geometry, nil
	}
	merged := geomops.Union(geometry, other)
	return geomops.KeepLargest(merged), nil
}

func (MergeFix) Validate(original, fixed orb.Geometry) bool {
	return baseValidate(original, fixed)
}

// SnapFix moves the input onto a reference geometry via geomops.Snap: the
// whole input is translated so its vertex nearest the reference lands on
// the reference's nearest vertex, then the reference is subtracted to
// eliminate residual overlap. Individual vertices are not snapped, and no
// tolerance is applied (a "tolerance" parameter is not read).
type SnapFix struct{}

func (SnapFix) Kind() model.FixKind { return model.FixSnap }

func (SnapFix) Execute(geometry orb.Geometry, params map[string]any) (orb.Geometry, error) {
	reference, _ := params["reference_geometry"].(orb.Geometry)
	if reference == nil {
		return geometry, nil
	}
	return geomops.Snap(geometry, reference), nil
}

func (SnapFix) Validate(original, fixed orb.Geometry) bool {
	if !baseValidate(original, fixed) {
		return false
	}
	origArea := geomops.Area(original)
	if origArea > 0 {
		ratio := geomops.Area(fixed) / origArea
		if ratio < 0.5 || ratio > 1.5 {
			return false
		}
	}
	return true
}
