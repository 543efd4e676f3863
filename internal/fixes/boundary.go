package fixes

import (
	"github.com/geofix-project/geofix-core/internal/geomops"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/paulmach/orb"
)

// ClipFix intersects the input with the area-of-interest boundary,
// keeping the largest resulting part.
type ClipFix struct{}

func (ClipFix) Kind() model.FixKind { return model.FixClip }

func (ClipFix) Execute(geometry orb.Geometry, params map[string]any) (orb.Geometry, error) {
	boundary, _ := params["boundary_geometry"].(orb.Geometry)
	if boundary == nil {
		return geometry, nil
	}
	return geomops.Intersection(geometry, boundary), nil
}

func (ClipFix) Validate(original, fixed orb.Geometry) bool {
	if !baseValidate(original, fixed) {
		return false
	}
	origArea := geomops.Area(original)
	if origArea > 0 {
		ratio := geomops.Area(fixed) / origArea
		if ratio < 0.1 {
			return false
		}
	}
	return true
}
