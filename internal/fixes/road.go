package fixes

import (
	"math"

	"github.com/geofix-project/geofix-core/internal/geomops"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/paulmach/orb"
)

// NudgeFix translates a building away from a road so the gap between them
// reaches min_distance_m, moving along the road-to-building vector (or
// due north, if that vector is degenerate).
type NudgeFix struct{}

func (NudgeFix) Kind() model.FixKind { return model.FixNudge }

func nearestRingDistance(a, b orb.Geometry) float64 {
	_, _, d := geomops.NearestPoints(a, b)
	return d
}

func (NudgeFix) Execute(geometry orb.Geometry, params map[string]any) (orb.Geometry, error) {
	road, _ := params["road_geometry"].(orb.Geometry)
	minDist := 3.0
	if v, ok := params["min_distance_m"].(float64); ok {
		minDist = v
	}
	if road == nil {
		return geometry, nil
	}

	currentDist := nearestRingDistance(geometry, road)
	if currentDist >= minDist {
		return geometry, nil
	}

	nearestOnRoad, nearestOnBldg, _ := geomops.NearestPoints(road, geometry)
	dx := nearestOnBldg[0] - nearestOnRoad[0]
	dy := nearestOnBldg[1] - nearestOnRoad[1]
	length := math.Sqrt(dx*dx + dy*dy)
	if length < 1e-10 {
		dx, dy, length = 0.0, 1.0, 1.0
	}

	gap := minDist - currentDist + 0.1
	nudgeX := (dx / length) * gap
	nudgeY := (dy / length) * gap

	return geomops.Translate(geometry, nudgeX, nudgeY), nil
}

func (NudgeFix) Validate(original, fixed orb.Geometry) bool {
	if !baseValidate(original, fixed) {
		return false
	}
	origArea := geomops.Area(original)
	if origArea > 0 {
		ratio := geomops.Area(fixed) / origArea
		if math.Abs(ratio-1.0) > 0.01 {
			return false
		}
	}
	return true
}
