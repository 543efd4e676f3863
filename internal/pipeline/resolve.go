package pipeline

import (
	"strings"

	"github.com/geofix-project/geofix-core/internal/geomops"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/paulmach/orb"
)

// targetFeatureID picks which affected feature a strategy's fix operation
// runs against. Rules name the target explicitly for fixes that act on
// one of several candidates (delete_feature, snap_feature, keep_feature);
// everything else falls back to the first (lexicographically smallest,
// per the detector's emission order) affected feature.
func targetFeatureID(strategy *model.FixStrategy) string {
	var paramKey string
	switch strategy.Kind {
	case model.FixDelete:
		paramKey = "delete_feature"
	case model.FixSnap:
		paramKey = "snap_feature"
	case model.FixMerge:
		paramKey = "keep_feature"
	}
	if paramKey != "" {
		if v, ok := strategy.Param(paramKey); ok {
			if fid, ok := v.(string); ok && fid != "" {
				return fid
			}
		}
	}
	if len(strategy.Error.AffectedFeatures) > 0 {
		return strategy.Error.AffectedFeatures[0]
	}
	return ""
}

// resolveParameters turns a strategy's feature-ID references into the
// actual geometries the fixes.Operation implementations read. Rules and
// oracle recommendations only ever know feature IDs and error metadata —
// they can't see the rest of the working set — so this translation is the
// pipeline's job, run once per fix right before fixes.Apply.
//
// The "<name>_feature" -> "<name>_geometry" naming convention mirrors how
// every rule in internal/decision/rules.go names its feature-ID
// parameters; any future rule or oracle recommendation that follows the
// same convention is resolved for free.
func resolveParameters(strategy *model.FixStrategy, byID map[string]model.Feature, boundary orb.Geometry) map[string]any {
	resolved := make(map[string]any, len(strategy.Parameters)+1)
	for k, v := range strategy.Parameters {
		resolved[k] = v
		if !strings.HasSuffix(k, "_feature") {
			continue
		}
		fid, ok := v.(string)
		if !ok {
			continue
		}
		f, ok := byID[fid]
		if !ok {
			continue
		}
		geomKey := strings.TrimSuffix(k, "_feature") + "_geometry"
		resolved[geomKey] = f.Geometry
	}

	switch strategy.Kind {
	case model.FixTrim:
		if _, ok := resolved["overlap_geometry"]; !ok && strategy.Error.Geometry != nil {
			resolved["overlap_geometry"] = strategy.Error.Geometry
		}
	case model.FixClip:
		if _, ok := resolved["boundary_geometry"]; !ok && boundary != nil {
			resolved["boundary_geometry"] = boundary
		}
	case model.FixNudge:
		if _, ok := resolved["road_geometry"]; !ok {
			if wkt := strategy.Error.Tag("road_wkt"); wkt != "" {
				if g, err := geomops.FromWKT(wkt); err == nil {
					resolved["road_geometry"] = g
				}
			}
		}
	case model.FixMerge:
		if _, ok := resolved["other_geometry"]; !ok {
			target := targetFeatureID(strategy)
			for _, fid := range strategy.Error.AffectedFeatures {
				if fid == target {
					continue
				}
				if f, ok := byID[fid]; ok {
					resolved["other_geometry"] = f.Geometry
				}
				break
			}
		}
	}
	return resolved
}
