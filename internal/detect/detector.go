// Package detect implements the GeoFix detector: given a feature set and
// optional roads/boundary layers, it emits a deterministic, ordered list
// of model.DetectedError values (spec §4.1).
//
// Detection is pairwise-bounded by a bounding-box spatial index
// (internal/index, backed by rtreego) rather than an all-pairs scan, and
// every emitted error is enriched with the overlap properties the
// decision engine's rules read (overlap_ratio, inter_area_m2,
// overlap_class).
package detect

import (
	"sort"

	"github.com/geofix-project/geofix-core/internal/config"
	"github.com/geofix-project/geofix-core/internal/geomops"
	"github.com/geofix-project/geofix-core/internal/index"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Detector runs the closed-set detection algorithm over a feature set.
type Detector struct {
	thresholds config.GeometryThresholds
}

// New returns a Detector configured with the given geometry thresholds.
func New(thresholds config.GeometryThresholds) *Detector {
	return &Detector{thresholds: thresholds}
}

// Input bundles the layers a detection run can consult. Roads and
// Boundary are optional; a nil value simply skips the checks that need
// them.
type Input struct {
	Features []model.Feature
	Roads    []orb.Geometry
	Boundary orb.Geometry
}

// Detect runs every check in the closed error catalog and returns the
// errors in the spec's emission order: grouped by kind (catalog order),
// then ascending lexicographic feature-ID tuple within a group.
func (d *Detector) Detect(in Input) ([]model.DetectedError, error) {
	byFeature := make(map[string]model.Feature, len(in.Features))
	for _, f := range in.Features {
		byFeature[f.ID] = f
	}

	var out []model.DetectedError
	invalidOrEmpty := make(map[string]bool, len(in.Features))

	for _, f := range in.Features {
		if f.Geometry == nil {
			out = append(out, d.newError(model.ErrorEmptyGeometry, model.SeverityHigh, nil, []string{f.ID}, nil, nil))
			invalidOrEmpty[f.ID] = true
			continue
		}
		if !geomops.IsValid(f.Geometry) {
			out = append(out, d.newError(model.ErrorInvalidGeometry, model.SeverityHigh, f.Geometry, []string{f.ID}, nil, nil))
			invalidOrEmpty[f.ID] = true
			continue
		}
		if geomops.Area(f.Geometry) == 0 {
			out = append(out, d.newError(model.ErrorEmptyGeometry, model.SeverityHigh, f.Geometry, []string{f.ID}, nil, nil))
			invalidOrEmpty[f.ID] = true
		}
	}

	// Pairwise checks only run over features with usable geometry.
	var usable []model.Feature
	for _, f := range in.Features {
		if !invalidOrEmpty[f.ID] {
			usable = append(usable, f)
		}
	}
	sort.Slice(usable, func(i, j int) bool { return usable[i].ID < usable[j].ID })

	entries := make([]index.Entry, 0, len(usable))
	for _, f := range usable {
		entries = append(entries, index.Entry{ID: f.ID, Bound: f.Geometry.Bound()})
	}
	idx := index.New(entries)

	seenPairs := make(map[[2]string]bool)
	normKeys := make(map[string]string, len(usable))
	for _, f := range usable {
		normKeys[f.ID] = canonicalKey(f.Geometry)
	}

	for _, fi := range usable {
		candidates := idx.Intersecting(fi.Geometry.Bound(), fi.ID)
		for _, cid := range candidates {
			if cid <= fi.ID {
				continue // strict j > i ordering by stable ID avoids double reporting
			}
			pair := [2]string{fi.ID, cid}
			if seenPairs[pair] {
				continue
			}
			seenPairs[pair] = true

			fj := byFeature[cid]
			interGeom := geomops.Intersection(fi.Geometry, fj.Geometry)
			interArea := geomops.Area(interGeom)
			if interArea <= 0 {
				continue
			}

			areaI, areaJ := geomops.Area(fi.Geometry), geomops.Area(fj.Geometry)
			minArea := areaI
			if areaJ < minArea {
				minArea = areaJ
			}
			ratio := 0.0
			if minArea > 0 {
				ratio = interArea / minArea
			}
			class := overlapClass(ratio, interArea, d.thresholds.SliverMaxAreaM2, d.thresholds.DuplicateRatioMin, d.thresholds.PartialRatioMin)

			props := map[string]float64{"inter_area_m2": interArea, "overlap_ratio": ratio}
			tags := map[string]string{"overlap_class": class}

			if normKeys[fi.ID] == normKeys[fj.ID] {
				out = append(out, d.newError(model.ErrorDuplicateGeometry, model.SeverityCritical, interGeom, []string{fi.ID, fj.ID}, props, tags))
				continue
			}
			out = append(out, d.newError(model.ErrorBuildingOverlap, model.SeverityHigh, interGeom, []string{fi.ID, fj.ID}, props, tags))
		}
	}

	out = append(out, d.detectRoadConflicts(usable, in.Roads)...)
	out = append(out, d.detectBoundary(usable, in.Boundary)...)

	for _, f := range usable {
		area := geomops.Area(f.Geometry)
		if area < d.thresholds.MinBuildingAreaM2 || area > d.thresholds.MaxBuildingAreaM2 {
			out = append(out, d.newError(model.ErrorUnreasonableArea, model.SeverityMedium, f.Geometry, []string{f.ID},
				map[string]float64{"area_m2": area}, nil))
		}
		compactness := geomops.Compactness(f.Geometry)
		if compactness < d.thresholds.LowCompactnessMin {
			out = append(out, d.newError(model.ErrorLowCompactness, model.SeverityLow, f.Geometry, []string{f.ID},
				map[string]float64{"compactness": compactness}, nil))
		}
	}

	sortByEmissionOrder(out)
	return out, nil
}

func (d *Detector) detectRoadConflicts(features []model.Feature, roads []orb.Geometry) []model.DetectedError {
	if len(roads) == 0 {
		return nil
	}
	setback := d.thresholds.DefaultRoadSetbackM
	var out []model.DetectedError
	for _, f := range features {
		for _, road := range roads {
			roadWKT := geomops.ToWKT(road)
			// §4.1: building_on_road is "polygon intersects a road line
			// buffered by setback distance" — test against the buffered
			// road polygon itself, not a raw centerline-distance epsilon,
			// so a footprint overlapping the buffer by any positive area
			// counts, exactly as S5 (0.4 m² of a 1 m² footprint inside the
			// buffer) expects.
			buffered := geomops.Buffer(road, setback)
			interArea := geomops.Area(geomops.Intersection(f.Geometry, buffered))
			if interArea > 0 {
				buildingArea := geomops.Area(f.Geometry)
				ratio := interArea / buildingArea
				class := overlapClass(ratio, interArea, d.thresholds.SliverMaxAreaM2, d.thresholds.DuplicateRatioMin, d.thresholds.PartialRatioMin)
				out = append(out, d.newError(model.ErrorBuildingOnRoad, model.SeverityHigh, f.Geometry, []string{f.ID},
					map[string]float64{"inter_area_m2": interArea},
					map[string]string{"overlap_class": class, "road_wkt": roadWKT}))
				continue
			}
			// No positive overlap with the buffer, but still within
			// setback distance of the centerline: §4.1's "without full
			// intersection" case.
			dist := polylineDistance(f.Geometry, road)
			if dist < setback {
				out = append(out, d.newError(model.ErrorRoadSetback, model.SeverityMedium, f.Geometry, []string{f.ID},
					map[string]float64{"distance_m": dist}, map[string]string{"road_wkt": roadWKT}))
			}
		}
	}
	return out
}

func (d *Detector) detectBoundary(features []model.Feature, boundary orb.Geometry) []model.DetectedError {
	if boundary == nil {
		return nil
	}
	var out []model.DetectedError
	for _, f := range features {
		inter := geomops.Intersection(f.Geometry, boundary)
		interArea := geomops.Area(inter)
		if interArea <= 0 {
			out = append(out, d.newError(model.ErrorOutsideBoundary, model.SeverityMedium, f.Geometry, []string{f.ID}, nil, nil))
			continue
		}
		area := geomops.Area(f.Geometry)
		if interArea < area-1e-9 {
			out = append(out, d.newError(model.ErrorBuildingBoundaryOverlap, model.SeverityMedium, f.Geometry, []string{f.ID},
				map[string]float64{"area_m2": area, "inside_area_m2": interArea}, nil))
		}
	}
	return out
}

func overlapClass(ratio, interArea, sliverMax, dupMin, partialMin float64) string {
	switch {
	case ratio >= dupMin:
		return "duplicate"
	case ratio >= partialMin:
		return "partial"
	case interArea < sliverMax:
		return "sliver"
	default:
		return "partial"
	}
}

func (d *Detector) newError(kind model.ErrorKind, sev model.Severity, geom orb.Geometry, affected []string, props map[string]float64, tags map[string]string) model.DetectedError {
	return model.DetectedError{
		ID:               uuid.NewString(),
		Kind:             kind,
		Severity:         sev,
		Geometry:         geom,
		AffectedFeatures: affected,
		Properties:       props,
		PropertyTags:     tags,
		Provenance:       "geofix.detect",
	}
}

// sortByEmissionOrder groups errors by kind (catalog order) then sorts
// within a group by ascending lexicographic feature-ID tuple.
func sortByEmissionOrder(errs []model.DetectedError) {
	sort.SliceStable(errs, func(i, j int) bool {
		oi, oj := model.KindOrder(errs[i].Kind), model.KindOrder(errs[j].Kind)
		if oi != oj {
			return oi < oj
		}
		return affectedKey(errs[i]) < affectedKey(errs[j])
	})
}

func affectedKey(e model.DetectedError) string {
	key := ""
	for i, id := range e.AffectedFeatures {
		if i > 0 {
			key += "\x00"
		}
		key += id
	}
	return key
}
