package detect

import (
	"math"
	"testing"

	"github.com/geofix-project/geofix-core/internal/config"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/paulmach/orb"
)

func square(side, dx, dy float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{dx, dy}, {dx + side, dy}, {dx + side, dy + side}, {dx, dy + side}, {dx, dy},
	}}
}

func feature(id string, g orb.Geometry) model.Feature {
	return model.Feature{ID: id, Geometry: g, Metadata: model.DefaultFeatureMetadata(id)}
}

func TestDetectFindsOverlap(t *testing.T) {
	d := New(config.Default().Geometry)
	in := Input{Features: []model.Feature{
		feature("a", square(10, 0, 0)),
		feature("b", square(10, 5, 5)),
	}}
	errs, err := d.Detect(in)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	found := false
	for _, e := range errs {
		if e.Kind == model.ErrorBuildingOverlap {
			found = true
			if e.Prop("inter_area_m2") <= 0 {
				t.Fatalf("expected positive inter_area_m2, got %v", e.Prop("inter_area_m2"))
			}
		}
	}
	if !found {
		t.Fatal("expected a building_overlap error")
	}
}

func TestDetectFindsExactDuplicate(t *testing.T) {
	d := New(config.Default().Geometry)
	in := Input{Features: []model.Feature{
		feature("a", square(10, 0, 0)),
		feature("b", square(10, 0, 0)),
	}}
	errs, err := d.Detect(in)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	found := false
	for _, e := range errs {
		if e.Kind == model.ErrorDuplicateGeometry {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a duplicate_geometry error for identical squares")
	}
}

func TestDetectDuplicateIgnoresVertexOrder(t *testing.T) {
	rotated := orb.Polygon{orb.Ring{
		{10, 0}, {10, 10}, {0, 10}, {0, 0}, {10, 0},
	}}
	d := New(config.Default().Geometry)
	in := Input{Features: []model.Feature{
		feature("a", square(10, 0, 0)),
		feature("b", rotated),
	}}
	errs, err := d.Detect(in)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	for _, e := range errs {
		if e.Kind == model.ErrorDuplicateGeometry {
			return
		}
	}
	t.Fatal("expected duplicate_geometry despite different vertex ordering")
}

func TestDetectUnreasonableArea(t *testing.T) {
	d := New(config.Default().Geometry)
	in := Input{Features: []model.Feature{feature("tiny", square(0.1, 0, 0))}}
	errs, err := d.Detect(in)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	found := false
	for _, e := range errs {
		if e.Kind == model.ErrorUnreasonableArea {
			found = true
		}
	}
	if !found {
		t.Fatal("expected unreasonable_area for a 0.01 m² building")
	}
}

func TestDetectInvalidGeometry(t *testing.T) {
	bowtie := orb.Polygon{orb.Ring{
		{0, 0}, {10, 10}, {10, 0}, {0, 10}, {0, 0},
	}}
	d := New(config.Default().Geometry)
	in := Input{Features: []model.Feature{feature("bad", bowtie)}}
	errs, err := d.Detect(in)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(errs) != 1 || errs[0].Kind != model.ErrorInvalidGeometry {
		t.Fatalf("expected exactly one invalid_geometry error, got %+v", errs)
	}
}

func TestDetectEmissionOrderGroupsByKind(t *testing.T) {
	bowtie := orb.Polygon{orb.Ring{{0, 0}, {10, 10}, {10, 0}, {0, 10}, {0, 0}}}
	d := New(config.Default().Geometry)
	in := Input{Features: []model.Feature{
		feature("z-tiny", square(0.1, 100, 100)),
		feature("a-bad", bowtie),
	}}
	errs, err := d.Detect(in)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(errs))
	}
	if errs[0].Kind != model.ErrorInvalidGeometry || errs[1].Kind != model.ErrorUnreasonableArea {
		t.Fatalf("expected invalid_geometry before unreasonable_area (catalog order), got %v then %v", errs[0].Kind, errs[1].Kind)
	}
}

func TestDetectOutsideBoundary(t *testing.T) {
	d := New(config.Default().Geometry)
	boundary := square(10, 0, 0)
	in := Input{
		Features: []model.Feature{feature("far", square(2, 100, 100))},
		Boundary: boundary,
	}
	errs, err := d.Detect(in)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	found := false
	for _, e := range errs {
		if e.Kind == model.ErrorOutsideBoundary {
			found = true
		}
	}
	if !found {
		t.Fatal("expected outside_boundary for a feature disjoint from the boundary")
	}
}

func TestDetectBoundaryOverlap(t *testing.T) {
	d := New(config.Default().Geometry)
	boundary := square(10, 0, 0)
	in := Input{
		Features: []model.Feature{feature("edge", square(4, 8, 8))},
		Boundary: boundary,
	}
	errs, err := d.Detect(in)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	found := false
	for _, e := range errs {
		if e.Kind == model.ErrorBuildingBoundaryOverlap {
			found = true
		}
	}
	if !found {
		t.Fatal("expected building_boundary_overlap for a feature straddling the boundary edge")
	}
}

func TestDetectRoadConflict(t *testing.T) {
	d := New(config.Default().Geometry)
	road := orb.LineString{{-50, 5}, {50, 5}}
	in := Input{
		Features: []model.Feature{feature("onroad", square(2, 4, 4))},
		Roads:    []orb.Geometry{road},
	}
	errs, err := d.Detect(in)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	found := false
	for _, e := range errs {
		if e.Kind == model.ErrorBuildingOnRoad {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected building_on_road for a footprint straddling the road buffer, got %+v", errs)
	}
}

// TestDetectRoadSetback exercises the road_setback fallback: a building
// within setback distance of the road's centerline but landing in one of
// the buffered road polygon's corner gaps (geomops.Buffer approximates
// the round cap at a line endpoint with a 12-sided fan inscribed in the
// true circle, so a point sitting between two fan vertices can be closer
// than setback to the centerline yet fall just outside the polygon).
//
// The road segment ends at (10, 0); with the default 2 m setback the fan
// vertices around that endpoint sit at 30 degree increments (absolute,
// not relative to the segment direction), so the bisector at 15 degrees
// is the deepest point of the gap: the fan chord there is only
// 2*cos(15 degrees) =~ 1.9319 m from the endpoint, while the true circle
// is 2 m out. A speck placed at 1.97 m along that bisector is within
// setback distance of the road but outside the polygon the detector
// actually tests against, which is exactly the near-miss §4.1's
// "road_setback ... without full intersection" describes.
func TestDetectRoadSetback(t *testing.T) {
	d := New(config.Default().Geometry)
	road := orb.LineString{{0, 0}, {10, 0}}

	const (
		capX, capY = 10.0, 0.0
		r          = 1.97
	)
	bisector := math.Pi / 12 // 15 degrees
	cx := capX + r*math.Cos(bisector)
	cy := capY + r*math.Sin(bisector)
	const speck = 0.002
	in := Input{
		Features: []model.Feature{feature("near", square(speck, cx-speck/2, cy-speck/2))},
		Roads:    []orb.Geometry{road},
	}
	errs, err := d.Detect(in)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	var onRoad bool
	found := false
	for _, e := range errs {
		if e.Kind == model.ErrorRoadSetback {
			found = true
		}
		if e.Kind == model.ErrorBuildingOnRoad {
			onRoad = true
		}
	}
	if !found {
		t.Fatalf("expected road_setback for a footprint within setback distance but outside the buffered road polygon, got %+v", errs)
	}
	if onRoad {
		t.Fatalf("footprint in the buffer's corner gap should not also be classified building_on_road, got %+v", errs)
	}
}

func TestFromExternalRejectsUnknownKind(t *testing.T) {
	rows := []ExternalErrorRow{
		{Kind: model.ErrorBuildingOverlap, Geometry: square(1, 0, 0), AffectedFeatures: []string{"a", "b"}},
		{Kind: model.ErrorKind("not_real"), Geometry: square(1, 0, 0), AffectedFeatures: []string{"c"}},
	}
	errs, err := FromExternal(rows)
	if err != nil {
		t.Fatalf("FromExternal: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("expected unknown kind row to be dropped, got %d errors", len(errs))
	}
	if errs[0].Severity != model.SeverityHigh {
		t.Fatalf("expected building_overlap to map to high severity, got %v", errs[0].Severity)
	}
}
