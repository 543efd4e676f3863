package fixes

import (
	"math"
	"testing"

	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/paulmach/orb"
)

func square(side, dx, dy float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{dx, dy}, {dx + side, dy}, {dx + side, dy + side}, {dx, dy + side}, {dx, dy},
	}}
}

func strategyFor(kind model.FixKind, geom orb.Geometry, params map[string]any) *model.FixStrategy {
	return &model.FixStrategy{
		Error:      &model.DetectedError{ID: "e1", Geometry: geom},
		Kind:       kind,
		Parameters: params,
	}
}

func TestMakeValidFixNoOpOnValid(t *testing.T) {
	s := strategyFor(model.FixMakeValid, square(10, 0, 0), nil)
	result := Apply(MakeValidFix{}, s)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
}

func TestMakeValidFixBowtie(t *testing.T) {
	bowtie := orb.Polygon{orb.Ring{{0, 0}, {10, 10}, {10, 0}, {0, 10}, {0, 0}}}
	s := strategyFor(model.FixMakeValid, bowtie, nil)
	result := Apply(MakeValidFix{}, s)
	if !result.Success {
		t.Fatalf("expected make_valid to succeed on bowtie, got %+v", result)
	}
}

func TestDeleteFixAlwaysSucceedsWithNilGeometry(t *testing.T) {
	s := strategyFor(model.FixDelete, square(10, 0, 0), nil)
	result := Apply(DeleteFix{}, s)
	if !result.Success || result.FixedGeometry != nil {
		t.Fatalf("expected success with nil geometry, got %+v", result)
	}
}

func TestTrimFixRejectsExcessiveAreaLoss(t *testing.T) {
	base := square(10, 0, 0)
	// Overlap covers 81% of the base square.
	overlap := square(9, 0, 0)
	s := strategyFor(model.FixTrim, base, map[string]any{"overlap_geometry": orb.Geometry(overlap)})
	result := Apply(TrimFix{}, s)
	if result.Success {
		t.Fatalf("expected trim to fail validation when losing >70%% area, got %+v", result)
	}
}

func TestTrimFixAcceptsSliverRemoval(t *testing.T) {
	base := square(10, 0, 0)
	sliver := square(1, 9, 0)
	s := strategyFor(model.FixTrim, base, map[string]any{"overlap_geometry": orb.Geometry(sliver)})
	result := Apply(TrimFix{}, s)
	if !result.Success {
		t.Fatalf("expected trim of a small sliver to succeed, got %+v", result)
	}
}

func TestSnapFixAcceptsDistantTinyReference(t *testing.T) {
	base := square(10, 0, 0)
	ref := square(1, 100, 100)
	s := strategyFor(model.FixSnap, base, map[string]any{"reference_geometry": orb.Geometry(ref)})
	result := Apply(SnapFix{}, s)
	if !result.Success {
		t.Fatalf("expected snap against a distant tiny reference to still pass area bounds, got %+v", result)
	}
}

func TestClipFixRejectsBelowMinimumRetention(t *testing.T) {
	base := square(10, 0, 0)
	boundary := square(1, 0, 0)
	s := strategyFor(model.FixClip, base, map[string]any{"boundary_geometry": orb.Geometry(boundary)})
	result := Apply(ClipFix{}, s)
	if result.Success {
		t.Fatalf("expected clip retaining 1%% area to fail, got success=%v", result.Success)
	}
}

func TestNudgeFixPreservesArea(t *testing.T) {
	building := square(1, 0, 0)
	road := orb.LineString{{0, -0.5}, {10, -0.5}}
	s := strategyFor(model.FixNudge, building, map[string]any{
		"road_geometry":  orb.Geometry(road),
		"min_distance_m": 3.0,
	})
	result := Apply(NudgeFix{}, s)
	if !result.Success {
		t.Fatalf("expected nudge to succeed, got %+v", result)
	}
}

func TestFlagFixAlwaysPasses(t *testing.T) {
	s := strategyFor(model.FixFlag, square(10, 0, 0), nil)
	result := Apply(FlagFix{}, s)
	if !result.Success {
		t.Fatalf("expected flag fix to always pass, got %+v", result)
	}
}

func TestApplyRecoversFromPanickingExecute(t *testing.T) {
	s := strategyFor(model.FixMakeValid, nil, nil)
	result := Apply(panickyOp{}, s)
	if result.Success {
		t.Fatal("expected failure from a panicking operation")
	}
}

type panickyOp struct{}

func (panickyOp) Kind() model.FixKind { return model.FixMakeValid }
func (panickyOp) Execute(geometry orb.Geometry, params map[string]any) (orb.Geometry, error) {
	panic("boom")
}
func (panickyOp) Validate(original, fixed orb.Geometry) bool { return true }

func TestRegistryBuildDefaultHasAllExecutableKinds(t *testing.T) {
	reg := BuildDefaultRegistry(nil)
	for _, kind := range []model.FixKind{
		model.FixMakeValid, model.FixSimplify, model.FixDelete, model.FixTrim,
		model.FixMerge, model.FixSnap, model.FixClip, model.FixNudge, model.FixFlag,
	} {
		if _, ok := reg.Get(kind); !ok {
			t.Errorf("expected fix kind %s to be registered", kind)
		}
	}
	if _, ok := reg.Get(model.FixHumanReview); ok {
		t.Error("expected human_review to be absent from the registry")
	}
}

func floatsClose(a, b, eps float64) bool { return math.Abs(a-b) < eps }
