package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/geofix-project/geofix-core/internal/audit"
	"github.com/geofix-project/geofix-core/internal/config"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/paulmach/orb"
)

func square(side, dx, dy float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{dx, dy}, {dx + side, dy}, {dx + side, dy + side}, {dx, dy + side}, {dx, dy},
	}}
}

func feature(id string, g orb.Geometry, source string, accuracy float64) model.Feature {
	return model.Feature{
		ID:       id,
		Geometry: g,
		Metadata: model.FeatureMetadata{Source: source, AccuracyM: accuracy, Confidence: 0.8},
	}
}

func testAuditLogger(t *testing.T) *audit.Logger {
	t.Helper()
	store, err := audit.Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("audit.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return audit.NewLogger(store, "test-session", nil)
}

func TestRunDeletesExactDuplicate(t *testing.T) {
	logger := testAuditLogger(t)
	p := New(Options{Config: config.Default(), Audit: logger, RulesOnly: true})

	features := []model.Feature{
		feature("a", square(10, 0, 0), "survey", 1.0),
		feature("b", square(10, 0, 0), "survey", 1.0),
	}
	result, err := p.Run(context.Background(), features, nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Features) != 1 {
		t.Fatalf("expected exact duplicate to delete one feature, got %d remaining: %+v", len(result.Features), result.Features)
	}
	if result.Features[0].ID != "a" {
		t.Fatalf("expected feature %q to survive (rule deletes AffectedFeatures[1]), got %q", "a", result.Features[0].ID)
	}

	summary, err := logger.SessionSummary()
	if err != nil {
		t.Fatalf("SessionSummary: %v", err)
	}
	if summary.Applied == 0 {
		t.Fatalf("expected at least one applied audit entry, got %+v", summary)
	}
}

func TestRunFixesInvalidGeometry(t *testing.T) {
	logger := testAuditLogger(t)
	p := New(Options{Config: config.Default(), Audit: logger, RulesOnly: true})

	bowtie := orb.Polygon{orb.Ring{{0, 0}, {10, 10}, {10, 0}, {0, 10}, {0, 0}}}
	features := []model.Feature{feature("bad", bowtie, "osm", 5.0)}

	result, err := p.Run(context.Background(), features, nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Errors) != 1 || result.Errors[0].Kind != model.ErrorInvalidGeometry {
		t.Fatalf("expected a single invalid_geometry error, got %+v", result.Errors)
	}
	if len(result.FixResults) != 1 {
		t.Fatalf("expected one fix outcome, got %d", len(result.FixResults))
	}
	outcome := result.FixResults[0]
	if outcome.Strategy.Kind != model.FixMakeValid {
		t.Fatalf("expected make_valid strategy, got %v", outcome.Strategy.Kind)
	}
}

func TestRunNudgesBuildingOffRoad(t *testing.T) {
	logger := testAuditLogger(t)
	p := New(Options{Config: config.Default(), Audit: logger, RulesOnly: true})

	road := orb.LineString{{-50, 5}, {50, 5}}
	features := []model.Feature{feature("onroad", square(1, 4, 4), "osm", 3.0)}

	result, err := p.Run(context.Background(), features, []orb.Geometry{road}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Features) != 1 {
		t.Fatalf("expected the building to survive nudge (not deleted), got %+v", result.Features)
	}
	foundNudge := false
	for _, o := range result.FixResults {
		if o.Strategy.Kind == model.FixNudge {
			foundNudge = true
			if o.Action != model.ActionApplied {
				t.Fatalf("expected nudge to be applied, got action %v (result=%+v)", o.Action, o.Result)
			}
		}
	}
	if !foundNudge {
		t.Fatalf("expected a nudge strategy for building_on_road, got %+v", result.FixResults)
	}
}

func TestRunClipsBoundaryOverlap(t *testing.T) {
	logger := testAuditLogger(t)
	p := New(Options{Config: config.Default(), Audit: logger, RulesOnly: true})

	boundary := square(10, 0, 0)
	features := []model.Feature{feature("edge", square(4, 8, 8), "osm", 5.0)}

	result, err := p.Run(context.Background(), features, nil, boundary)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.FixResults) == 0 {
		t.Fatal("expected at least one fix outcome for the boundary overlap")
	}
	for _, o := range result.FixResults {
		if o.Strategy.Kind == model.FixClip && o.Action != model.ActionApplied {
			t.Fatalf("expected clip to apply cleanly, got %v", o.Action)
		}
	}
}

func TestRunRespectsContextCancellation(t *testing.T) {
	logger := testAuditLogger(t)
	p := New(Options{Config: config.Default(), Audit: logger, RulesOnly: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	features := []model.Feature{feature("tiny", square(0.1, 0, 0), "osm", 5.0)}
	_, err := p.Run(ctx, features, nil, nil)
	if err == nil {
		t.Fatal("expected an error from a pre-cancelled context")
	}
}
