package geojsonio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/geofix-project/geofix-core/internal/audit"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/paulmach/orb"
)

func TestReadFeaturesAppliesDefaults(t *testing.T) {
	in := `{"type":"FeatureCollection","features":[
		{"type":"Feature","id":"bldg-1","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]},"properties":{}}
	]}`
	features, err := ReadFeatures(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadFeatures: %v", err)
	}
	if len(features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(features))
	}
	f := features[0]
	if f.ID != "bldg-1" {
		t.Fatalf("expected id bldg-1, got %q", f.ID)
	}
	if f.Metadata.Source != "unknown" || f.Metadata.AccuracyM != 10.0 || f.Metadata.Confidence != 0.5 {
		t.Fatalf("expected default metadata, got %+v", f.Metadata)
	}
}

func TestReadFeaturesHonorsExplicitMetadata(t *testing.T) {
	in := `{"type":"FeatureCollection","features":[
		{"type":"Feature","id":"bldg-2","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]},
		 "properties":{"source":"survey","accuracy_m":0.5,"confidence":0.9}}
	]}`
	features, err := ReadFeatures(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadFeatures: %v", err)
	}
	if features[0].Metadata.Source != "survey" || features[0].Metadata.AccuracyM != 0.5 {
		t.Fatalf("expected explicit metadata to override defaults, got %+v", features[0].Metadata)
	}
}

func TestWriteFeaturesRoundTrips(t *testing.T) {
	features := []model.Feature{
		{
			ID:       "a",
			Geometry: orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}},
			Metadata: model.FeatureMetadata{Source: "osm", AccuracyM: 3.0, Confidence: 0.7},
		},
	}
	var buf bytes.Buffer
	if err := WriteFeatures(&buf, features); err != nil {
		t.Fatalf("WriteFeatures: %v", err)
	}
	roundTripped, err := ReadFeatures(&buf)
	if err != nil {
		t.Fatalf("ReadFeatures after WriteFeatures: %v", err)
	}
	if len(roundTripped) != 1 || roundTripped[0].ID != "a" || roundTripped[0].Metadata.Source != "osm" {
		t.Fatalf("round trip mismatch: %+v", roundTripped)
	}
}

func TestWriteAuditSummary(t *testing.T) {
	var buf bytes.Buffer
	summary := audit.Summary{Total: 4, Applied: 2, RolledBack: 1, Skipped: 0, PendingReview: 1}
	if err := WriteAuditSummary(&buf, "sess-1", summary); err != nil {
		t.Fatalf("WriteAuditSummary: %v", err)
	}
	if !strings.Contains(buf.String(), `"applied": 2`) {
		t.Fatalf("expected applied count in output, got %s", buf.String())
	}
}
