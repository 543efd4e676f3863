// Package geojsonio is a thin, optional GeoJSON bridge: it exists solely
// so cmd/geofix has something runnable to demonstrate the pipeline
// end-to-end. Per spec.md §1, file-format readers/writers are a caller
// concern, out of scope for the core — this package is never imported by
// internal/pipeline or any other core package.
//
// Generalized from the teacher's internal/geojson.Converter (ToGeoJSON,
// ToGeoJSONBytes), swapping its raster-layer types.Feature for
// model.Feature and adding the reverse direction (ReadFeatures) the
// teacher never needed, since it only ever wrote map layers, never read
// building footprints back in.
package geojsonio

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/geofix-project/geofix-core/internal/audit"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/paulmach/orb/geojson"
)

// ReadFeatures parses a GeoJSON FeatureCollection into GeoFix features.
// Per spec.md §6, a feature's metadata fields default when absent:
// source="unknown", accuracy_m=10.0, confidence=0.5, source_date=null.
func ReadFeatures(r io.Reader) ([]model.Feature, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	out := make([]model.Feature, 0, len(fc.Features))
	for i, gf := range fc.Features {
		id := featureID(gf, i)
		meta := model.DefaultFeatureMetadata(id)
		if v, ok := gf.Properties["source"].(string); ok && v != "" {
			meta.Source = v
		}
		if v, ok := gf.Properties["accuracy_m"].(float64); ok {
			meta.AccuracyM = v
		}
		if v, ok := gf.Properties["confidence"].(float64); ok {
			meta.Confidence = v
		}
		if v, ok := gf.Properties["source_date"].(string); ok && v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				meta.SourceDate = &t
			}
		}
		if tags, ok := gf.Properties["tags"].(map[string]any); ok {
			meta.Tags = make(map[string]string, len(tags))
			for k, v := range tags {
				if s, ok := v.(string); ok {
					meta.Tags[k] = s
				}
			}
		}
		out = append(out, model.Feature{ID: id, Geometry: gf.Geometry, Metadata: meta})
	}
	return out, nil
}

func featureID(gf *geojson.Feature, index int) string {
	if s, ok := gf.ID.(string); ok && s != "" {
		return s
	}
	if v, ok := gf.Properties["id"].(string); ok && v != "" {
		return v
	}
	return fmt.Sprintf("feature-%d", index)
}

// WriteFeatures serializes the updated feature set back to a GeoJSON
// FeatureCollection, the mirror image of ReadFeatures.
func WriteFeatures(w io.Writer, features []model.Feature) error {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		gf := geojson.NewFeature(f.Geometry)
		gf.ID = f.ID
		gf.Properties = map[string]any{
			"source":     f.Metadata.Source,
			"accuracy_m": f.Metadata.AccuracyM,
			"confidence": f.Metadata.Confidence,
		}
		if f.Metadata.SourceDate != nil {
			gf.Properties["source_date"] = f.Metadata.SourceDate.Format(time.RFC3339)
		}
		if len(f.Metadata.Tags) > 0 {
			tags := make(map[string]any, len(f.Metadata.Tags))
			for k, v := range f.Metadata.Tags {
				tags[k] = v
			}
			gf.Properties["tags"] = tags
		}
		fc.Append(gf)
	}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal geojson: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// auditSummaryView is the JSON shape WriteAuditSummary emits: a session
// aggregate (audit.Summary) is not itself geometry-bearing, so it is
// written as plain JSON rather than forced into a GeoJSON envelope.
type auditSummaryView struct {
	SessionID     string `json:"session_id"`
	Total         int    `json:"total"`
	Applied       int    `json:"applied"`
	RolledBack    int    `json:"rolled_back"`
	Skipped       int    `json:"skipped"`
	PendingReview int    `json:"pending_review"`
}

// WriteAuditSummary writes a session's audit.Summary as JSON, the
// demonstration counterpart to audit.Logger.SessionSummary.
func WriteAuditSummary(w io.Writer, sessionID string, summary audit.Summary) error {
	view := auditSummaryView{
		SessionID:     sessionID,
		Total:         summary.Total,
		Applied:       summary.Applied,
		RolledBack:    summary.RolledBack,
		Skipped:       summary.Skipped,
		PendingReview: summary.PendingReview,
	}
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal audit summary: %w", err)
	}
	_, err = w.Write(data)
	return err
}
