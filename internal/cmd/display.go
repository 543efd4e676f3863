package cmd

import (
	"github.com/geofix-project/geofix-core/internal/geomops"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/geofix-project/geofix-core/internal/pipeline"
)

// errorView is DetectedError reshaped for human-readable JSON output: the
// CLI's only consumer is a terminal or a log pipeline, so geometry is
// rendered as WKT rather than the bare coordinate arrays orb.Geometry's
// underlying slice/array kinds would otherwise marshal to.
type errorView struct {
	ID               string            `json:"id"`
	Kind             model.ErrorKind   `json:"kind"`
	Severity         model.Severity    `json:"severity"`
	GeometryWKT      string            `json:"geometry_wkt,omitempty"`
	AffectedFeatures []string          `json:"affected_features"`
	Properties       map[string]float64 `json:"properties,omitempty"`
	PropertyTags     map[string]string  `json:"property_tags,omitempty"`
	Provenance       string            `json:"provenance"`
}

func toErrorViews(errs []model.DetectedError) []errorView {
	out := make([]errorView, len(errs))
	for i, e := range errs {
		out[i] = errorView{
			ID:               e.ID,
			Kind:             e.Kind,
			Severity:         e.Severity,
			GeometryWKT:      geomops.ToWKT(e.Geometry),
			AffectedFeatures: e.AffectedFeatures,
			Properties:       e.Properties,
			PropertyTags:     e.PropertyTags,
			Provenance:       e.Provenance,
		}
	}
	return out
}

// fixOutcomeView is pipeline.FixOutcome reshaped the same way.
type fixOutcomeView struct {
	FeatureID  string            `json:"feature_id"`
	ErrorKind  model.ErrorKind   `json:"error_kind"`
	FixKind    model.FixKind     `json:"fix_kind"`
	Tier       model.Tier        `json:"tier"`
	Confidence float64           `json:"confidence"`
	Action     model.AuditAction `json:"action"`
	Rationale  string            `json:"rationale"`
}

func toFixOutcomeViews(outcomes []pipeline.FixOutcome) []fixOutcomeView {
	out := make([]fixOutcomeView, len(outcomes))
	for i, o := range outcomes {
		view := fixOutcomeView{
			FeatureID: o.FeatureID,
			Action:    o.Action,
		}
		if o.Strategy != nil {
			view.FixKind = o.Strategy.Kind
			view.Tier = o.Strategy.Tier
			view.Confidence = o.Strategy.Confidence
			view.Rationale = o.Strategy.Rationale
			if o.Strategy.Error != nil {
				view.ErrorKind = o.Strategy.Error.Kind
			}
		}
		out[i] = view
	}
	return out
}
