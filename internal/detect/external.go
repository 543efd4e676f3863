package detect

import (
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// severityForKind mirrors ovc_bridge.py's _SEVERITY_MAP: an upstream
// detector classifies errors by kind only, so GeoFix assigns the same
// per-kind severity its own detector would.
var severityForKind = map[model.ErrorKind]model.Severity{
	model.ErrorBuildingOverlap:         model.SeverityHigh,
	model.ErrorBuildingOnRoad:          model.SeverityHigh,
	model.ErrorBuildingBoundaryOverlap: model.SeverityMedium,
	model.ErrorOutsideBoundary:         model.SeverityMedium,
	model.ErrorDuplicateGeometry:       model.SeverityCritical,
	model.ErrorInvalidGeometry:         model.SeverityHigh,
	model.ErrorUnreasonableArea:        model.SeverityMedium,
	model.ErrorLowCompactness:          model.SeverityLow,
	model.ErrorRoadSetback:             model.SeverityMedium,
	model.ErrorEmptyGeometry:           model.SeverityHigh,
}

// ExternalErrorRow is one row of an already-detected error, as an
// upstream tool (e.g. OVC) would hand it over: a kind tag, a witnessing
// geometry, the affected feature IDs, and whatever numeric/string
// properties it already computed.
type ExternalErrorRow struct {
	Kind             model.ErrorKind
	Geometry         orb.Geometry
	AffectedFeatures []string
	Properties       map[string]float64
	PropertyTags     map[string]string
	Source           string
}

// FromExternal converts externally detected error rows into
// model.DetectedError, validating each kind against the closed catalog
// (§9) and assigning severity the way this package's own detector would.
// Rows with an unrecognized kind are rejected outright rather than
// silently passed through with an open string tag.
func FromExternal(rows []ExternalErrorRow) ([]model.DetectedError, error) {
	out := make([]model.DetectedError, 0, len(rows))
	for _, row := range rows {
		if !model.ValidErrorKind(row.Kind) {
			continue
		}
		sev, ok := severityForKind[row.Kind]
		if !ok {
			sev = model.SeverityMedium
		}
		out = append(out, model.DetectedError{
			ID:               uuid.NewString(),
			Kind:             row.Kind,
			Severity:         sev,
			Geometry:         row.Geometry,
			AffectedFeatures: row.AffectedFeatures,
			Properties:       row.Properties,
			PropertyTags:     row.PropertyTags,
			Provenance:       row.Source,
		})
	}
	sortByEmissionOrder(out)
	return out, nil
}
