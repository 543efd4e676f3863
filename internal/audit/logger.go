package audit

import (
	"log/slog"

	"github.com/geofix-project/geofix-core/internal/geomops"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/google/uuid"
)

// Logger is the high-level façade the pipeline writes through: it turns a
// FixResult plus an action into an AuditEntry and inserts it, stamping
// every row with the logger's session ID.
type Logger struct {
	store     *Store
	SessionID string
	logger    *slog.Logger
}

// NewLogger wraps a Store with a session ID. An empty sessionID generates
// a new random one (first 8 hex chars of a UUIDv4, matching the teacher
// corpus's short-session-ID convention).
func NewLogger(store *Store, sessionID string, logger *slog.Logger) *Logger {
	if sessionID == "" {
		sessionID = uuid.NewString()[:8]
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{store: store, SessionID: sessionID, logger: logger}
}

// LogFix writes one fix result as an audit entry under the given feature
// ID and action, returning the inserted row ID.
func (l *Logger) LogFix(result *model.FixResult, featureID string, action model.AuditAction) (int64, error) {
	strategy := result.Strategy
	entry := model.AuditEntry{
		Timestamp:    result.Timestamp,
		SessionID:    l.SessionID,
		FeatureID:    featureID,
		ErrorKind:    strategy.Error.Kind,
		ErrorID:      strategy.Error.ID,
		FixKind:      strategy.Kind,
		Tier:         strategy.Tier,
		Confidence:   strategy.Confidence,
		Rationale:    strategy.Rationale,
		BeforeWKT:    geomops.ToWKT(result.OriginalGeometry),
		AfterWKT:     geomops.ToWKT(result.FixedGeometry),
		Action:       action,
		ValidationOK: result.ValidationPassed,
		NewErrors:    result.NewErrorsCount,
	}
	id, err := l.store.Insert(entry)
	if err != nil {
		return 0, err
	}
	l.logger.Info("audit logged", "feature_id", featureID, "action", action, "fix_kind", strategy.Kind, "confidence", strategy.Confidence)
	return id, nil
}

// History returns audit rows for a feature/error-kind filter.
func (l *Logger) History(featureID string, errorKind model.ErrorKind, limit int) ([]Row, error) {
	return l.store.Query(QueryFilter{FeatureID: featureID, ErrorKind: errorKind, Limit: limit})
}

// SessionSummary aggregates this logger's session activity.
func (l *Logger) SessionSummary() (Summary, error) {
	return l.store.SessionSummary(l.SessionID)
}

// Close closes the underlying store.
func (l *Logger) Close() error {
	return l.store.Close()
}
