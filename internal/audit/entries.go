package audit

import (
	"fmt"
	"time"

	"github.com/geofix-project/geofix-core/internal/model"
)

// Insert appends one audit entry and returns its row ID. Rows are never
// updated or deleted afterward.
func (s *Store) Insert(e model.AuditEntry) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO audit_log (
			timestamp, session_id, feature_id, error_kind, error_id,
			fix_kind, tier, confidence, rationale, before_wkt, after_wkt,
			action, validation_ok, new_errors
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		e.SessionID,
		e.FeatureID,
		string(e.ErrorKind),
		e.ErrorID,
		string(e.FixKind),
		string(e.Tier),
		e.Confidence,
		e.Rationale,
		nullableString(e.BeforeWKT),
		nullableString(e.AfterWKT),
		string(e.Action),
		boolToInt(e.ValidationOK),
		e.NewErrors,
	)
	if err != nil {
		return 0, fmt.Errorf("insert audit entry: %w", err)
	}
	return res.LastInsertId()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// QueryFilter selects a subset of audit rows. Zero-value fields are
// ignored (no filter on that column).
type QueryFilter struct {
	FeatureID string
	SessionID string
	ErrorKind model.ErrorKind
	Limit     int
}

// Row is one audit_log row, including its autoincrement ID.
type Row struct {
	ID int64
	model.AuditEntry
}

// Query returns audit rows matching the filter, most recent first.
func (s *Store) Query(f QueryFilter) ([]Row, error) {
	sqlStr := "SELECT id, timestamp, session_id, feature_id, error_kind, error_id, fix_kind, tier, confidence, rationale, before_wkt, after_wkt, action, validation_ok, new_errors FROM audit_log WHERE 1=1"
	var args []any

	if f.FeatureID != "" {
		sqlStr += " AND feature_id = ?"
		args = append(args, f.FeatureID)
	}
	if f.SessionID != "" {
		sqlStr += " AND session_id = ?"
		args = append(args, f.SessionID)
	}
	if f.ErrorKind != "" {
		sqlStr += " AND error_kind = ?"
		args = append(args, string(f.ErrorKind))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	sqlStr += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var ts string
		var beforeWKT, afterWKT *string
		var validationOK, newErrors int
		if err := rows.Scan(&r.ID, &ts, &r.SessionID, &r.FeatureID, &r.ErrorKind, &r.ErrorID,
			&r.FixKind, &r.Tier, &r.Confidence, &r.Rationale, &beforeWKT, &afterWKT,
			&r.Action, &validationOK, &newErrors); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			r.Timestamp = parsed
		}
		if beforeWKT != nil {
			r.BeforeWKT = *beforeWKT
		}
		if afterWKT != nil {
			r.AfterWKT = *afterWKT
		}
		r.ValidationOK = validationOK != 0
		r.NewErrors = newErrors
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the total number of audit rows, optionally restricted to
// a session.
func (s *Store) Count(sessionID string) (int, error) {
	var count int
	var err error
	if sessionID != "" {
		err = s.db.QueryRow("SELECT COUNT(*) FROM audit_log WHERE session_id = ?", sessionID).Scan(&count)
	} else {
		err = s.db.QueryRow("SELECT COUNT(*) FROM audit_log").Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count audit log: %w", err)
	}
	return count, nil
}

// Summary is the session activity aggregate §4.5 requires on demand.
type Summary struct {
	Total          int
	Applied        int
	RolledBack     int
	Skipped        int
	PendingReview  int
}

// SessionSummary aggregates action counts for the given session.
func (s *Store) SessionSummary(sessionID string) (Summary, error) {
	rows, err := s.Query(QueryFilter{SessionID: sessionID, Limit: 1_000_000})
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Total: len(rows)}
	for _, r := range rows {
		switch r.Action {
		case model.ActionApplied:
			sum.Applied++
		case model.ActionRolledBack:
			sum.RolledBack++
		case model.ActionSkipped:
			sum.Skipped++
		case model.ActionPendingReview:
			sum.PendingReview++
		}
	}
	return sum, nil
}
