package violations

import (
	"context"
	"database/sql"
	"fmt"

	"proctor/internal/proctoring/models"
)

// PostgresStore writes to proctoring_violations. See migrations/.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO proctoring_violations (
			id, session_id, candidate_id, test_session_id, violation_type,
			severity, description, violation_time, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.SessionID, nullable(rec.CandidateID), nullable(rec.TestSessionID),
		string(rec.Type), rec.Severity.String(), rec.Description,
		rec.ViolationTime, rec.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert violation: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySession(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, candidate_id, test_session_id, violation_type,
			severity, description, violation_time, created_at
		FROM proctoring_violations
		WHERE session_id = $1
		ORDER BY violation_time, created_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query violations: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec                        Record
			candidateID, testSessionID sql.NullString
			violationType, severity    string
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &candidateID, &testSessionID,
			&violationType, &severity, &rec.Description, &rec.ViolationTime, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		rec.CandidateID = candidateID.String
		rec.TestSessionID = testSessionID.String
		if rec.Type, err = models.ParseViolationType(violationType); err != nil {
			return nil, err
		}
		if rec.Severity, err = models.ParseSeverity(severity); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate violations: %w", err)
	}
	return out, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
