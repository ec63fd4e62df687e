// internal/report/repository.go

// Package report persists and fans out the final call outcome: a durable
// row in Postgres, the full decision trace in Elasticsearch, and an
// email/SMS notification for strong leads.
package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	commonerrors "coldcall-backend/internal/common/errors"
	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/engine"
)

// Repository writes call reports to Postgres. It takes *sql.DB rather
// than the client wrapper so tests can hand it a mock.
type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	return &Repository{
		db: db,
		logger: log.WithFields(map[string]interface{}{
			"component": "report-repository",
		}),
	}
}

const insertReportQuery = `
	INSERT INTO call_reports (
		session_id, score, label, end_reason, turns,
		learned_fields, breakdown, summary, recommended_next_action, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (session_id) DO NOTHING`

// InsertReport stores the final outcome. Re-inserting the same session
// is a no-op so finalization can be retried safely.
func (r *Repository) InsertReport(ctx context.Context, outcome *engine.Outcome) error {
	learned, err := json.Marshal(outcome.LearnedFields)
	if err != nil {
		return commonerrors.NewReportPersistFailedError(err)
	}
	breakdown, err := json.Marshal(outcome.Breakdown)
	if err != nil {
		return commonerrors.NewReportPersistFailedError(err)
	}

	_, err = r.db.ExecContext(ctx, insertReportQuery,
		outcome.SessionID,
		outcome.Score,
		outcome.Label,
		string(outcome.EndReason),
		outcome.Turns,
		learned,
		breakdown,
		outcome.Summary,
		outcome.RecommendedNextAction,
		time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error("report insert failed", map[string]interface{}{
			"sessionId": outcome.SessionID,
			"error":     err.Error(),
		})
		return commonerrors.NewReportPersistFailedError(err)
	}
	return nil
}

const getReportQuery = `
	SELECT session_id, score, label, end_reason, turns,
	       learned_fields, breakdown, summary, recommended_next_action
	FROM call_reports
	WHERE session_id = $1`

// GetReport loads a stored outcome by session.
func (r *Repository) GetReport(ctx context.Context, sessionID string) (*engine.Outcome, error) {
	var (
		out       engine.Outcome
		endReason string
		learned   []byte
		breakdown []byte
	)
	err := r.db.QueryRowContext(ctx, getReportQuery, sessionID).Scan(
		&out.SessionID,
		&out.Score,
		&out.Label,
		&endReason,
		&out.Turns,
		&learned,
		&breakdown,
		&out.Summary,
		&out.RecommendedNextAction,
	)
	if err == sql.ErrNoRows {
		return nil, commonerrors.NewSessionNotFoundError(sessionID)
	}
	if err != nil {
		return nil, commonerrors.NewReportPersistFailedError(err)
	}

	out.EndReason = engine.EndReason(endReason)
	if err := json.Unmarshal(learned, &out.LearnedFields); err != nil {
		return nil, commonerrors.NewReportPersistFailedError(err)
	}
	if err := json.Unmarshal(breakdown, &out.Breakdown); err != nil {
		return nil, commonerrors.NewReportPersistFailedError(err)
	}
	return &out, nil
}
