package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/alert-service/internal/gate"
)

// PostgresHistoryStore is the durable append-only application history log.
// The daily cap is always derived by counting rows — there is no separate
// counter to drift out of sync with the log.
type PostgresHistoryStore struct {
	pool *pgxpool.Pool
}

// NewPostgresHistoryStore wraps an already-connected pgx pool.
func NewPostgresHistoryStore(pool *pgxpool.Pool) *PostgresHistoryStore {
	return &PostgresHistoryStore{pool: pool}
}

// EnsureSchema creates the history table when it does not exist yet.
func (s *PostgresHistoryStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS application_history (
			id             BIGSERIAL PRIMARY KEY,
			job_id         TEXT NOT NULL,
			employer_name  TEXT NOT NULL DEFAULT '',
			applied_on     DATE NOT NULL,
			status         TEXT NOT NULL,
			outcome_detail TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("history store: ensure schema: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS idx_application_history_job_id ON application_history (job_id)`)
	if err != nil {
		return fmt.Errorf("history store: ensure index: %w", err)
	}
	return nil
}

// Append inserts one history record. Rows are never deleted.
func (s *PostgresHistoryStore) Append(ctx context.Context, rec gate.ApplicationRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO application_history (job_id, employer_name, applied_on, status, outcome_detail, created_at)
		 VALUES ($1, $2, $3::date, $4, $5, $6)`,
		rec.JobID, rec.EmployerName, rec.Day, string(rec.Status), rec.OutcomeDetail, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("history store: append %s: %w", rec.JobID, err)
	}
	return nil
}

// Finalize moves the most recent open PREPARED record for jobID to its
// terminal status.
func (s *PostgresHistoryStore) Finalize(ctx context.Context, jobID string, status gate.Status, detail string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE application_history
		 SET status = $2, outcome_detail = $3, updated_at = NOW()
		 WHERE id = (
		   SELECT id FROM application_history
		   WHERE job_id = $1 AND status = 'PREPARED'
		   ORDER BY created_at DESC
		   LIMIT 1
		 )`,
		jobID, string(status), detail,
	)
	if err != nil {
		return fmt.Errorf("history store: finalize %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("history store: no open reservation for %s", jobID)
	}
	return nil
}

// HasNonFailed reports whether jobID ever produced a record that was not
// finalized as FAILED, on any day.
func (s *PostgresHistoryStore) HasNonFailed(ctx context.Context, jobID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM application_history WHERE job_id = $1 AND status <> 'FAILED'
		 )`,
		jobID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("history store: lookup %s: %w", jobID, err)
	}
	return exists, nil
}

// CountNonFailed counts the non-failed records for one calendar day.
func (s *PostgresHistoryStore) CountNonFailed(ctx context.Context, day string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM application_history WHERE applied_on = $1::date AND status <> 'FAILED'`,
		day,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("history store: count %s: %w", day, err)
	}
	return n, nil
}
