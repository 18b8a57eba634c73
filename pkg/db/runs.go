package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dtnitsch/whatif/models"
)

// Run kinds.
const (
	RunSync             = "sync"
	RunDownloadAll      = "download-all"
	RunDownloadOverview = "download-overview"
)

// Run records one sync or batch download.
type Run struct {
	RunID        int64
	Kind         string
	StartedAt    time.Time
	FinishedAt   *time.Time
	TotalCount   int
	SuccessCount int
	FailedCount  int
	Status       string
	ErrorMessage string
}

// StartRun opens a run record and returns its id.
func (db *DB) StartRun(ctx context.Context, kind string) (int64, error) {
	res, err := db.ExecContext(ctx, "INSERT INTO sync_runs (kind) VALUES (?)", kind)
	if err != nil {
		return 0, fmt.Errorf("failed to start run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return id, nil
}

// FinishRun closes a run record with its final counts.
func (db *DB) FinishRun(ctx context.Context, runID int64, status models.Status, total, succeeded, failed int, runErr error) error {
	var msg sql.NullString
	if runErr != nil {
		msg = sql.NullString{String: runErr.Error(), Valid: true}
	}
	_, err := db.ExecContext(ctx, `
		UPDATE sync_runs
		SET finished_at = CURRENT_TIMESTAMP, status = ?, total_count = ?,
		    success_count = ?, failed_count = ?, error_message = ?
		WHERE run_id = ?
	`, string(status), total, succeeded, failed, msg, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", runID, err)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, kind, started_at, finished_at, total_count, success_count,
		       failed_count, status, error_message
		FROM sync_runs
		ORDER BY run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		var msg sql.NullString
		if err := rows.Scan(&r.RunID, &r.Kind, &r.StartedAt, &finished, &r.TotalCount,
			&r.SuccessCount, &r.FailedCount, &r.Status, &msg); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if finished.Valid {
			r.FinishedAt = &finished.Time
		}
		r.ErrorMessage = msg.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
