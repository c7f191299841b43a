package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RunRepository struct {
	db *DB
}

var _ RunStore = (*RunRepository)(nil)

func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) RecordRun(ctx context.Context, run Run) error {
	if run.SourceID == "" {
		return fmt.Errorf("source id is required")
	}

	switch run.Status {
	case RunStatusOK, RunStatusDegraded, RunStatusFailed:
	default:
		return fmt.Errorf("invalid run status: %q", run.Status)
	}

	if run.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate run id: %w", err)
		}
		run.ID = id.String()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (id, source_id, started_at, duration_ms, item_count, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.SourceID, run.StartedAt.UnixMilli(), run.Duration.Milliseconds(), run.ItemCount, string(run.Status), run.Error)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	return nil
}

func (r *RunRepository) GetRunCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get run count: %w", err)
	}
	return count, nil
}

// GetSourceStats aggregates the run log per source, ordered by source id.
func (r *RunRepository) GetSourceStats(ctx context.Context) ([]SourceStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT source_id,
		       COUNT(*),
		       SUM(CASE WHEN status = 'ok' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN status = 'degraded' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END),
		       MAX(started_at),
		       CAST(AVG(duration_ms) AS INTEGER),
		       (SELECT latest.status FROM runs latest
		        WHERE latest.source_id = runs.source_id
		        ORDER BY latest.started_at DESC, latest.id DESC
		        LIMIT 1)
		FROM runs
		GROUP BY source_id
		ORDER BY source_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get source stats: %w", err)
	}
	defer rows.Close()

	var stats []SourceStats
	for rows.Next() {
		var s SourceStats
		var lastRunMillis, averageMillis int64
		var lastStatus string

		if err := rows.Scan(&s.SourceID, &s.Runs, &s.OK, &s.Degraded, &s.Failed, &lastRunMillis, &averageMillis, &lastStatus); err != nil {
			return nil, fmt.Errorf("failed to scan source stats row: %w", err)
		}

		s.LastRunAt = time.UnixMilli(lastRunMillis)
		s.AverageDuration = time.Duration(averageMillis) * time.Millisecond
		s.LastStatus = RunStatus(lastStatus)
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate source stats: %w", err)
	}

	return stats, nil
}
