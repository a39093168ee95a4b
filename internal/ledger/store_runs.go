package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const runSummaryQuery = `
SELECT r.id, r.started_at, r.finished_at, r.job_count,
       COALESCE(SUM(CASE WHEN j.outcome = ? THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN j.outcome = ? THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN j.outcome = ? THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN j.outcome = ? THEN 1 ELSE 0 END), 0)
FROM runs r
LEFT JOIN jobs j ON j.run_id = r.id`

// BeginRun inserts a new run row and returns it. The caller records one job
// per episode against the returned run ID as jobs finish.
func (s *Store) BeginRun(ctx context.Context, jobCount int) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		JobCount:  jobCount,
	}

	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, started_at, job_count) VALUES (?, ?, ?)`,
		run.ID, run.StartedAt.Format(time.RFC3339Nano), run.JobCount)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stamps the run's finish time.
func (s *Store) FinishRun(ctx context.Context, runID string) error {
	if runID == "" {
		return errors.New("run id required")
	}
	finished := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`, finished, runID); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordJob appends a finished job to the run's history and fills in the
// record's ID. Jobs from concurrent workers may arrive interleaved; ordering
// within a run follows insertion.
func (s *Store) RecordJob(ctx context.Context, record *JobRecord) error {
	if record == nil {
		return errors.New("job record required")
	}
	if record.RunID == "" {
		return errors.New("job record missing run id")
	}

	result, err := s.execWithRetry(ctx,
		`INSERT INTO jobs (run_id, episode, title, outcome, detail, output_file, media_duration_seconds, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.RunID,
		record.Episode,
		nullableString(record.Title),
		nullableString(string(record.Outcome)),
		nullableString(record.Detail),
		nullableString(record.OutputFile),
		record.MediaDurationSeconds,
		record.StartedAt.UTC().Format(time.RFC3339Nano),
		nullableTime(record.FinishedAt))
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("read job id: %w", err)
	}
	record.ID = id
	return nil
}

// GetRun returns one run with its per-outcome counts, or nil when no run
// with that ID exists.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	query := runSummaryQuery + `
WHERE r.id = ?
GROUP BY r.id`

	ctx = ensureContext(ctx)
	var run *Run
	err := retryOnBusy(ctx, func() error {
		row := s.db.QueryRowContext(ctx, query,
			OutcomeCompleted, OutcomeSkipped, OutcomeFailed, OutcomeCancelled, runID)
		scanned, err := scanRun(row)
		if err != nil {
			return err
		}
		run = scanned
		return nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// RecentRuns returns the newest runs first, each with per-outcome counts.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 10
	}
	query := runSummaryQuery + `
GROUP BY r.id
ORDER BY r.started_at DESC
LIMIT ?`

	ctx = ensureContext(ctx)
	var runs []*Run
	err := retryOnBusy(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, query,
			OutcomeCompleted, OutcomeSkipped, OutcomeFailed, OutcomeCancelled, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		runs = runs[:0]
		for rows.Next() {
			run, err := scanRun(rows)
			if err != nil {
				return err
			}
			runs = append(runs, run)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// JobsForRun returns the jobs recorded against a run in insertion order.
func (s *Store) JobsForRun(ctx context.Context, runID string) ([]*JobRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE run_id = ? ORDER BY id`, jobColumns)

	ctx = ensureContext(ctx)
	var records []*JobRecord
	err := retryOnBusy(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, query, runID)
		if err != nil {
			return err
		}
		defer rows.Close()

		records = records[:0]
		for rows.Next() {
			record, err := scanJob(rows)
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return records, nil
}
