package ledger

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "id, run_id, episode, title, outcome, detail, output_file, media_duration_seconds, started_at, finished_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*JobRecord, error) {
	var (
		id            int64
		runID         string
		episode       string
		title         sql.NullString
		outcome       sql.NullString
		detail        sql.NullString
		outputFile    sql.NullString
		mediaDuration sql.NullFloat64
		startedRaw    string
		finishedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&runID,
		&episode,
		&title,
		&outcome,
		&detail,
		&outputFile,
		&mediaDuration,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	record := &JobRecord{
		ID:                   id,
		RunID:                runID,
		Episode:              episode,
		Title:                title.String,
		Outcome:              Outcome(outcome.String),
		Detail:               detail.String,
		OutputFile:           outputFile.String,
		MediaDurationSeconds: mediaDuration.Float64,
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		record.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			record.FinishedAt = &finished
		}
	}
	return record, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id          string
		startedRaw  string
		finishedRaw sql.NullString
		jobCount    int
		completed   int
		skipped     int
		failed      int
		cancelled   int
	)

	if err := scanner.Scan(
		&id,
		&startedRaw,
		&finishedRaw,
		&jobCount,
		&completed,
		&skipped,
		&failed,
		&cancelled,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:        id,
		JobCount:  jobCount,
		Completed: completed,
		Skipped:   skipped,
		Failed:    failed,
		Cancelled: cancelled,
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
