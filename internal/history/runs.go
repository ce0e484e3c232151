package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// timeLayout has fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Status values stored for a run.
const (
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// Run is one recorded conversion.
type Run struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	Status        string
	Format        string
	Mix           bool
	Normalize     bool
	Origin        string
	ArchiveDigest string
	OutputRoot    string
	Inputs        int
	Outputs       int
	ErrorKind     string
	ErrorMessage  string
	// ExitCode is set when the encoder exited non-zero.
	ExitCode *int
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Record inserts run.
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("history: run id is required")
	}
	var exitCode sql.NullInt64
	if run.ExitCode != nil {
		exitCode = sql.NullInt64{Int64: int64(*run.ExitCode), Valid: true}
	}
	return withBusyRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `INSERT INTO runs (
			id, started_at, finished_at, status, format, mix, normalize, origin,
			archive_digest, output_root, inputs, outputs, error_kind, error_message, exit_code
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.StartedAt.UTC().Format(timeLayout),
			run.FinishedAt.UTC().Format(timeLayout),
			run.Status,
			run.Format,
			boolToInt(run.Mix),
			boolToInt(run.Normalize),
			run.Origin,
			run.ArchiveDigest,
			run.OutputRoot,
			run.Inputs,
			run.Outputs,
			run.ErrorKind,
			run.ErrorMessage,
			exitCode,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		return nil
	})
}

// Recent returns up to limit runs, newest first. A limit below 1 returns all runs.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, started_at, finished_at, status, format, mix, normalize, origin,
		archive_digest, output_root, inputs, outputs, error_kind, error_message, exit_code
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run            Run
		started, ended string
		mix, normalize int
		exitCode       sql.NullInt64
	)
	if err := rows.Scan(
		&run.ID, &started, &ended, &run.Status, &run.Format, &mix, &normalize, &run.Origin,
		&run.ArchiveDigest, &run.OutputRoot, &run.Inputs, &run.Outputs, &run.ErrorKind, &run.ErrorMessage, &exitCode,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(ended)
	run.Mix = mix != 0
	run.Normalize = normalize != 0
	if exitCode.Valid {
		code := int(exitCode.Int64)
		run.ExitCode = &code
	}
	return run, nil
}

func parseTime(value string) time.Time {
	ts, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
