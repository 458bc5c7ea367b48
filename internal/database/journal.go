package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StartRun inserts run and returns its ID. A new UUID is assigned when
// run.ID is empty.
func (d *Database) StartRun(ctx context.Context, run Run) (id string, err error) {
	start := time.Now()
	defer func() { recordQuery("start_run", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO runs (id, folder, photo_target, video_target, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Folder, run.PhotoTarget, run.VideoTarget, run.StartedAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	return run.ID, nil
}

// FinishRun stores the final totals of a run.
func (d *Database) FinishRun(ctx context.Context, runID string, totals RunTotals) (err error) {
	start := time.Now()
	defer func() { recordQuery("finish_run", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := d.db.ExecContext(ctx, `
		UPDATE runs SET
			finished_at = ?,
			files_total = ?,
			files_done = ?,
			original_bytes = ?,
			new_bytes = ?,
			cancelled = ?
		WHERE id = ?`,
		time.Now().Unix(), totals.FilesTotal, totals.FilesDone,
		totals.OriginalBytes, totals.NewBytes, totals.Cancelled, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = fmt.Errorf("run %s: %w", runID, sql.ErrNoRows)
		return err
	}
	return nil
}

// RecordOutcome appends one file outcome to the journal.
func (d *Database) RecordOutcome(ctx context.Context, rec OutcomeRecord) (err error) {
	start := time.Now()
	defer func() { recordQuery("record_outcome", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO outcomes (run_id, path, kind, strategy, status, reason,
			original_bytes, new_bytes, target, content_hash, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Path, rec.Kind, rec.Strategy, rec.Status, rec.Reason,
		rec.OriginalBytes, rec.NewBytes, rec.Target, rec.ContentHash, rec.RecordedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record outcome for %s: %w", rec.Path, err)
	}
	return nil
}

// IsProcessed reports whether path, with exactly this content, has already
// been brought to target: either it was replaced by a resize, or a resize was
// attempted and came out larger.
func (d *Database) IsProcessed(ctx context.Context, path, hash, target string) (found bool, err error) {
	start := time.Now()
	defer func() { recordQuery("is_processed", start, err) }()

	if hash == "" {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM outcomes
			WHERE path = ? AND content_hash = ? AND target = ?
			  AND (status = 'finished'
			       OR (status = 'skipped' AND reason IN ('resized larger', 'already processed')))
		)`,
		path, hash, target,
	).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("failed to query journal for %s: %w", path, err)
	}
	return found, nil
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all.
func (d *Database) ListRuns(ctx context.Context, limit int) (runs []Run, err error) {
	start := time.Now()
	defer func() { recordQuery("list_runs", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if limit <= 0 {
		limit = -1
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, folder, photo_target, video_target, started_at, finished_at,
			files_total, files_done, original_bytes, new_bytes, cancelled
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r        Run
			started  int64
			finished sql.NullInt64
		)
		if err = rows.Scan(&r.ID, &r.Folder, &r.PhotoTarget, &r.VideoTarget, &started, &finished,
			&r.Totals.FilesTotal, &r.Totals.FilesDone, &r.Totals.OriginalBytes, &r.Totals.NewBytes,
			&r.Totals.Cancelled); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.Unix(started, 0)
		if finished.Valid {
			t := time.Unix(finished.Int64, 0)
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	err = rows.Err()
	return runs, err
}

// ListOutcomes returns the outcomes recorded for a run in processing order.
func (d *Database) ListOutcomes(ctx context.Context, runID string) (records []OutcomeRecord, err error) {
	start := time.Now()
	defer func() { recordQuery("list_outcomes", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT run_id, path, kind, strategy, status, reason, original_bytes,
			new_bytes, target, content_hash, recorded_at
		FROM outcomes
		WHERE run_id = ?
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec      OutcomeRecord
			recorded int64
		)
		if err = rows.Scan(&rec.RunID, &rec.Path, &rec.Kind, &rec.Strategy, &rec.Status, &rec.Reason,
			&rec.OriginalBytes, &rec.NewBytes, &rec.Target, &rec.ContentHash, &recorded); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		rec.RecordedAt = time.Unix(recorded, 0)
		records = append(records, rec)
	}
	err = rows.Err()
	return records, err
}
