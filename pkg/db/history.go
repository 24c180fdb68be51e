package db

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/kozko2001/obsidian-wallabag/pkg/domain"
)

// RecordRun persists one run and the per-entry outcomes it produced.
// Entry rows are keyed by wallabag entry id and overwritten on each run
// that touches them. Retries on SQLite lock errors.
func (db *DB) RecordRun(ctx context.Context, result *domain.RunResult, runErr error) (int64, error) {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	var runID int64
	err := retrier.Do(ctx, func() error {
		txErr := db.InTransaction(ctx, func(tx *sqlx.Tx) error {
			errMsg := ""
			if runErr != nil {
				errMsg = runErr.Error()
			}
			res, err := tx.ExecContext(ctx, `
				INSERT INTO runs (started_at, finished_at, total, created, updated, failed, error)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				result.StartedAt, result.FinishedAt, result.Total, result.Created, result.Updated, result.Failed, errMsg)
			if err != nil {
				return fmt.Errorf("insert run: %w", err)
			}
			runID, err = res.LastInsertId()
			if err != nil {
				return fmt.Errorf("get run id: %w", err)
			}

			for _, o := range result.Outcomes {
				entryErr := ""
				if o.Err != nil {
					entryErr = o.Err.Error()
				}
				_, err := tx.ExecContext(ctx, `
					INSERT INTO entries (id, title, url, path, status, error, synced_at)
					VALUES (?, ?, ?, ?, ?, ?, ?)
					ON CONFLICT(id) DO UPDATE SET
					    title = excluded.title,
					    url = excluded.url,
					    path = excluded.path,
					    status = excluded.status,
					    error = excluded.error,
					    synced_at = excluded.synced_at`,
					o.EntryID, o.Title, o.URL, o.Path, string(o.Status), entryErr, result.FinishedAt)
				if err != nil {
					return fmt.Errorf("upsert entry %d: %w", o.EntryID, err)
				}
			}
			return nil
		})
		if txErr != nil {
			if isLockError(txErr) {
				return txErr // retry
			}
			return &criticalError{err: txErr}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return runID, nil
}

// GetRuns returns the most recent runs, newest first
func (db *DB) GetRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []Run
	err := db.conn.SelectContext(ctx, &runs,
		`SELECT * FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get runs: %w", err)
	}
	return runs, nil
}

// GetEntries returns the last known per-entry sync state with pagination
func (db *DB) GetEntries(ctx context.Context, limit, offset int) ([]SyncedEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []SyncedEntry
	err := db.conn.SelectContext(ctx, &entries,
		`SELECT * FROM entries ORDER BY synced_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get entries: %w", err)
	}
	return entries, nil
}

// GetEntry returns the sync state of one entry by its wallabag id
func (db *DB) GetEntry(ctx context.Context, id int64) (*SyncedEntry, error) {
	var entry SyncedEntry
	err := db.conn.GetContext(ctx, &entry, `SELECT * FROM entries WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, err)
	}
	return &entry, nil
}
