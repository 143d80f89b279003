// Package index keeps a local ledger of calendar events created by the sync run whose
// id has not yet been written back to Notion, and a history of past runs.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS pending_links (
    task_id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    kind TEXT NOT NULL,
    run_id TEXT NOT NULL,
    started_at DATETIME NOT NULL,
    finished_at DATETIME NOT NULL,
    summary TEXT,
    error_message TEXT
);
`

// Ledger is a SQLite-backed store. A nil *Ledger is never handed out; callers that do
// not want a ledger pass a nil interface instead.
type Ledger struct {
	db *sql.DB
}

// Run is one row of run history.
type Run struct {
	Kind       string
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    string
	Error      string
}

// Open creates the ledger file and its directory if needed.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect ledger %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger tables: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Pending returns the event id recorded for a task whose write-back is unconfirmed.
func (l *Ledger) Pending(ctx context.Context, taskID string) (string, bool, error) {
	var eventID string
	err := l.db.QueryRowContext(ctx,
		`SELECT event_id FROM pending_links WHERE task_id = ?`, taskID,
	).Scan(&eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read pending link for %s: %w", taskID, err)
	}
	return eventID, true, nil
}

// RecordPending remembers that eventID was created for taskID.
func (l *Ledger) RecordPending(ctx context.Context, taskID, eventID string) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO pending_links (task_id, event_id) VALUES (?, ?)
		ON CONFLICT(task_id) DO UPDATE SET event_id = excluded.event_id, created_at = CURRENT_TIMESTAMP
	`, taskID, eventID)
	if err != nil {
		return fmt.Errorf("record pending link for %s: %w", taskID, err)
	}
	return nil
}

// Confirm drops the pending entry once Notion holds the event id.
func (l *Ledger) Confirm(ctx context.Context, taskID string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM pending_links WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("confirm link for %s: %w", taskID, err)
	}
	return nil
}

// RecordRun appends one run to the history table.
func (l *Ledger) RecordRun(ctx context.Context, run Run) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO runs (kind, run_id, started_at, finished_at, summary, error_message)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.Kind, run.RunID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Summary, run.Error)
	if err != nil {
		return fmt.Errorf("record %s run: %w", run.Kind, err)
	}
	return nil
}

// LastRuns returns the most recent runs of a kind, newest first.
func (l *Ledger) LastRuns(ctx context.Context, kind string, limit int) ([]Run, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT kind, run_id, started_at, finished_at, COALESCE(summary, ''), COALESCE(error_message, '')
		FROM runs WHERE kind = ? ORDER BY id DESC LIMIT ?
	`, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s runs: %w", kind, err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.Kind, &r.RunID, &r.StartedAt, &r.FinishedAt, &r.Summary, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
