// Package history persists dispatch outcomes in a local SQLite database.
// Recording is strictly best-effort: a broken history store must never
// change the outcome of a run.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/runlabhq/devrun/internal/command"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one recorded run.
type Entry struct {
	ID         int64
	Command    string
	Status     string
	ExitCode   int
	StartedAt  time.Time
	Duration   time.Duration
	StepsTotal int
}

// Store is a SQLite-backed run-history store.
type Store struct {
	db         *sql.DB
	maxEntries int
}

// Open ensures the parent directory exists, opens the database, and
// creates the schema if it does not exist. maxEntries caps retained runs
// (0 = unlimited).
func Open(path string, maxEntries int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, maxEntries: maxEntries}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record persists a dispatch outcome. Errors are written to stderr and
// otherwise swallowed, matching the recorder contract.
func (s *Store) Record(result command.ExecutionResult, startedAt time.Time, total time.Duration) {
	if err := s.record(result, startedAt, total); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record history: %v\n", err)
	}
}

func (s *Store) record(result command.ExecutionResult, startedAt time.Time, total time.Duration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(
		`INSERT INTO runs (command, status, exit_code, started_at, duration_ms) VALUES (?, ?, ?, ?, ?)`,
		result.Command,
		result.Status.String(),
		result.ExitCode(),
		startedAt.UTC().Format(time.RFC3339Nano),
		total.Milliseconds(),
	)
	if err != nil {
		return err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, step := range result.Steps {
		var stepErr sql.NullString
		if step.Err != nil {
			stepErr = sql.NullString{String: step.Err.Error(), Valid: true}
		}
		if _, err := tx.Exec(
			`INSERT INTO run_steps (run_id, step_index, kind, exit_code, tolerated, error, duration_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, step.Index, step.Kind.String(), step.ExitCode,
			boolToInt(step.Tolerated), stepErr, step.Duration.Milliseconds(),
		); err != nil {
			return err
		}
	}

	if err := pruneTx(tx, s.maxEntries); err != nil {
		return err
	}

	return tx.Commit()
}

// pruneTx deletes the oldest runs beyond the retention limit.
func pruneTx(tx *sql.Tx, maxEntries int) error {
	if maxEntries <= 0 {
		return nil
	}
	_, err := tx.Exec(
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`,
		maxEntries,
	)
	return err
}

// Recent returns the most recent runs, newest first. limit <= 0 returns
// all retained entries.
func (s *Store) Recent(limit int) ([]Entry, error) {
	query := `SELECT r.id, r.command, r.status, r.exit_code, r.started_at, r.duration_ms,
	                 (SELECT COUNT(*) FROM run_steps WHERE run_id = r.id)
	          FROM runs r ORDER BY r.id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var startedAt string
		var durationMs int64
		if err := rows.Scan(&e.ID, &e.Command, &e.Status, &e.ExitCode, &startedAt, &durationMs, &e.StepsTotal); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			e.StartedAt = t
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear deletes all history.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM runs`)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
