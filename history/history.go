// Package history records moodscrape runs in a SQLite database so an
// operator can see what earlier runs produced and which articles failed.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Run statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

// Store manages run history using SQLite.
type Store struct {
	db *sql.DB
}

// Run summarizes one end-to-end execution.
type Run struct {
	RunID      uuid.UUID
	Location   string
	OutputPath string
	StartedAt  time.Time
	FinishedAt time.Time
	Discovered int
	Extracted  int
	Failed     int
	Incomplete int
	Status     string
	// Error is the fatal error of a failed run.
	Error *string
}

// Failure is one article that could not be extracted during a run.
type Failure struct {
	URL   string
	Error string
}

// NewStore opens (and if needed creates) the history database at dsn.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the history tables if they don't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		location TEXT NOT NULL,
		output_path TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		discovered INTEGER NOT NULL DEFAULT 0,
		extracted INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		incomplete INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT
	);

	CREATE TABLE IF NOT EXISTS run_failures (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		error TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores a run and its failures in one transaction.
func (s *Store) RecordRun(run Run, failures []Failure) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, location, output_path, started_at, finished_at,
		                  discovered, extracted, failed, incomplete, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID.String(), run.Location, run.OutputPath,
		formatTime(run.StartedAt), formatTime(run.FinishedAt),
		run.Discovered, run.Extracted, run.Failed, run.Incomplete,
		run.Status, run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, f := range failures {
		_, err := tx.Exec(
			"INSERT INTO run_failures (run_id, position, url, error) VALUES (?, ?, ?, ?)",
			run.RunID.String(), i, f.URL, f.Error,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run failure: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first. A limit of zero returns every
// run.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT run_id, location, output_path, started_at, finished_at,
		       discovered, extracted, failed, incomplete, status, error
		FROM runs
		ORDER BY started_at DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// GetRun returns a single run by ID.
func (s *Store) GetRun(runID uuid.UUID) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, location, output_path, started_at, finished_at,
		       discovered, extracted, failed, incomplete, status, error
		FROM runs WHERE run_id = ?`, runID.String())

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return run, err
}

// ListFailures returns the failures of a run in the order they happened.
func (s *Store) ListFailures(runID uuid.UUID) ([]Failure, error) {
	rows, err := s.db.Query(
		"SELECT url, error FROM run_failures WHERE run_id = ? ORDER BY position",
		runID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query run failures: %w", err)
	}
	defer rows.Close()

	var failures []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.URL, &f.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run failure: %w", err)
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run failures: %w", err)
	}

	return failures, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var runIDStr, startedAtStr, finishedAtStr string
	var runError sql.NullString
	run := &Run{}

	err := row.Scan(
		&runIDStr, &run.Location, &run.OutputPath, &startedAtStr, &finishedAtStr,
		&run.Discovered, &run.Extracted, &run.Failed, &run.Incomplete,
		&run.Status, &runError,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.RunID, err = uuid.Parse(runIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid run ID %q: %w", runIDStr, err)
	}
	run.StartedAt = parseTime(startedAtStr)
	run.FinishedAt = parseTime(finishedAtStr)
	if runError.Valid {
		run.Error = &runError.String
	}

	return run, nil
}

// timeLayout is fixed width so that stored timestamps sort chronologically
// as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	// Strip monotonic clock for consistent storage and comparisons
	return t.Truncate(0).UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}
