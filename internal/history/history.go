// Package history keeps a SQLite log of synthesis jobs run from the CLI.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	gap "github.com/muesli/go-app-paths"

	_ "modernc.org/sqlite"
)

// Job is one CLI synthesis run.
type Job struct {
	ID       string
	Time     time.Time
	Kind     string // save, say, batch or watch
	Input    string // text preview or source file
	Output   string // written file, empty for playback
	Segments int64
	Bytes    int64
	Duration time.Duration
	Err      string
}

// Failed reports whether the job ended in an error.
func (j Job) Failed() bool { return j.Err != "" }

// Store is a job history backed by a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the per-user history database location.
func DefaultPath() (string, error) {
	scope := gap.NewScope(gap.User, "ttsbridge")
	path, err := scope.DataPath("history.db")
	if err != nil {
		return "", fmt.Errorf("failed to locate data directory: %w", err)
	}
	return path, nil
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS jobs (
    id          TEXT    PRIMARY KEY,
    timestamp   TEXT    NOT NULL,
    kind        TEXT    NOT NULL,
    input       TEXT    NOT NULL DEFAULT '',
    output      TEXT    NOT NULL DEFAULT '',
    segments    INTEGER NOT NULL DEFAULT 0,
    bytes       INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    error       TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_jobs_timestamp ON jobs(timestamp DESC);
`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores job, assigning an ID and timestamp when they are unset.
func (s *Store) Record(job Job) (Job, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Time.IsZero() {
		job.Time = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO jobs (id, timestamp, kind, input, output, segments, bytes, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Time.UTC().Format(time.RFC3339Nano), job.Kind, job.Input, job.Output,
		job.Segments, job.Bytes, job.Duration.Milliseconds(), job.Err,
	)
	if err != nil {
		return job, fmt.Errorf("record job: %w", err)
	}
	return job, nil
}

// List returns up to limit jobs, newest first. A non-positive limit
// returns every job.
func (s *Store) List(limit int) ([]Job, error) {
	query := `SELECT id, timestamp, kind, input, output, segments, bytes, duration_ms, error
	          FROM jobs ORDER BY timestamp DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var (
			j          Job
			ts         string
			durationMS int64
		)
		if err := rows.Scan(&j.ID, &ts, &j.Kind, &j.Input, &j.Output, &j.Segments, &j.Bytes, &durationMS, &j.Err); err != nil {
			return nil, err
		}
		j.Time, _ = time.Parse(time.RFC3339Nano, ts)
		j.Duration = time.Duration(durationMS) * time.Millisecond
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Clear deletes every job.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM jobs")
	return err
}
