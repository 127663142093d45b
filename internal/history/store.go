// Package history records completed polish runs in a local SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded polish attempt.
type Run struct {
	ID        int64
	SessionID string
	CreatedAt time.Time
	Provider  string
	Model     string
	Status    string
	Content   string
	Result    string
}

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	created_at TEXT NOT NULL,
	provider   TEXT NOT NULL,
	model      TEXT NOT NULL,
	status     TEXT NOT NULL,
	content    TEXT NOT NULL,
	result     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);
`

// DefaultPath returns the database location under the XDG data directory.
func DefaultPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	dir := filepath.Join(dataHome, "textpolish")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (creating if necessary) the run store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history db: %w", err)
	}
	return &Store{db: db}, nil
}

// Add records a run and returns its row id.
func (s *Store) Add(run Run) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO runs (session_id, created_at, provider, model, status, content, result)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.SessionID, run.CreatedAt.UTC().Format(time.RFC3339), run.Provider,
		run.Model, run.Status, run.Content, run.Result,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent runs, newest first.
func (s *Store) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, session_id, created_at, provider, model, status, content, result
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.SessionID, &created, &r.Provider, &r.Model, &r.Status, &r.Content, &r.Result); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Clear deletes all recorded runs.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM runs`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
