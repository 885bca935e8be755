// Package index caches session summaries in a sqlite database so that
// callers can list sessions without rescanning every trace file. A row is
// fresh while the source file's mtime and size are unchanged; only stale
// sessions get rescanned.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/johns/traceview/internal/trace"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS sessions (
    session_id    TEXT PRIMARY KEY,
    file_path     TEXT NOT NULL,
    project_name  TEXT NOT NULL DEFAULT '',
    project_dir   TEXT NOT NULL DEFAULT '',
    first_prompt  TEXT NOT NULL DEFAULT '',
    message_count INTEGER NOT NULL DEFAULT 0,
    created_at    TEXT NOT NULL DEFAULT '',
    modified_at   TEXT NOT NULL DEFAULT '',
    git_branch    TEXT NOT NULL DEFAULT '',
    mtime         INTEGER NOT NULL DEFAULT 0,
    size          INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS sessions_project ON sessions(project_name);
`

// DB is a handle to the session index.
type DB struct {
	db *sql.DB
}

// Open opens (creating if necessary) the index at dbPath.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Upsert stores a session summary along with the source file's mtime and
// size for later freshness checks.
func (d *DB) Upsert(sum trace.SessionSummary, mtime, size int64) error {
	_, err := d.db.Exec(`
		INSERT INTO sessions
			(session_id, file_path, project_name, project_dir, first_prompt,
			 message_count, created_at, modified_at, git_branch, mtime, size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			file_path = excluded.file_path,
			project_name = excluded.project_name,
			project_dir = excluded.project_dir,
			first_prompt = excluded.first_prompt,
			message_count = excluded.message_count,
			created_at = excluded.created_at,
			modified_at = excluded.modified_at,
			git_branch = excluded.git_branch,
			mtime = excluded.mtime,
			size = excluded.size`,
		sum.SessionID, sum.FilePath, sum.ProjectName, sum.ProjectDir,
		sum.FirstPrompt, sum.MessageCount,
		formatTime(sum.Created), formatTime(sum.Modified),
		sum.GitBranch, mtime, size)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// Fresh reports whether the indexed row for sessionID still matches the
// source file's mtime and size. Unknown sessions are never fresh.
func (d *DB) Fresh(sessionID string, mtime, size int64) (bool, error) {
	var m, s int64
	err := d.db.QueryRow(
		"SELECT mtime, size FROM sessions WHERE session_id = ?",
		sessionID,
	).Scan(&m, &s)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m == mtime && s == size, nil
}

// Get returns the indexed summary for sessionID, or nil if not indexed.
func (d *DB) Get(sessionID string) (*trace.SessionSummary, error) {
	row := d.db.QueryRow(selectColumns+" WHERE session_id = ?", sessionID)
	sum, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// ByProject lists indexed sessions for one project, most recent first.
func (d *DB) ByProject(project string) ([]trace.SessionSummary, error) {
	return d.query(selectColumns+" WHERE project_name = ? ORDER BY modified_at DESC", project)
}

// All lists every indexed session, most recent first.
func (d *DB) All() ([]trace.SessionSummary, error) {
	return d.query(selectColumns + " ORDER BY modified_at DESC")
}

// Delete removes a session from the index.
func (d *DB) Delete(sessionID string) error {
	_, err := d.db.Exec("DELETE FROM sessions WHERE session_id = ?", sessionID)
	return err
}

// Count returns the number of indexed sessions.
func (d *DB) Count() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n)
	return n, err
}

const selectColumns = `SELECT session_id, file_path, project_name, project_dir,
	first_prompt, message_count, created_at, modified_at, git_branch FROM sessions`

func (d *DB) query(q string, args ...any) ([]trace.SessionSummary, error) {
	rows, err := d.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sums []trace.SessionSummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		sums = append(sums, *sum)
	}
	return sums, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*trace.SessionSummary, error) {
	var sum trace.SessionSummary
	var created, modified string
	err := row.Scan(&sum.SessionID, &sum.FilePath, &sum.ProjectName,
		&sum.ProjectDir, &sum.FirstPrompt, &sum.MessageCount,
		&created, &modified, &sum.GitBranch)
	if err != nil {
		return nil, err
	}
	sum.Created = parseTime(created)
	sum.Modified = parseTime(modified)
	return &sum, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
