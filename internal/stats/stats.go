// Package stats provides SQLite-backed writing-statistics history: one
// snapshot of project word totals per completed refresh.
package stats

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	taken_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	total_words INTEGER NOT NULL,
	total_pages INTEGER NOT NULL,
	file_count  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS file_counts (
	snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	path        TEXT NOT NULL,
	words       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_file_counts_snapshot ON file_counts(snapshot_id);
`

// DB wraps a sql.DB with statistics operations.
type DB struct {
	conn *sql.DB
}

// Snapshot is one recorded totals row.
type Snapshot struct {
	ID      int64     `json:"id"`
	TakenAt time.Time `json:"taken_at"`
	Words   int       `json:"words"`
	Pages   int       `json:"pages"`
	Files   int       `json:"files"`
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("stats: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("stats: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("stats: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Record stores one snapshot with its per-file counts in a transaction.
// A snapshot identical in totals to the latest one is skipped, so idle
// refreshes do not grow the history.
func (db *DB) Record(words, pages int, perFile map[string]int) (bool, error) {
	last, err := db.Latest()
	if err != nil {
		return false, err
	}
	if last != nil && last.Words == words && last.Files == len(perFile) {
		return false, nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return false, fmt.Errorf("stats: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.Exec(`
		INSERT INTO snapshots (taken_at, total_words, total_pages, file_count)
		VALUES (?, ?, ?, ?)
	`, time.Now().UTC(), words, pages, len(perFile))
	if err != nil {
		return false, fmt.Errorf("stats: insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("stats: snapshot id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO file_counts (snapshot_id, path, words) VALUES (?, ?, ?)`)
	if err != nil {
		return false, fmt.Errorf("stats: prepare file counts: %w", err)
	}
	defer stmt.Close()
	for path, n := range perFile {
		if _, err := stmt.Exec(id, path, n); err != nil {
			return false, fmt.Errorf("stats: insert file count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("stats: commit: %w", err)
	}
	return true, nil
}

// Latest returns the most recent snapshot, or nil when none exists.
func (db *DB) Latest() (*Snapshot, error) {
	row := db.conn.QueryRow(`
		SELECT id, taken_at, total_words, total_pages, file_count
		FROM snapshots ORDER BY id DESC LIMIT 1
	`)
	var s Snapshot
	if err := row.Scan(&s.ID, &s.TakenAt, &s.Words, &s.Pages, &s.Files); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("stats: latest: %w", err)
	}
	return &s, nil
}

// History returns the most recent snapshots, newest first.
func (db *DB) History(limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT id, taken_at, total_words, total_pages, file_count
		FROM snapshots ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("stats: history: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.TakenAt, &s.Words, &s.Pages, &s.Files); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FileCounts returns the per-file words recorded for one snapshot.
func (db *DB) FileCounts(snapshotID int64) (map[string]int, error) {
	rows, err := db.conn.Query(`SELECT path, words FROM file_counts WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("stats: file counts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var path string
		var words int
		if err := rows.Scan(&path, &words); err != nil {
			return nil, err
		}
		out[path] = words
	}
	return out, rows.Err()
}
