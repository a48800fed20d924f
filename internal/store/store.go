// Package store keeps a sqlite history of transaction lookups.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/grez-lucas/bank-automation/internal/scraper/bank/bpm"
	_ "modernc.org/sqlite"
)

// timeLayout keeps createdAt lexically sortable.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type DB struct {
	conn *sql.DB
}

// Lookup is one stored lookup.
type Lookup struct {
	ID          string           `json:"id" yaml:"id"`
	Reference   string           `json:"reference" yaml:"reference"`
	Source      string           `json:"source" yaml:"source"`
	Found       bool             `json:"transaction_found" yaml:"transaction_found"`
	Environment bpm.Environment  `json:"environment" yaml:"environment"`
	Fourth      string           `json:"fourth_column" yaml:"fourth_column"`
	Last        string           `json:"last_column" yaml:"last_column"`
	CreatedAt   time.Time        `json:"created_at" yaml:"created_at"`
	Result      bpm.LookupResult `json:"result" yaml:"result"`
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS lookups (
  id TEXT PRIMARY KEY,
  reference TEXT NOT NULL,
  source TEXT NOT NULL,
  found INTEGER NOT NULL,
  environment TEXT NOT NULL,
  fourthColumn TEXT NOT NULL,
  lastColumn TEXT NOT NULL,
  resultJson TEXT NOT NULL,
  createdAt TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_lookups_reference ON lookups(reference);
CREATE INDEX IF NOT EXISTS idx_lookups_createdAt ON lookups(createdAt);
`
	_, err := d.conn.Exec(schema)
	return err
}

// RecordLookup stores result under a new id and returns it. source names
// where the row came from, e.g. "portal" or a snapshot file.
func (d *DB) RecordLookup(ctx context.Context, reference, source string, result bpm.LookupResult) (string, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal lookup result: %w", err)
	}

	id := uuid.NewString()
	_, err = d.conn.ExecContext(ctx, `
INSERT INTO lookups(id, reference, source, found, environment, fourthColumn, lastColumn, resultJson, createdAt)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
`, id, reference, source, boolToInt(result.Found), string(result.Environment),
		result.FourthColumn, result.LastColumn, string(raw), time.Now().UTC().Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("insert lookup: %w", err)
	}
	return id, nil
}

// ListLookups returns the newest lookups first. An empty reference lists
// every reference; limit <= 0 means no limit.
func (d *DB) ListLookups(ctx context.Context, reference string, limit int) ([]Lookup, error) {
	query := `
SELECT id, reference, source, found, environment, fourthColumn, lastColumn, resultJson, createdAt
FROM lookups
WHERE (? = '' OR reference = ?)
ORDER BY createdAt DESC, rowid DESC
LIMIT ?`
	if limit <= 0 {
		limit = -1
	}

	rows, err := d.conn.QueryContext(ctx, query, reference, reference, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lookups := []Lookup{}
	for rows.Next() {
		var (
			l         Lookup
			found     int
			env       string
			raw       string
			createdAt string
		)
		if err := rows.Scan(&l.ID, &l.Reference, &l.Source, &found, &env, &l.Fourth, &l.Last, &raw, &createdAt); err != nil {
			return nil, err
		}
		l.Found = found == 1
		l.Environment = bpm.Environment(env)
		if err := json.Unmarshal([]byte(raw), &l.Result); err != nil {
			return nil, fmt.Errorf("decode lookup %s: %w", l.ID, err)
		}
		if t, err := time.Parse(timeLayout, createdAt); err == nil {
			l.CreatedAt = t
		}
		lookups = append(lookups, l)
	}
	return lookups, rows.Err()
}

// EnvironmentCounts tallies stored lookups per environment.
func (d *DB) EnvironmentCounts(ctx context.Context) (map[bpm.Environment]int, error) {
	rows, err := d.conn.QueryContext(ctx, `SELECT environment, COUNT(*) FROM lookups GROUP BY environment`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[bpm.Environment]int{}
	for rows.Next() {
		var (
			env string
			n   int
		)
		if err := rows.Scan(&env, &n); err != nil {
			return nil, err
		}
		counts[bpm.Environment(env)] = n
	}
	return counts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
